package storage

import (
	"bytes"
	"context"
	"encoding/json"
)

var jsonNull = []byte("null")

// Load reads key and decodes it into a T.  A missing key or a stored JSON
// null both report found=false.  Decode failures are returned as IOError so
// callers can treat a corrupt blob like any other unreadable value.
func Load[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return out, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, ioErr("decode", key, err)
	}
	return out, true, nil
}

// Save encodes v as JSON and stores it under key.  A nil pointer is stored
// as JSON null.
func Save[T any](ctx context.Context, s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return ioErr("encode", key, err)
	}
	return s.Set(ctx, key, raw)
}
