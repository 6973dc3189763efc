package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each blob as a plain string value.  Keys are used verbatim;
// namespacing comes from the Keys prefix.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps an existing client.  The store does not own the client
// unless Close is called.
func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ioErr("get", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return ioErr("set", key, r.rdb.Set(ctx, key, value, 0).Err())
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	return ioErr("remove", key, r.rdb.Del(ctx, key).Err())
}

func (r *Redis) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return ioErr("clear", "", r.rdb.Del(ctx, keys...).Err())
}

func (r *Redis) Close() error { return r.rdb.Close() }
