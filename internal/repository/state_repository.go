package repository

import (
	"context"

	"github.com/iliyamo/trip-seat-reservation/internal/storage"
)

// StateRepo tracks store-wide markers and wipes the whole data set.
type StateRepo struct {
	store storage.Store
	keys  storage.Keys
}

func NewStateRepo(s storage.Store, keys storage.Keys) *StateRepo {
	return &StateRepo{store: s, keys: keys}
}

// IsInitialized reports whether seeding has completed once.  Read errors
// count as not initialized.
func (r *StateRepo) IsInitialized(ctx context.Context) bool {
	v, ok, err := storage.Load[bool](ctx, r.store, r.keys.Initialized)
	return err == nil && ok && v
}

func (r *StateRepo) MarkInitialized(ctx context.Context) error {
	return storage.Save(ctx, r.store, r.keys.Initialized, true)
}

// ClearAll removes every collection and the session.
func (r *StateRepo) ClearAll(ctx context.Context) error {
	return r.store.Clear(ctx, r.keys.All()...)
}
