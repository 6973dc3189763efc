// Package repository persists the reservation core's collections.  Each
// repo reads and writes one whole collection as a single JSON blob through
// the storage layer; there is no per-record diffing.
package repository

import (
	"context"

	"github.com/iliyamo/trip-seat-reservation/internal/model"
	"github.com/iliyamo/trip-seat-reservation/internal/storage"
)

// UserRepo persists the registered users and the active session.
type UserRepo struct {
	store storage.Store
	keys  storage.Keys
}

func NewUserRepo(s storage.Store, keys storage.Keys) *UserRepo {
	return &UserRepo{store: s, keys: keys}
}

// LoadAll returns the persisted users; found is false when nothing was
// ever saved.
func (r *UserRepo) LoadAll(ctx context.Context) ([]model.User, bool, error) {
	return storage.Load[[]model.User](ctx, r.store, r.keys.Users)
}

// SaveAll overwrites the whole user list.
func (r *UserRepo) SaveAll(ctx context.Context, users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	return storage.Save(ctx, r.store, r.keys.Users, users)
}

// LoadSession returns the persisted active-session user, or nil.
func (r *UserRepo) LoadSession(ctx context.Context) (*model.User, error) {
	u, ok, err := storage.Load[*model.User](ctx, r.store, r.keys.CurrentUser)
	if err != nil || !ok {
		return nil, err
	}
	return u, nil
}

// SaveSession stores u as the active session; nil stores JSON null.
func (r *UserRepo) SaveSession(ctx context.Context, u *model.User) error {
	return storage.Save(ctx, r.store, r.keys.CurrentUser, u)
}
