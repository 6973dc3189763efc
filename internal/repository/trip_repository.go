package repository

import (
	"context"

	"github.com/iliyamo/trip-seat-reservation/internal/model"
	"github.com/iliyamo/trip-seat-reservation/internal/storage"
)

// TripRepo persists the trip catalog.
type TripRepo struct {
	store storage.Store
	key   string
}

func NewTripRepo(s storage.Store, keys storage.Keys) *TripRepo {
	return &TripRepo{store: s, key: keys.Trips}
}

func (r *TripRepo) LoadAll(ctx context.Context) ([]model.Trip, bool, error) {
	return storage.Load[[]model.Trip](ctx, r.store, r.key)
}

func (r *TripRepo) SaveAll(ctx context.Context, trips []model.Trip) error {
	if trips == nil {
		trips = []model.Trip{}
	}
	return storage.Save(ctx, r.store, r.key, trips)
}
