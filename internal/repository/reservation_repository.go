package repository

import (
	"context"

	"github.com/iliyamo/trip-seat-reservation/internal/model"
	"github.com/iliyamo/trip-seat-reservation/internal/storage"
)

// ReservationRepo persists the booking ledger.
type ReservationRepo struct {
	store storage.Store
	key   string
}

func NewReservationRepo(s storage.Store, keys storage.Keys) *ReservationRepo {
	return &ReservationRepo{store: s, key: keys.Reservations}
}

func (r *ReservationRepo) LoadAll(ctx context.Context) ([]model.Reservation, bool, error) {
	return storage.Load[[]model.Reservation](ctx, r.store, r.key)
}

func (r *ReservationRepo) SaveAll(ctx context.Context, list []model.Reservation) error {
	if list == nil {
		list = []model.Reservation{}
	}
	return storage.Save(ctx, r.store, r.key, list)
}
