package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/trip-seat-reservation/internal/model"
)

var created = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

func sampleTrip() model.Trip {
	return model.Trip{
		ID: "trip-bus-001", Type: model.TripBus, From: "İstanbul", To: "Ankara",
		Date: "2025-12-15", Time: "08:00", ArrivalTime: "13:30", Price: 350,
		TotalSeats: 40, OccupiedSeats: []int{1, 2}, Company: "Metro Turizm",
		VehicleInfo: "Mercedes Travego", CreatedAt: created,
	}
}

func sampleUser() model.User {
	return model.User{
		ID: "user-test-001", Email: "user@test.com", PasswordHash: "$2a$04$x",
		Name: "Test Kullanıcı", Role: model.RoleUser, Phone: "0533 444 5566", CreatedAt: created,
	}
}

func sampleReservation() model.Reservation {
	return model.Reservation{
		ID: "res-001", OrderID: "ORD-2025-00001", TripID: "trip-bus-001", UserID: "user-test-001",
		SeatNumbers: []int{1, 2}, PassengerName: "Test Kullanıcı", PassengerPhone: "0533 444 5566",
		PassengerEmail: "user@test.com", TotalPrice: 700, Status: model.StatusActive, CreatedAt: created,
	}
}

func roundTrip[T any](t *testing.T, s Store, v T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, Save(ctx, s, "k", v))
	got, ok, err := Load[T](ctx, s, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v, got)
}

func TestJSONRoundTrip(t *testing.T) {
	s := NewMemory()
	roundTrip(t, s, sampleUser())
	roundTrip(t, s, sampleTrip())
	roundTrip(t, s, sampleReservation())
	roundTrip(t, s, []model.User{sampleUser()})
	roundTrip(t, s, []model.Trip{sampleTrip(), sampleTrip()})
	roundTrip(t, s, []model.Reservation{sampleReservation()})
}

func TestJSONNullIsAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	var none *model.User
	require.NoError(t, Save(ctx, s, "current_user", none))
	raw, ok, err := s.Get(ctx, "current_user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "null", string(raw))

	got, ok, err := Load[*model.User](ctx, s, "current_user")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestLoadMissingKey(t *testing.T) {
	_, ok, err := Load[[]model.Trip](context.Background(), NewMemory(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadCorruptBlob(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Set(ctx, "trips", []byte("{not json")))

	_, ok, err := Load[[]model.Trip](ctx, s, "trips")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))

	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, "decode", ioe.Op)
	assert.Equal(t, "trips", ioe.Key)
}

func TestKeys(t *testing.T) {
	k := NewKeys(DefaultPrefix)
	assert.Equal(t, "@reservation_users", k.Users)
	assert.Equal(t, "@reservation_current_user", k.CurrentUser)
	assert.Len(t, k.All(), 5)
}
