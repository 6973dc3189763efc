package service

import (
    "context"
    "errors"
    "io"
    "log/slog"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/iliyamo/trip-seat-reservation/internal/model"
    "github.com/iliyamo/trip-seat-reservation/internal/queue"
    "github.com/iliyamo/trip-seat-reservation/internal/repository"
    "github.com/iliyamo/trip-seat-reservation/internal/storage"
)

var errDisk = errors.New("disk full")

// flakyStore wraps a memory store and fails writes to chosen keys.
type flakyStore struct {
    *storage.Memory
    mu      sync.Mutex
    failSet map[string]bool
    failGet map[string]bool
}

func newFlakyStore() *flakyStore {
    return &flakyStore{Memory: storage.NewMemory(), failSet: map[string]bool{}, failGet: map[string]bool{}}
}

func (f *flakyStore) Set(ctx context.Context, key string, v []byte) error {
    f.mu.Lock()
    fail := f.failSet[key]
    f.mu.Unlock()
    if fail {
        return &storage.IOError{Op: "set", Key: key, Err: errDisk}
    }
    return f.Memory.Set(ctx, key, v)
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
    f.mu.Lock()
    fail := f.failGet[key]
    f.mu.Unlock()
    if fail {
        return nil, false, &storage.IOError{Op: "get", Key: key, Err: errDisk}
    }
    return f.Memory.Get(ctx, key)
}

func (f *flakyStore) failWrites(key string, on bool) {
    f.mu.Lock()
    f.failSet[key] = on
    f.mu.Unlock()
}

type recordingPublisher struct {
    mu     sync.Mutex
    events []queue.ReservationEvent
    err    error
}

func (p *recordingPublisher) PublishReservation(_ context.Context, ev queue.ReservationEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
    return p.err
}

type fixture struct {
    store    *flakyStore
    keys     storage.Keys
    identity *Identity
    catalog  *Catalog
    ledger   *Ledger
    events   *recordingPublisher
}

var fixedNow = time.Date(2025, 12, 12, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
    t.Helper()
    return newFixtureOn(t, newFlakyStore())
}

func newFixtureOn(t *testing.T, st *flakyStore) *fixture {
    t.Helper()
    logger := slog.New(slog.NewTextHandler(io.Discard, nil))
    keys := storage.NewKeys(storage.DefaultPrefix)
    clock := func() time.Time { return fixedNow }
    f := &fixture{store: st, keys: keys, events: &recordingPublisher{}}
    f.identity = NewIdentity(repository.NewUserRepo(st, keys), IdentityOptions{BcryptCost: bcrypt.MinCost, Logger: logger, Now: clock})
    f.catalog = NewCatalog(repository.NewTripRepo(st, keys), CatalogOptions{Logger: logger, Now: clock})
    f.ledger = NewLedger(repository.NewReservationRepo(st, keys), f.catalog, LedgerOptions{Logger: logger, Now: clock, Publisher: f.events})
    ctx := context.Background()
    require.NoError(t, f.identity.Initialize(ctx))
    require.NoError(t, f.catalog.Initialize(ctx))
    require.NoError(t, f.ledger.Initialize(ctx))
    return f
}

func (f *fixture) addTrip(t *testing.T, price, seats int) model.Trip {
    t.Helper()
    trip, err := f.catalog.AddTrip(context.Background(), model.TripDraft{
        Type: model.TripBus, From: "Test", To: "Town", Date: "2025-12-20",
        Time: "08:00", ArrivalTime: "12:00", Price: price, TotalSeats: seats, Company: "Acme",
    })
    require.NoError(t, err)
    return trip
}

func request(tripID string) ReservationRequest {
    return ReservationRequest{TripID: tripID, UserID: "user-test-001", PassengerName: "Test Kullanıcı",
        PassengerPhone: "0533 444 5566", PassengerEmail: "user@test.com"}
}

// assertConsistent checks that every trip's occupancy equals the seats of
// its active reservations.
func assertConsistent(t *testing.T, f *fixture) {
    t.Helper()
    assert.Empty(t, f.ledger.Audit())
}
