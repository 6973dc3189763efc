package service

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/trip-seat-reservation/internal/model"
    "github.com/iliyamo/trip-seat-reservation/internal/repository"
    "github.com/iliyamo/trip-seat-reservation/internal/storage"
)

func tripIDs(trips []model.Trip) []string {
    ids := make([]string, len(trips))
    for i, t := range trips {
        ids[i] = t.ID
    }
    return ids
}

func TestSeedIsConsistent(t *testing.T) {
    f := newFixture(t)
    assert.Len(t, f.catalog.List(), 10)
    assertConsistent(t, f)

    bus1, ok := f.catalog.GetByID("trip-bus-001")
    require.True(t, ok)
    assert.Equal(t, []int{1, 2, 5, 10, 15, 22, 30}, bus1.OccupiedSeats)

    for _, r := range f.ledger.Reservations() {
        assert.LessOrEqual(t, len(r.SeatNumbers), DefaultMaxSeats)
        trip, ok := f.catalog.GetByID(r.TripID)
        require.True(t, ok)
        assert.Equal(t, trip.Price*len(r.SeatNumbers), r.TotalPrice)
    }
}

func TestInitializeIdempotent(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    require.NoError(t, f.catalog.Initialize(ctx))
    require.NoError(t, f.ledger.Initialize(ctx))
    assert.Len(t, f.catalog.List(), 10)

    g := newFixtureOn(t, f.store)
    assert.Len(t, g.catalog.List(), 10)
    assert.Equal(t, len(f.ledger.Reservations()), len(g.ledger.Reservations()))
}

func TestInitializeFallsBackOnCorruptBlob(t *testing.T) {
    st := newFlakyStore()
    keys := storage.NewKeys(storage.DefaultPrefix)
    require.NoError(t, st.Set(context.Background(), keys.Trips, []byte("{broken")))
    f := newFixtureOn(t, st)
    assert.Len(t, f.catalog.List(), 10)
}

func TestSearch(t *testing.T) {
    f := newFixture(t)

    got := f.catalog.Search(SearchQuery{From: "İstanbul", To: "Ankara", Date: "2025-12-15"})
    assert.Equal(t, []string{"trip-bus-001", "trip-bus-002"}, tripIDs(got))
    assert.Equal(t, 350, got[0].Price)
    assert.Equal(t, 375, got[1].Price)

    tests := []struct {
        name string
        q    SearchQuery
        want []string
    }{
        {"ascii lower case", SearchQuery{From: "istanbul", To: "ankara", Date: "2025-12-15"}, []string{"trip-bus-001", "trip-bus-002"}},
        {"upper case", SearchQuery{From: "ISTANBUL", To: "ANK", Date: "2025-12-15"}, []string{"trip-bus-001", "trip-bus-002"}},
        {"substring", SearchQuery{From: "stan", To: "", Date: "2025-12-15"}, []string{"trip-bus-005", "trip-bus-001", "trip-bus-002"}},
        {"type filter", SearchQuery{From: "İzmir", To: "İstanbul", Date: "2025-12-15", Type: model.TripPlane}, []string{"trip-plane-004"}},
        {"type mismatch", SearchQuery{From: "İzmir", To: "İstanbul", Date: "2025-12-15", Type: model.TripBus}, []string{}},
        {"wrong date", SearchQuery{From: "İstanbul", To: "Ankara", Date: "2025-12-16"}, []string{}},
        {"no match", SearchQuery{From: "Paris", To: "Ankara", Date: "2025-12-15"}, []string{}},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            assert.Equal(t, tt.want, tripIDs(f.catalog.Search(tt.q)))
        })
    }
}

func TestSelectTrip(t *testing.T) {
    f := newFixture(t)
    trip, ok := f.catalog.Select("trip-plane-002")
    require.True(t, ok)
    assert.Equal(t, "Pegasus", trip.Company)
    sel, ok := f.catalog.SelectedTrip()
    require.True(t, ok)
    assert.Equal(t, "trip-plane-002", sel.ID)

    _, ok = f.catalog.Select("missing")
    assert.False(t, ok)
    _, ok = f.catalog.SelectedTrip()
    assert.False(t, ok)

    f.catalog.Select("trip-bus-001")
    f.catalog.ClearSelection()
    _, ok = f.catalog.SelectedTrip()
    assert.False(t, ok)
}

func TestAddTripValidation(t *testing.T) {
    f := newFixture(t)
    valid := model.TripDraft{Type: model.TripPlane, From: "A", To: "B", Date: "2025-12-20",
        Time: "09:00", ArrivalTime: "10:00", Price: 100, TotalSeats: 10, Company: "C"}

    trip, err := f.catalog.AddTrip(context.Background(), valid)
    require.NoError(t, err)
    assert.Empty(t, trip.OccupiedSeats)
    assert.Equal(t, fixedNow, trip.CreatedAt)
    assert.NotEmpty(t, trip.ID)

    tests := []struct {
        field string
        mut   func(*model.TripDraft)
    }{
        {"type", func(d *model.TripDraft) { d.Type = "train" }},
        {"from", func(d *model.TripDraft) { d.From = " " }},
        {"to", func(d *model.TripDraft) { d.To = "" }},
        {"company", func(d *model.TripDraft) { d.Company = "" }},
        {"price", func(d *model.TripDraft) { d.Price = 0 }},
        {"totalSeats", func(d *model.TripDraft) { d.TotalSeats = -1 }},
        {"date", func(d *model.TripDraft) { d.Date = "15.12.2025" }},
        {"time", func(d *model.TripDraft) { d.Time = "8am" }},
        {"arrivalTime", func(d *model.TripDraft) { d.ArrivalTime = "" }},
    }
    for _, tt := range tests {
        t.Run(tt.field, func(t *testing.T) {
            d := valid
            tt.mut(&d)
            _, err := f.catalog.AddTrip(context.Background(), d)
            var ve *ValidationError
            require.ErrorAs(t, err, &ve)
            assert.Equal(t, tt.field, ve.Field)
        })
    }
    assert.Len(t, f.catalog.List(), 11)
}

func TestUpdateTrip(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    price, company := 400, "Yeni Firma"
    trip, err := f.catalog.UpdateTrip(ctx, "trip-bus-001", model.TripPatch{Price: &price, Company: &company})
    require.NoError(t, err)
    assert.Equal(t, 400, trip.Price)
    assert.Equal(t, "Yeni Firma", trip.Company)
    assert.Equal(t, []int{1, 2, 5, 10, 15, 22, 30}, trip.OccupiedSeats)

    small := 20
    _, err = f.catalog.UpdateTrip(ctx, "trip-bus-001", model.TripPatch{TotalSeats: &small})
    assert.ErrorIs(t, err, ErrValidation)

    _, err = f.catalog.UpdateTrip(ctx, "nope", model.TripPatch{Price: &price})
    assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestReserveAndReleaseSeats(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    trip := f.addTrip(t, 100, 10)

    require.NoError(t, f.catalog.ReserveSeats(ctx, trip.ID, []int{5, 2, 5}))
    got, _ := f.catalog.GetByID(trip.ID)
    assert.Equal(t, []int{2, 5}, got.OccupiedSeats)
    assert.Equal(t, []int{1, 3, 4, 6, 7, 8, 9, 10}, f.catalog.GetAvailableSeats(trip.ID))

    err := f.catalog.ReserveSeats(ctx, trip.ID, []int{3, 5})
    var su *SeatsUnavailableError
    require.ErrorAs(t, err, &su)
    assert.Equal(t, []int{5}, su.Seats)
    got, _ = f.catalog.GetByID(trip.ID)
    assert.Equal(t, []int{2, 5}, got.OccupiedSeats)

    assert.ErrorIs(t, f.catalog.ReserveSeats(ctx, trip.ID, []int{11}), ErrValidation)
    assert.ErrorIs(t, f.catalog.ReserveSeats(ctx, "nope", []int{1}), ErrTripNotFound)

    require.NoError(t, f.catalog.ReleaseSeats(ctx, trip.ID, []int{2, 7}))
    got, _ = f.catalog.GetByID(trip.ID)
    assert.Equal(t, []int{5}, got.OccupiedSeats)
    assert.Nil(t, f.catalog.GetAvailableSeats("nope"))
}

func TestCatalogSaveFailureLeavesStateUnchanged(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    trip := f.addTrip(t, 100, 10)
    f.store.failWrites(f.keys.Trips, true)

    assert.ErrorIs(t, f.catalog.ReserveSeats(ctx, trip.ID, []int{1}), storage.ErrIO)
    got, _ := f.catalog.GetByID(trip.ID)
    assert.Empty(t, got.OccupiedSeats)

    _, err := f.catalog.AddTrip(ctx, model.TripDraft{Type: model.TripBus, From: "A", To: "B", Date: "2025-12-20",
        Time: "09:00", ArrivalTime: "10:00", Price: 1, TotalSeats: 1, Company: "C"})
    assert.ErrorIs(t, err, storage.ErrIO)
    assert.ErrorIs(t, f.catalog.DeleteTrip(ctx, trip.ID), storage.ErrIO)
    assert.Len(t, f.catalog.List(), 11)
}

func TestDeleteTripClearsSelection(t *testing.T) {
    f := newFixture(t)
    trip := f.addTrip(t, 100, 10)
    f.catalog.Select(trip.ID)
    require.NoError(t, f.catalog.DeleteTrip(context.Background(), trip.ID))
    _, ok := f.catalog.SelectedTrip()
    assert.False(t, ok)
    assert.ErrorIs(t, f.catalog.DeleteTrip(context.Background(), trip.ID), ErrTripNotFound)
}

func TestAvailableSeatsOnOverfullTrip(t *testing.T) {
    ctx := context.Background()
    st := newFlakyStore()
    keys := storage.NewKeys(storage.DefaultPrefix)
    require.NoError(t, storage.Save(ctx, st, keys.Trips, []model.Trip{{
        ID: "trip-x", Type: model.TripBus, From: "A", To: "B", Date: "2025-12-20",
        Time: "08:00", ArrivalTime: "09:00", Price: 10, TotalSeats: 2, OccupiedSeats: []int{1, 2, 3},
        Company: "Acme",
    }}))

    c := NewCatalog(repository.NewTripRepo(st, keys), CatalogOptions{})
    require.NoError(t, c.Initialize(ctx))
    assert.Empty(t, c.GetAvailableSeats("trip-x"))
}

func TestRestoreOccupancyKeepsMemoryOnFailedWrite(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    trip := f.addTrip(t, 100, 10)
    require.NoError(t, f.catalog.ReserveSeats(ctx, trip.ID, []int{4, 5}))

    f.store.failWrites(f.keys.Trips, true)
    require.ErrorIs(t, f.catalog.RestoreOccupancy(ctx, trip.ID, []int{5, 4, 5, 1}), storage.ErrIO)
    got, _ := f.catalog.GetByID(trip.ID)
    assert.Equal(t, []int{1, 4, 5}, got.OccupiedSeats)

    assert.ErrorIs(t, f.catalog.RestoreOccupancy(ctx, "trip-missing", nil), ErrTripNotFound)
}
