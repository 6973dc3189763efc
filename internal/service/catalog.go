package service

import (
    "cmp"
    "context"
    "log/slog"
    "slices"
    "strings"
    "sync"
    "time"

    "github.com/iliyamo/trip-seat-reservation/internal/model"
    "github.com/iliyamo/trip-seat-reservation/internal/repository"
    "github.com/iliyamo/trip-seat-reservation/internal/utils"
)

// CatalogOptions tunes a Catalog.  Zero values pick defaults.
type CatalogOptions struct {
    Logger *slog.Logger
    Now    func() time.Time
}

// Catalog owns the trips and their seat occupancy.  Occupancy only changes
// through ReserveSeats and ReleaseSeats.
type Catalog struct {
    mu         sync.Mutex
    repo       *repository.TripRepo
    trips      []model.Trip
    selectedID string
    ready      bool

    logger *slog.Logger
    now    func() time.Time
}

// SearchQuery filters trips.  From and To are case-insensitive substrings,
// Date is matched exactly and an empty Type matches both kinds.
type SearchQuery struct {
    From string
    To   string
    Date string
    Type model.TripType
}

func NewCatalog(repo *repository.TripRepo, opts CatalogOptions) *Catalog {
    return &Catalog{repo: repo, logger: loggerOrDiscard(opts.Logger), now: clockOrUTC(opts.Now)}
}

// Initialize loads trips, seeding the default timetable when none are
// stored.  A second call is a no-op.
func (c *Catalog) Initialize(ctx context.Context) error {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.ready {
        return nil
    }
    trips, ok, err := c.repo.LoadAll(ctx)
    if err != nil {
        c.logger.Warn("catalog: load trips failed, using defaults", "error", err)
        ok = false
    }
    if !ok {
        trips = seedTrips()
        if err := c.repo.SaveAll(ctx, trips); err != nil {
            return err
        }
        c.logger.Info("catalog: seeded default trips", "count", len(trips))
    }
    for i := range trips {
        if trips[i].OccupiedSeats == nil {
            trips[i].OccupiedSeats = []int{}
        }
    }
    c.trips = trips
    c.ready = true
    return nil
}

// Search returns matching trips sorted by ascending price, ties broken by
// departure time.  No match yields an empty slice.
func (c *Catalog) Search(q SearchQuery) []model.Trip {
    from, to := foldPlace(q.From), foldPlace(q.To)

    c.mu.Lock()
    defer c.mu.Unlock()

    out := []model.Trip{}
    for _, t := range c.trips {
        if !strings.Contains(foldPlace(t.From), from) || !strings.Contains(foldPlace(t.To), to) {
            continue
        }
        if t.Date != q.Date {
            continue
        }
        if q.Type != "" && t.Type != q.Type {
            continue
        }
        out = append(out, t.Clone())
    }
    slices.SortStableFunc(out, func(a, b model.Trip) int {
        return cmp.Or(cmp.Compare(a.Price, b.Price), cmp.Compare(a.Time, b.Time))
    })
    return out
}

// foldPlace lower-cases a place name so that "İstanbul", "ISTANBUL" and
// "istanbul" compare equal.  A decomposed İ (I plus combining dot above)
// loses its dot as well.
func foldPlace(s string) string {
    return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "\u0307", "")
}

// Select marks tripID as the trip being booked.  It returns false, and
// clears the selection, when the trip does not exist.
func (c *Catalog) Select(tripID string) (model.Trip, bool) {
    c.mu.Lock()
    defer c.mu.Unlock()
    i := c.index(tripID)
    if i < 0 {
        c.selectedID = ""
        return model.Trip{}, false
    }
    c.selectedID = tripID
    return c.trips[i].Clone(), true
}

// SelectedTrip resolves the current selection against live data, so a
// deleted trip reads as no selection.
func (c *Catalog) SelectedTrip() (model.Trip, bool) {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.selectedID == "" {
        return model.Trip{}, false
    }
    i := c.index(c.selectedID)
    if i < 0 {
        return model.Trip{}, false
    }
    return c.trips[i].Clone(), true
}

func (c *Catalog) ClearSelection() {
    c.mu.Lock()
    c.selectedID = ""
    c.mu.Unlock()
}

// AddTrip validates d and appends a new trip with no occupied seats.
func (c *Catalog) AddTrip(ctx context.Context, d model.TripDraft) (model.Trip, error) {
    t := model.Trip{
        ID:            utils.NewID("trip"),
        Type:          d.Type,
        From:          strings.TrimSpace(d.From),
        To:            strings.TrimSpace(d.To),
        Date:          strings.TrimSpace(d.Date),
        Time:          strings.TrimSpace(d.Time),
        ArrivalTime:   strings.TrimSpace(d.ArrivalTime),
        Price:         d.Price,
        TotalSeats:    d.TotalSeats,
        OccupiedSeats: []int{},
        Company:       strings.TrimSpace(d.Company),
        VehicleInfo:   strings.TrimSpace(d.VehicleInfo),
        CreatedAt:     c.now(),
    }
    if err := validateTrip(t); err != nil {
        return model.Trip{}, err
    }

    c.mu.Lock()
    defer c.mu.Unlock()
    next := append(slices.Clone(c.trips), t)
    if err := c.repo.SaveAll(ctx, next); err != nil {
        return model.Trip{}, err
    }
    c.trips = next
    c.logger.Info("catalog: trip added", "trip_id", t.ID, "from", t.From, "to", t.To, "date", t.Date)
    return t.Clone(), nil
}

// UpdateTrip applies a partial change to a trip's descriptive fields.
// Capacity may not drop below the highest occupied seat.
func (c *Catalog) UpdateTrip(ctx context.Context, tripID string, p model.TripPatch) (model.Trip, error) {
    c.mu.Lock()
    defer c.mu.Unlock()
    i := c.index(tripID)
    if i < 0 {
        return model.Trip{}, ErrTripNotFound
    }
    t := c.trips[i].Clone()
    set := func(dst *string, src *string) {
        if src != nil {
            *dst = strings.TrimSpace(*src)
        }
    }
    if p.Type != nil {
        t.Type = *p.Type
    }
    set(&t.From, p.From)
    set(&t.To, p.To)
    set(&t.Date, p.Date)
    set(&t.Time, p.Time)
    set(&t.ArrivalTime, p.ArrivalTime)
    set(&t.Company, p.Company)
    set(&t.VehicleInfo, p.VehicleInfo)
    if p.Price != nil {
        t.Price = *p.Price
    }
    if p.TotalSeats != nil {
        t.TotalSeats = *p.TotalSeats
    }
    if err := validateTrip(t); err != nil {
        return model.Trip{}, err
    }
    if n := len(t.OccupiedSeats); n > 0 && t.OccupiedSeats[n-1] > t.TotalSeats {
        return model.Trip{}, invalid("totalSeats", "below an occupied seat")
    }

    next := slices.Clone(c.trips)
    next[i] = t
    if err := c.repo.SaveAll(ctx, next); err != nil {
        return model.Trip{}, err
    }
    c.trips = next
    return t.Clone(), nil
}

// DeleteTrip removes a trip without looking at reservations; the Ledger's
// RemoveTrip is the guarded entry point.
func (c *Catalog) DeleteTrip(ctx context.Context, tripID string) error {
    c.mu.Lock()
    defer c.mu.Unlock()
    i := c.index(tripID)
    if i < 0 {
        return ErrTripNotFound
    }
    next := slices.Delete(slices.Clone(c.trips), i, i+1)
    if err := c.repo.SaveAll(ctx, next); err != nil {
        return err
    }
    c.trips = next
    if c.selectedID == tripID {
        c.selectedID = ""
    }
    c.logger.Info("catalog: trip deleted", "trip_id", tripID)
    return nil
}

// ReserveSeats marks seats occupied.  Availability is checked again under
// the catalog lock: any seat already taken fails the whole call with a
// SeatsUnavailableError and nothing changes.
func (c *Catalog) ReserveSeats(ctx context.Context, tripID string, seats []int) error {
    c.mu.Lock()
    defer c.mu.Unlock()
    i := c.index(tripID)
    if i < 0 {
        return ErrTripNotFound
    }
    t := c.trips[i].Clone()
    var taken []int
    for _, s := range seats {
        if s < 1 || s > t.TotalSeats {
            return invalid("seat", "out of range")
        }
        if t.IsOccupied(s) {
            taken = append(taken, s)
        }
    }
    if len(taken) > 0 {
        slices.Sort(taken)
        return &SeatsUnavailableError{Seats: slices.Compact(taken)}
    }
    t.OccupiedSeats = append(t.OccupiedSeats, seats...)
    slices.Sort(t.OccupiedSeats)
    t.OccupiedSeats = slices.Compact(t.OccupiedSeats)
    return c.commit(ctx, i, t)
}

// ReleaseSeats frees seats.  Seats that were not occupied are ignored.
func (c *Catalog) ReleaseSeats(ctx context.Context, tripID string, seats []int) error {
    c.mu.Lock()
    defer c.mu.Unlock()
    i := c.index(tripID)
    if i < 0 {
        return ErrTripNotFound
    }
    t := c.trips[i].Clone()
    t.OccupiedSeats = slices.DeleteFunc(t.OccupiedSeats, func(s int) bool { return slices.Contains(seats, s) })
    return c.commit(ctx, i, t)
}

// RestoreOccupancy sets a trip's occupied seats to exactly seats.  The
// in-memory trip is replaced before the write, and stays replaced when the
// write fails; the error then reports the write.
func (c *Catalog) RestoreOccupancy(ctx context.Context, tripID string, seats []int) error {
    c.mu.Lock()
    defer c.mu.Unlock()
    i := c.index(tripID)
    if i < 0 {
        return ErrTripNotFound
    }
    t := c.trips[i].Clone()
    t.OccupiedSeats = append([]int{}, seats...)
    slices.Sort(t.OccupiedSeats)
    t.OccupiedSeats = slices.Compact(t.OccupiedSeats)

    next := slices.Clone(c.trips)
    next[i] = t
    c.trips = next
    return c.repo.SaveAll(ctx, next)
}

func (c *Catalog) commit(ctx context.Context, i int, t model.Trip) error {
    next := slices.Clone(c.trips)
    next[i] = t
    if err := c.repo.SaveAll(ctx, next); err != nil {
        return err
    }
    c.trips = next
    return nil
}

func (c *Catalog) GetByID(tripID string) (model.Trip, bool) {
    c.mu.Lock()
    defer c.mu.Unlock()
    if i := c.index(tripID); i >= 0 {
        return c.trips[i].Clone(), true
    }
    return model.Trip{}, false
}

// GetAvailableSeats lists free seat numbers in ascending order, or nil
// for an unknown trip.
func (c *Catalog) GetAvailableSeats(tripID string) []int {
    t, ok := c.GetByID(tripID)
    if !ok {
        return nil
    }
    free := make([]int, 0, max(t.TotalSeats-len(t.OccupiedSeats), 0))
    for s := 1; s <= t.TotalSeats; s++ {
        if !t.IsOccupied(s) {
            free = append(free, s)
        }
    }
    return free
}

// List returns a snapshot of every trip.
func (c *Catalog) List() []model.Trip {
    c.mu.Lock()
    defer c.mu.Unlock()
    out := make([]model.Trip, len(c.trips))
    for i, t := range c.trips {
        out[i] = t.Clone()
    }
    return out
}

// Reset drops in-memory state so the next Initialize reloads from the store.
func (c *Catalog) Reset() {
    c.mu.Lock()
    defer c.mu.Unlock()
    c.trips, c.selectedID, c.ready = nil, "", false
}

func (c *Catalog) index(id string) int {
    return slices.IndexFunc(c.trips, func(t model.Trip) bool { return t.ID == id })
}

func validateTrip(t model.Trip) error {
    switch {
    case !t.Type.Valid():
        return invalid("type", "must be bus or plane")
    case t.From == "":
        return invalid("from", "required")
    case t.To == "":
        return invalid("to", "required")
    case t.Company == "":
        return invalid("company", "required")
    case t.Price <= 0:
        return invalid("price", "must be positive")
    case t.TotalSeats <= 0:
        return invalid("totalSeats", "must be positive")
    }
    if _, err := time.Parse(time.DateOnly, t.Date); err != nil {
        return invalid("date", "expected YYYY-MM-DD")
    }
    if _, err := time.Parse("15:04", t.Time); err != nil {
        return invalid("time", "expected HH:MM")
    }
    if _, err := time.Parse("15:04", t.ArrivalTime); err != nil {
        return invalid("arrivalTime", "expected HH:MM")
    }
    return nil
}
