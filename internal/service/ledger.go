package service

import (
    "cmp"
    "context"
    "errors"
    "log/slog"
    "slices"
    "strings"
    "sync"
    "time"

    "github.com/iliyamo/trip-seat-reservation/internal/metrics"
    "github.com/iliyamo/trip-seat-reservation/internal/model"
    "github.com/iliyamo/trip-seat-reservation/internal/queue"
    "github.com/iliyamo/trip-seat-reservation/internal/repository"
    "github.com/iliyamo/trip-seat-reservation/internal/utils"
)

// DefaultMaxSeats caps how many seats one booking may hold.
const DefaultMaxSeats = 5

// SeatInventory is the part of the trip catalog the ledger books against.
// ReserveSeats must be atomic: either every seat is taken or none is.
// RestoreOccupancy must replace the in-memory occupancy even when the
// write behind it fails.
type SeatInventory interface {
    GetByID(tripID string) (model.Trip, bool)
    List() []model.Trip
    ReserveSeats(ctx context.Context, tripID string, seats []int) error
    ReleaseSeats(ctx context.Context, tripID string, seats []int) error
    RestoreOccupancy(ctx context.Context, tripID string, seats []int) error
    DeleteTrip(ctx context.Context, tripID string) error
}

// EventPublisher receives reservation events once they are committed.
type EventPublisher interface {
    PublishReservation(ctx context.Context, ev queue.ReservationEvent) error
}

// LedgerOptions tunes a Ledger.  Zero values pick defaults; a nil
// Publisher disables events.
type LedgerOptions struct {
    MaxSeats  int
    Logger    *slog.Logger
    Now       func() time.Time
    Publisher EventPublisher
}

// ReservationRequest names the trip, the booking user and the passenger
// contact details of a new reservation.
type ReservationRequest struct {
    TripID         string
    UserID         string
    PassengerName  string
    PassengerPhone string
    PassengerEmail string
}

// Ledger owns reservations and the in-progress seat selection, and keeps
// every trip's occupied seats equal to the seats of its active
// reservations.  The ledger lock is always taken before the inventory's.
type Ledger struct {
    mu           sync.Mutex
    repo         *repository.ReservationRepo
    inv          SeatInventory
    reservations []model.Reservation
    selected     []int
    currentID    string
    ready        bool

    maxSeats  int
    logger    *slog.Logger
    now       func() time.Time
    publisher EventPublisher
}

func NewLedger(repo *repository.ReservationRepo, inv SeatInventory, opts LedgerOptions) *Ledger {
    if opts.MaxSeats <= 0 {
        opts.MaxSeats = DefaultMaxSeats
    }
    return &Ledger{
        repo:      repo,
        inv:       inv,
        maxSeats:  opts.MaxSeats,
        logger:    loggerOrDiscard(opts.Logger),
        now:       clockOrUTC(opts.Now),
        publisher: opts.Publisher,
    }
}

// Initialize loads reservations, seeding the defaults when none are
// stored, then realigns trip occupancy with the active reservations.  A
// second call is a no-op.
func (l *Ledger) Initialize(ctx context.Context) error {
    l.mu.Lock()
    defer l.mu.Unlock()
    if l.ready {
        return nil
    }
    list, ok, err := l.repo.LoadAll(ctx)
    if err != nil {
        l.logger.Warn("ledger: load reservations failed, using defaults", "error", err)
        ok = false
    }
    if !ok {
        list = seedReservations()
        if err := l.repo.SaveAll(ctx, list); err != nil {
            return err
        }
        l.logger.Info("ledger: seeded default reservations", "count", len(list))
    }
    l.reservations = list
    l.reconcile(ctx)
    l.ready = true
    return nil
}

// reconcile rewrites the occupancy of every trip that disagrees with the
// active reservations.  Reservations are the record: a booking or cancel
// cut short by a store outage can leave the trips blob out of step.
func (l *Ledger) reconcile(ctx context.Context) {
    held := activeSeatsByTrip(l.reservations)
    for _, t := range l.inv.List() {
        want := held[t.ID]
        if slices.Equal(t.OccupiedSeats, want) {
            continue
        }
        l.logger.Warn("ledger: occupancy realigned", "trip_id", t.ID, "was", t.OccupiedSeats, "now", want)
        if err := l.inv.RestoreOccupancy(ctx, t.ID, want); err != nil {
            l.logger.Error("ledger: realigned occupancy not saved", "trip_id", t.ID, "error", err)
        }
    }
}

// MaxSeats is the per-booking seat cap.
func (l *Ledger) MaxSeats() int { return l.maxSeats }

// SelectSeat adds n to the selection, keeping it ascending.  Selecting a
// seat twice is a no-op; a full selection rejects new seats.
func (l *Ledger) SelectSeat(n int) error {
    if n < 1 {
        return invalid("seat", "must be positive")
    }
    l.mu.Lock()
    defer l.mu.Unlock()
    i, found := slices.BinarySearch(l.selected, n)
    if found {
        return nil
    }
    if len(l.selected) >= l.maxSeats {
        return ErrSelectionFull
    }
    l.selected = slices.Insert(l.selected, i, n)
    return nil
}

func (l *Ledger) DeselectSeat(n int) {
    l.mu.Lock()
    defer l.mu.Unlock()
    if i, found := slices.BinarySearch(l.selected, n); found {
        l.selected = slices.Delete(l.selected, i, i+1)
    }
}

// SelectedSeats returns the current selection in ascending order.
func (l *Ledger) SelectedSeats() []int {
    l.mu.Lock()
    defer l.mu.Unlock()
    return slices.Clone(l.selected)
}

func (l *Ledger) ClearSelectedSeats() {
    l.mu.Lock()
    l.selected = nil
    l.mu.Unlock()
}

// CreateReservation books the current selection on req.TripID.  On
// success the selection is cleared and the reservation becomes current.
func (l *Ledger) CreateReservation(ctx context.Context, req ReservationRequest) (model.Reservation, error) {
    l.mu.Lock()
    r, ev, err := l.book(ctx, req, l.selected)
    if err == nil {
        l.selected = nil
        l.currentID = r.ID
    }
    l.mu.Unlock()

    if err != nil {
        return model.Reservation{}, err
    }
    l.publish(ctx, ev)
    return r, nil
}

// BookSeats books an explicit seat list without touching the in-progress
// selection.  It is the entry point for callers that carry their own
// selection, such as the HTTP adapter serving many users.
func (l *Ledger) BookSeats(ctx context.Context, req ReservationRequest, seats []int) (model.Reservation, error) {
    sel := slices.Clone(seats)
    slices.Sort(sel)
    sel = slices.Compact(sel)
    for _, s := range sel {
        if s < 1 {
            return model.Reservation{}, invalid("seat", "must be positive")
        }
    }
    if len(sel) > l.maxSeats {
        return model.Reservation{}, ErrSelectionFull
    }

    l.mu.Lock()
    r, ev, err := l.book(ctx, req, sel)
    l.mu.Unlock()

    if err != nil {
        return model.Reservation{}, err
    }
    l.publish(ctx, ev)
    return r, nil
}

// book runs check, reserve, append and persist as one step.  Callers hold
// l.mu.  If the reservation list cannot be saved the trip's previous
// occupancy is put back so occupancy never outlives its reservation.
func (l *Ledger) book(ctx context.Context, req ReservationRequest, seats []int) (model.Reservation, queue.ReservationEvent, error) {
    var none queue.ReservationEvent
    trip, ok := l.inv.GetByID(req.TripID)
    if !ok {
        metrics.IncReservationRejected("trip_not_found")
        return model.Reservation{}, none, ErrTripNotFound
    }
    if len(seats) == 0 {
        metrics.IncReservationRejected("no_seats")
        return model.Reservation{}, none, ErrNoSeatsSelected
    }
    if strings.TrimSpace(req.UserID) == "" {
        return model.Reservation{}, none, invalid("userId", "required")
    }
    if strings.TrimSpace(req.PassengerName) == "" {
        return model.Reservation{}, none, invalid("passengerName", "required")
    }
    var taken []int
    for _, s := range seats {
        if trip.IsOccupied(s) {
            taken = append(taken, s)
        }
    }
    if len(taken) > 0 {
        metrics.IncReservationRejected("seats_unavailable")
        return model.Reservation{}, none, &SeatsUnavailableError{Seats: taken}
    }

    now := l.now()
    r := model.Reservation{
        ID:             utils.NewID("res"),
        OrderID:        l.uniqueOrderID(now),
        TripID:         trip.ID,
        UserID:         req.UserID,
        SeatNumbers:    slices.Clone(seats),
        PassengerName:  strings.TrimSpace(req.PassengerName),
        PassengerPhone: strings.TrimSpace(req.PassengerPhone),
        PassengerEmail: strings.TrimSpace(req.PassengerEmail),
        TotalPrice:     trip.Price * len(seats),
        Status:         model.StatusActive,
        CreatedAt:      now,
    }

    if err := l.inv.ReserveSeats(ctx, trip.ID, r.SeatNumbers); err != nil {
        if errors.Is(err, ErrSeatsUnavailable) {
            metrics.IncReservationRejected("seats_unavailable")
        }
        return model.Reservation{}, none, err
    }

    next := append(slices.Clone(l.reservations), r)
    if err := l.repo.SaveAll(ctx, next); err != nil {
        if rbErr := l.inv.RestoreOccupancy(ctx, trip.ID, trip.OccupiedSeats); rbErr != nil {
            l.logger.Error("ledger: restore after failed save", "trip_id", trip.ID, "seats", r.SeatNumbers, "error", rbErr)
        }
        return model.Reservation{}, none, err
    }
    l.reservations = next

    metrics.IncReservationCreated(string(trip.Type), len(r.SeatNumbers))
    l.logger.Info("ledger: reservation created", "reservation_id", r.ID, "order_id", r.OrderID,
        "trip_id", trip.ID, "seats", r.SeatNumbers, "total", r.TotalPrice)
    return r.Clone(), l.event(queue.EventReservationCreated, r, trip), nil
}

func (l *Ledger) uniqueOrderID(now time.Time) string {
    for {
        id := utils.NewOrderID(now)
        if !slices.ContainsFunc(l.reservations, func(r model.Reservation) bool { return r.OrderID == id }) {
            return id
        }
    }
}

// CancelReservation frees the reservation's seats and marks it cancelled.
// Only active reservations can be cancelled.
func (l *Ledger) CancelReservation(ctx context.Context, id string) error {
    l.mu.Lock()
    ev, err := l.cancel(ctx, id)
    l.mu.Unlock()
    if err != nil {
        return err
    }
    l.publish(ctx, ev)
    return nil
}

func (l *Ledger) cancel(ctx context.Context, id string) (queue.ReservationEvent, error) {
    var none queue.ReservationEvent
    i := l.index(id)
    if i < 0 {
        return none, ErrReservationNotFound
    }
    r := l.reservations[i].Clone()
    if !r.IsActive() {
        return none, ErrAlreadyCancelled
    }

    trip, tripExists := l.inv.GetByID(r.TripID)
    if tripExists {
        if err := l.inv.ReleaseSeats(ctx, r.TripID, r.SeatNumbers); err != nil && !errors.Is(err, ErrTripNotFound) {
            return none, err
        }
    }

    r.Status = model.StatusCancelled
    next := slices.Clone(l.reservations)
    next[i] = r
    if err := l.repo.SaveAll(ctx, next); err != nil {
        if tripExists {
            if rbErr := l.inv.RestoreOccupancy(ctx, r.TripID, trip.OccupiedSeats); rbErr != nil {
                l.logger.Error("ledger: restore after failed save", "trip_id", r.TripID, "seats", r.SeatNumbers, "error", rbErr)
            }
        }
        return none, err
    }
    l.reservations = next

    metrics.IncReservationCancelled()
    l.logger.Info("ledger: reservation cancelled", "reservation_id", r.ID, "trip_id", r.TripID, "seats", r.SeatNumbers)
    return l.event(queue.EventReservationCancelled, r, trip), nil
}

// GetUserReservations returns the user's reservations joined with their
// trips, newest first.  Trip is nil for deleted trips.
func (l *Ledger) GetUserReservations(userID string) []model.ReservationWithTrip {
    l.mu.Lock()
    defer l.mu.Unlock()
    out := []model.ReservationWithTrip{}
    for _, r := range l.reservations {
        if r.UserID == userID {
            out = append(out, l.join(r))
        }
    }
    slices.SortStableFunc(out, func(a, b model.ReservationWithTrip) int {
        return b.CreatedAt.Compare(a.CreatedAt)
    })
    return out
}

func (l *Ledger) GetWithTrip(id string) (model.ReservationWithTrip, bool) {
    l.mu.Lock()
    defer l.mu.Unlock()
    i := l.index(id)
    if i < 0 {
        return model.ReservationWithTrip{}, false
    }
    return l.join(l.reservations[i]), true
}

// CurrentReservation is the reservation most recently created through
// CreateReservation or picked with SetCurrentReservation.
func (l *Ledger) CurrentReservation() (model.Reservation, bool) {
    l.mu.Lock()
    defer l.mu.Unlock()
    if i := l.index(l.currentID); i >= 0 {
        return l.reservations[i].Clone(), true
    }
    return model.Reservation{}, false
}

// SetCurrentReservation makes id current; an empty or unknown id clears it.
func (l *Ledger) SetCurrentReservation(id string) bool {
    l.mu.Lock()
    defer l.mu.Unlock()
    if l.index(id) < 0 {
        l.currentID = ""
        return false
    }
    l.currentID = id
    return true
}

// RemoveTrip deletes a trip unless an active reservation still holds
// seats on it.
func (l *Ledger) RemoveTrip(ctx context.Context, tripID string) error {
    l.mu.Lock()
    defer l.mu.Unlock()
    if slices.ContainsFunc(l.reservations, func(r model.Reservation) bool {
        return r.TripID == tripID && r.IsActive()
    }) {
        return ErrTripHasActiveReservations
    }
    return l.inv.DeleteTrip(ctx, tripID)
}

// Drift describes a trip whose occupied seats disagree with its active
// reservations.  Unbacked seats are occupied without a reservation;
// Unmarked seats are reserved but not occupied.
type Drift struct {
    TripID   string `json:"tripId"`
    Unbacked []int  `json:"unbacked,omitempty"`
    Unmarked []int  `json:"unmarked,omitempty"`
}

// Audit compares every trip's occupancy with the active reservations
// referencing it.  An empty result means the two agree everywhere.
func (l *Ledger) Audit() []Drift {
    l.mu.Lock()
    defer l.mu.Unlock()
    held := activeSeatsByTrip(l.reservations)
    out := []Drift{}
    seen := make(map[string]bool)
    for _, t := range l.inv.List() {
        seen[t.ID] = true
        d := Drift{TripID: t.ID}
        for _, s := range t.OccupiedSeats {
            if !slices.Contains(held[t.ID], s) {
                d.Unbacked = append(d.Unbacked, s)
            }
        }
        for _, s := range held[t.ID] {
            if !t.IsOccupied(s) {
                d.Unmarked = append(d.Unmarked, s)
            }
        }
        if len(d.Unbacked) > 0 || len(d.Unmarked) > 0 {
            out = append(out, d)
        }
    }
    for id, seats := range held {
        if !seen[id] {
            out = append(out, Drift{TripID: id, Unmarked: seats})
        }
    }
    slices.SortFunc(out, func(a, b Drift) int { return cmp.Compare(a.TripID, b.TripID) })
    return out
}

// Reservations returns a snapshot of every reservation.
func (l *Ledger) Reservations() []model.Reservation {
    l.mu.Lock()
    defer l.mu.Unlock()
    out := make([]model.Reservation, len(l.reservations))
    for i, r := range l.reservations {
        out[i] = r.Clone()
    }
    return out
}

// Reset drops in-memory state so the next Initialize reloads from the store.
func (l *Ledger) Reset() {
    l.mu.Lock()
    defer l.mu.Unlock()
    l.reservations, l.selected, l.currentID, l.ready = nil, nil, "", false
}

func (l *Ledger) index(id string) int {
    if id == "" {
        return -1
    }
    return slices.IndexFunc(l.reservations, func(r model.Reservation) bool { return r.ID == id })
}

func (l *Ledger) join(r model.Reservation) model.ReservationWithTrip {
    out := model.ReservationWithTrip{Reservation: r.Clone()}
    if t, ok := l.inv.GetByID(r.TripID); ok {
        out.Trip = &t
    }
    return out
}

func (l *Ledger) event(typ string, r model.Reservation, t model.Trip) queue.ReservationEvent {
    return queue.ReservationEvent{
        Type:          typ,
        ReservationID: r.ID,
        OrderID:       r.OrderID,
        UserID:        r.UserID,
        TripID:        r.TripID,
        TripType:      string(t.Type),
        From:          t.From,
        To:            t.To,
        Date:          t.Date,
        Time:          t.Time,
        Company:       t.Company,
        Seats:         slices.Clone(r.SeatNumbers),
        TotalPrice:    r.TotalPrice,
        OccurredAt:    l.now().Format(time.RFC3339),
    }
}

// publish is best effort; a broker failure never undoes a booking.
func (l *Ledger) publish(ctx context.Context, ev queue.ReservationEvent) {
    if l.publisher == nil {
        return
    }
    if err := l.publisher.PublishReservation(ctx, ev); err != nil {
        l.logger.Warn("ledger: publish event failed", "type", ev.Type, "reservation_id", ev.ReservationID, "error", err)
    }
}
