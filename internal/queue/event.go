// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried in ReservationEvent.Type.
const (
    EventReservationCreated   = "reservation.created"
    EventReservationCancelled = "reservation.cancelled"
)

// ReservationQueue is the durable queue reservation events are routed to.
const ReservationQueue = "reservation.events"

// ReservationEvent is published after a reservation is created or
// cancelled.  It carries enough trip detail for downstream consumers to
// log or notify without reading the reservation store.
type ReservationEvent struct {
    Type          string `json:"type"`
    ReservationID string `json:"reservation_id"`
    OrderID       string `json:"order_id"`
    UserID        string `json:"user_id"`
    TripID        string `json:"trip_id"`
    TripType      string `json:"trip_type"`
    From          string `json:"from"`
    To            string `json:"to"`
    Date          string `json:"date"`
    Time          string `json:"time"`
    Company       string `json:"company"`
    Seats         []int  `json:"seats"`
    TotalPrice    int    `json:"total_price"`
    OccurredAt    string `json:"occurred_at"`
}
