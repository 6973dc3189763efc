package model

import (
    "slices"
    "time"
)

// ReservationStatus is the lifecycle state of a reservation.
//
//  active --cancel--> cancelled
//  active --complete--> completed
//
// Nothing leaves cancelled or completed.
type ReservationStatus string

const (
    StatusActive    ReservationStatus = "active"
    StatusCancelled ReservationStatus = "cancelled"
    StatusCompleted ReservationStatus = "completed"
)

// Reservation is a passenger's claim on specific seats of one trip.
// TotalPrice is frozen at creation (trip price × seat count) and the
// record is immutable apart from its status.
//
// Fields:
//  ID          – internal identifier (res-…).
//  OrderID     – human-facing order number, ORD-{year}-{5 digits}.
//  TripID      – reserved trip.
//  UserID      – user who booked.
//  SeatNumbers – ascending, non-empty seat numbers.
//  TotalPrice  – price × len(SeatNumbers) at booking time.
//  Status      – active, cancelled or completed.
type Reservation struct {
    ID             string            `json:"id"`
    OrderID        string            `json:"orderId"`
    TripID         string            `json:"tripId"`
    UserID         string            `json:"userId"`
    SeatNumbers    []int             `json:"seatNumbers"`
    PassengerName  string            `json:"passengerName"`
    PassengerPhone string            `json:"passengerPhone"`
    PassengerEmail string            `json:"passengerEmail"`
    TotalPrice     int               `json:"totalPrice"`
    Status         ReservationStatus `json:"status"`
    CreatedAt      time.Time         `json:"createdAt"`
}

// IsActive reports whether the reservation still holds its seats.
func (r Reservation) IsActive() bool { return r.Status == StatusActive }

// Clone returns a copy that shares no slice memory with r.
func (r Reservation) Clone() Reservation {
    r.SeatNumbers = slices.Clone(r.SeatNumbers)
    return r
}

// ReservationWithTrip joins a reservation with its trip.  Trip is nil
// when the trip has since been deleted.
type ReservationWithTrip struct {
    Reservation
    Trip *Trip `json:"trip,omitempty"`
}
