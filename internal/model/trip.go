package model

import (
    "slices"
    "time"
)

// TripType distinguishes bus departures from flights.
type TripType string

const (
    TripBus   TripType = "bus"
    TripPlane TripType = "plane"
)

// Valid reports whether t is one of the known trip types.
func (t TripType) Valid() bool { return t == TripBus || t == TripPlane }

// Trip is a scheduled bus or plane departure with a fixed seat capacity.
// OccupiedSeats always stays within [1, TotalSeats], sorted ascending and
// free of duplicates; it only changes through seat reservation and release.
//
// Date is a calendar date (YYYY-MM-DD); Time and ArrivalTime are HH:MM.
// Price is a whole amount per seat.
type Trip struct {
    ID            string    `json:"id"`
    Type          TripType  `json:"type"`
    From          string    `json:"from"`
    To            string    `json:"to"`
    Date          string    `json:"date"`
    Time          string    `json:"time"`
    ArrivalTime   string    `json:"arrivalTime"`
    Price         int       `json:"price"`
    TotalSeats    int       `json:"totalSeats"`
    OccupiedSeats []int     `json:"occupiedSeats"`
    Company       string    `json:"company"`
    VehicleInfo   string    `json:"vehicleInfo,omitempty"`
    CreatedAt     time.Time `json:"createdAt"`
}

// IsOccupied reports whether seat n is held on this trip.
func (t Trip) IsOccupied(n int) bool { return slices.Contains(t.OccupiedSeats, n) }

// Clone returns a copy that shares no slice memory with t.
func (t Trip) Clone() Trip {
    t.OccupiedSeats = slices.Clone(t.OccupiedSeats)
    if t.OccupiedSeats == nil {
        t.OccupiedSeats = []int{}
    }
    return t
}

// TripDraft carries the admin-supplied fields of a new trip.  Identity,
// occupancy and creation time are assigned by the catalog.
type TripDraft struct {
    Type        TripType `json:"type"`
    From        string   `json:"from"`
    To          string   `json:"to"`
    Date        string   `json:"date"`
    Time        string   `json:"time"`
    ArrivalTime string   `json:"arrivalTime"`
    Price       int      `json:"price"`
    TotalSeats  int      `json:"totalSeats"`
    Company     string   `json:"company"`
    VehicleInfo string   `json:"vehicleInfo,omitempty"`
}

// TripPatch is a partial update of a trip's descriptive fields.  Nil
// fields are left untouched.  Occupancy is not patchable.
type TripPatch struct {
    Type        *TripType `json:"type,omitempty"`
    From        *string   `json:"from,omitempty"`
    To          *string   `json:"to,omitempty"`
    Date        *string   `json:"date,omitempty"`
    Time        *string   `json:"time,omitempty"`
    ArrivalTime *string   `json:"arrivalTime,omitempty"`
    Price       *int      `json:"price,omitempty"`
    TotalSeats  *int      `json:"totalSeats,omitempty"`
    Company     *string   `json:"company,omitempty"`
    VehicleInfo *string   `json:"vehicleInfo,omitempty"`
}
