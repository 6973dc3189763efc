package service

import (
    "fmt"
    "slices"
    "time"

    "github.com/iliyamo/trip-seat-reservation/internal/model"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "123456"

// seed reservations hold at most this many seats, like any other booking.
const seedChunk = 5

func mustTime(s string) time.Time {
    t, err := time.Parse(time.RFC3339, s)
    if err != nil {
        panic(err)
    }
    return t
}

// seedUsers returns the default accounts without password hashes; the
// Identity service hashes SeedPassword for each when it seeds.
func seedUsers() []model.User {
    return []model.User{
        {ID: "user-admin-001", Email: "admin@test.com", Name: "Admin Kullanıcı", Role: model.RoleAdmin,
            Phone: "0532 111 2233", CreatedAt: mustTime("2025-01-01T00:00:00Z")},
        {ID: "user-test-001", Email: "user@test.com", Name: "Test Kullanıcı", Role: model.RoleUser,
            Phone: "0533 444 5566", CreatedAt: mustTime("2025-01-01T00:00:00Z")},
        {ID: "user-test-002", Email: "mehmet@test.com", Name: "Mehmet Yılmaz", Role: model.RoleUser,
            Phone: "0534 777 8899", CreatedAt: mustTime("2025-01-02T00:00:00Z")},
    }
}

// seedTrips returns the default timetable.  Occupancy is filled in from
// seedReservations so every held seat belongs to an active reservation.
func seedTrips() []model.Trip {
    created := mustTime("2025-12-01T00:00:00Z")
    trip := func(id string, typ model.TripType, from, to, date, dep, arr string, price, seats int, company, vehicle string) model.Trip {
        return model.Trip{ID: id, Type: typ, From: from, To: to, Date: date, Time: dep, ArrivalTime: arr,
            Price: price, TotalSeats: seats, OccupiedSeats: []int{}, Company: company, VehicleInfo: vehicle, CreatedAt: created}
    }
    trips := []model.Trip{
        trip("trip-bus-001", model.TripBus, "İstanbul", "Ankara", "2025-12-15", "08:00", "13:30", 350, 40, "Metro Turizm", "Mercedes Travego"),
        trip("trip-bus-002", model.TripBus, "İstanbul", "Ankara", "2025-12-15", "10:00", "15:30", 375, 40, "Kamil Koç", "MAN Lions Coach"),
        trip("trip-bus-003", model.TripBus, "Ankara", "İzmir", "2025-12-16", "09:00", "16:00", 425, 40, "Pamukkale", "Neoplan Tourliner"),
        trip("trip-bus-004", model.TripBus, "İzmir", "Antalya", "2025-12-17", "07:30", "13:00", 300, 40, "Ulusoy", "Mercedes Travego"),
        trip("trip-plane-001", model.TripPlane, "İstanbul", "İzmir", "2025-12-16", "10:30", "11:45", 850, 150, "Türk Hava Yolları", "Airbus A321"),
        trip("trip-plane-002", model.TripPlane, "İstanbul", "Antalya", "2025-12-17", "14:00", "15:30", 750, 180, "Pegasus", "Boeing 737-800"),
        trip("trip-plane-003", model.TripPlane, "Ankara", "Trabzon", "2025-12-18", "08:45", "10:15", 680, 120, "AnadoluJet", "Boeing 737-700"),
        trip("trip-plane-004", model.TripPlane, "İzmir", "İstanbul", "2025-12-15", "18:00", "19:15", 720, 150, "SunExpress", "Airbus A320"),
        trip("trip-bus-005", model.TripBus, "İstanbul", "Bursa", "2025-12-15", "12:00", "14:30", 180, 40, "Süzer Turizm", "Mercedes Tourismo"),
        trip("trip-bus-006", model.TripBus, "Ankara", "Konya", "2025-12-16", "15:00", "18:30", 220, 40, "Metro Turizm", "Neoplan Cityliner"),
    }
    held := activeSeatsByTrip(seedReservations())
    for i := range trips {
        trips[i].OccupiedSeats = held[trips[i].ID]
        if trips[i].OccupiedSeats == nil {
            trips[i].OccupiedSeats = []int{}
        }
    }
    return trips
}

// seedOccupancy is the seat map the default timetable ships with.  The
// test user's two bookings come first; the rest is booked in blocks by the
// second test account so the map is fully backed by reservations.
var seedOccupancy = []struct {
    tripID string
    price  int
    seats  []int
}{
    {"trip-bus-001", 350, []int{1, 2, 5, 10, 15, 22, 30}},
    {"trip-bus-002", 375, []int{3, 7, 12, 18}},
    {"trip-bus-003", 425, []int{2, 4, 6, 8, 20, 21}},
    {"trip-bus-004", 300, []int{1, 3, 5, 7, 9}},
    {"trip-plane-001", 850, []int{1, 2, 3, 10, 11, 12, 25, 26, 50, 51, 52, 75, 100}},
    {"trip-plane-002", 750, []int{5, 6, 15, 16, 30, 31, 45, 46, 90, 91}},
    {"trip-plane-003", 680, []int{1, 2, 3, 4, 20, 21, 22, 40, 41}},
    {"trip-plane-004", 720, []int{8, 9, 10, 35, 36, 70, 71, 72}},
    {"trip-bus-005", 180, []int{11, 12, 25}},
    {"trip-bus-006", 220, []int{1, 2, 3, 4}},
}

func seedReservations() []model.Reservation {
    out := []model.Reservation{
        {ID: "res-001", OrderID: "ORD-2025-00001", TripID: "trip-bus-001", UserID: "user-test-001",
            SeatNumbers: []int{1, 2}, PassengerName: "Test Kullanıcı", PassengerPhone: "0533 444 5566",
            PassengerEmail: "user@test.com", TotalPrice: 700, Status: model.StatusActive,
            CreatedAt: mustTime("2025-12-10T10:00:00Z")},
        {ID: "res-002", OrderID: "ORD-2025-00002", TripID: "trip-plane-001", UserID: "user-test-001",
            SeatNumbers: []int{10, 11, 12}, PassengerName: "Test Kullanıcı", PassengerPhone: "0533 444 5566",
            PassengerEmail: "user@test.com", TotalPrice: 2550, Status: model.StatusActive,
            CreatedAt: mustTime("2025-12-10T11:00:00Z")},
    }
    taken := activeSeatsByTrip(out)
    created := mustTime("2025-12-09T09:00:00Z")
    n := len(out)
    for _, so := range seedOccupancy {
        var rest []int
        for _, s := range so.seats {
            if !slices.Contains(taken[so.tripID], s) {
                rest = append(rest, s)
            }
        }
        for chunk := range slices.Chunk(rest, seedChunk) {
            n++
            out = append(out, model.Reservation{
                ID:             fmt.Sprintf("res-%03d", n),
                OrderID:        fmt.Sprintf("ORD-2025-%05d", n),
                TripID:         so.tripID,
                UserID:         "user-test-002",
                SeatNumbers:    slices.Clone(chunk),
                PassengerName:  "Mehmet Yılmaz",
                PassengerPhone: "0534 777 8899",
                PassengerEmail: "mehmet@test.com",
                TotalPrice:     so.price * len(chunk),
                Status:         model.StatusActive,
                CreatedAt:      created.Add(time.Duration(n) * time.Minute),
            })
        }
    }
    return out
}

// activeSeatsByTrip unions the seats of active reservations per trip,
// sorted ascending.
func activeSeatsByTrip(list []model.Reservation) map[string][]int {
    held := make(map[string][]int)
    for _, r := range list {
        if !r.IsActive() {
            continue
        }
        held[r.TripID] = append(held[r.TripID], r.SeatNumbers...)
    }
    for id, seats := range held {
        slices.Sort(seats)
        held[id] = slices.Compact(seats)
    }
    return held
}
