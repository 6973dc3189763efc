// Package metrics exposes Prometheus counters for the booking flow.
package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    reservationCreated = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "trip_reservation",
            Name:      "reservation_created_total",
            Help:      "Count of reservations created by trip type.",
        },
        []string{"trip_type"},
    )

    reservationCancelled = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "trip_reservation",
            Name:      "reservation_cancelled_total",
            Help:      "Count of reservations cancelled.",
        },
    )

    reservationRejected = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "trip_reservation",
            Name:      "reservation_rejected_total",
            Help:      "Count of reservation attempts rejected by reason.",
        },
        []string{"reason"},
    )

    seatsReserved = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "trip_reservation",
            Name:      "seats_reserved_total",
            Help:      "Count of seats reserved across all trips.",
        },
    )
)

// Register registers metrics with the default registry (idempotent).
func Register() {
    once.Do(func() {
        prometheus.MustRegister(reservationCreated, reservationCancelled, reservationRejected, seatsReserved)
    })
}

func IncReservationCreated(tripType string, seats int) {
    reservationCreated.WithLabelValues(tripType).Inc()
    seatsReserved.Add(float64(seats))
}

func IncReservationCancelled() {
    reservationCancelled.Inc()
}

func IncReservationRejected(reason string) {
    reservationRejected.WithLabelValues(reason).Inc()
}
