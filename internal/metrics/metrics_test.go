package metrics

import (
    "testing"

    "github.com/prometheus/client_golang/prometheus/testutil"
    "github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
    Register()
    Register()

    before := testutil.ToFloat64(reservationCreated.WithLabelValues("bus"))
    seatsBefore := testutil.ToFloat64(seatsReserved)
    IncReservationCreated("bus", 2)
    assert.Equal(t, before+1, testutil.ToFloat64(reservationCreated.WithLabelValues("bus")))
    assert.Equal(t, seatsBefore+2, testutil.ToFloat64(seatsReserved))

    rej := testutil.ToFloat64(reservationRejected.WithLabelValues("seats_unavailable"))
    IncReservationRejected("seats_unavailable")
    assert.Equal(t, rej+1, testutil.ToFloat64(reservationRejected.WithLabelValues("seats_unavailable")))

    c := testutil.ToFloat64(reservationCancelled)
    IncReservationCancelled()
    assert.Equal(t, c+1, testutil.ToFloat64(reservationCancelled))
}
