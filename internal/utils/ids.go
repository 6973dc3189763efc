package utils

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh identifier of the form "<prefix>-<uuid>".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// NewOrderID returns a human-facing order number ORD-{year}-{5 digits}
// for the year of now.  Uniqueness is the caller's concern.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%05d", now.Year(), rand.IntN(100000))
}
