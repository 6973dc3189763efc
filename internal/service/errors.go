package service

import (
    "errors"
    "fmt"
    "strings"
)

// Sentinel errors returned by the Identity, Catalog and Ledger services.
var (
    ErrDuplicateEmail            = errors.New("email already registered")
    ErrInvalidCredentials        = errors.New("invalid credentials")
    ErrUserNotFound              = errors.New("user not found")
    ErrTripNotFound              = errors.New("trip not found")
    ErrReservationNotFound       = errors.New("reservation not found")
    ErrNoSeatsSelected           = errors.New("no seats selected")
    ErrSeatsUnavailable          = errors.New("seats unavailable")
    ErrSelectionFull             = errors.New("seat selection is full")
    ErrAlreadyCancelled          = errors.New("reservation is not active")
    ErrTripHasActiveReservations = errors.New("trip has active reservations")
    ErrValidation                = errors.New("validation failed")
)

// SeatsUnavailableError lists the requested seats that were already taken.
type SeatsUnavailableError struct {
    Seats []int
}

func (e *SeatsUnavailableError) Error() string {
    s := make([]string, len(e.Seats))
    for i, n := range e.Seats {
        s[i] = fmt.Sprint(n)
    }
    return fmt.Sprintf("seats unavailable: %s", strings.Join(s, ", "))
}

func (e *SeatsUnavailableError) Is(target error) bool { return target == ErrSeatsUnavailable }

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
    Field string
    Msg   string
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error {
    return &ValidationError{Field: field, Msg: msg}
}
