// Package storage is the persistent key-value layer the reservation core
// writes its collections to.  Every logical collection is one JSON blob
// under a well-known key; backends only move bytes and never interpret
// them.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Store is a durable map of named blobs that survives process restarts.
// Get reports found=false for a missing key rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context, keys ...string) error
	Close() error
}

// ErrIO is matched by every backend failure.
var ErrIO = errors.New("storage i/o error")

// IOError describes a failed store operation on a key.
type IOError struct {
	Op  string
	Key string
	Err error
}

func (e *IOError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIO) true for any IOError.
func (e *IOError) Is(target error) bool { return target == ErrIO }

func ioErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Key: key, Err: err}
}

// DefaultPrefix namespaces keys the same way the mobile client did.
const DefaultPrefix = "@reservation_"

// Keys holds the fully qualified key of each persisted collection.
type Keys struct {
	Users        string
	Trips        string
	Reservations string
	CurrentUser  string
	Initialized  string
}

// NewKeys builds the key set under prefix.
func NewKeys(prefix string) Keys {
	return Keys{
		Users:        prefix + "users",
		Trips:        prefix + "trips",
		Reservations: prefix + "reservations",
		CurrentUser:  prefix + "current_user",
		Initialized:  prefix + "initialized_flag",
	}
}

// All returns every key, in a fixed order, for bulk clearing.
func (k Keys) All() []string {
	return []string{k.Users, k.Trips, k.Reservations, k.CurrentUser, k.Initialized}
}
