package application

import (
	"errors"
	"fmt"

	"github.com/example/room-reservations/internal/booking"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned for unknown users or wrong passwords.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a session token has passed its TTL.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token was logged out.
	ErrSessionRevoked = errors.New("application: session revoked")
	// ErrDeleteNotConfirmed is returned when a delete request lacks the
	// explicit confirmation flag.
	ErrDeleteNotConfirmed = errors.New("application: delete not confirmed")
	// ErrOperationInFlight is returned when a reservation already has a
	// pending persistence operation.
	ErrOperationInFlight = errors.New("application: reservation has a pending operation")
	// ErrCancelled is returned when an optimistic entry was withdrawn
	// before the persistence gateway answered.
	ErrCancelled = errors.New("application: operation cancelled")
)

// ValidationError captures field level validation issues that callers can
// surface to users, one message per offending field.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message per field
// wins so callers see the most fundamental problem.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, ok := v.FieldErrors[field]; !ok {
		v.FieldErrors[field] = message
	}
}

// ConflictError reports that a candidate reservation overlaps an existing
// one. It carries the offending booking so the caller can show which
// interval is in the way.
type ConflictError struct {
	Conflicting booking.Reservation
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	c := e.Conflicting
	return fmt.Sprintf("room %s is already reserved on %s from %s to %s", c.Room, c.Date, c.Start, c.End)
}

// PersistenceError wraps a gateway failure after the optimistic mutation
// was rolled back. The underlying message is surfaced verbatim.
type PersistenceError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the gateway error for errors.Is/As.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
