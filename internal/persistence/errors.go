package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when stored data would break a
	// schema-level check.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
