package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is returned when input validation fails at the store boundary.
var ErrInvalidInput = errors.New("invalid input")

// ConflictError reports a uniqueness violation. Field names the offending
// record field when it can be derived from the store's error detail; it is
// empty when it cannot.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "duplicate value for a unique field"
	}
	return fmt.Sprintf("duplicate value for unique field %q", e.Field)
}

// IsConflict reports whether err carries a uniqueness violation, and for
// which field.
func IsConflict(err error) (string, bool) {
	var c *ConflictError
	if errors.As(err, &c) {
		return c.Field, true
	}
	return "", false
}
