/*
errors.go - Centralized error types for the booking engine

ERROR CATEGORIES:
  1. Not-found errors - Operation targets a booking that does not exist
  2. Validation errors - Missing/malformed required fields, negative amounts
  3. Store errors - Persistence failures, treated as fatal and not retried

USAGE:
  The API boundary maps these with errors.Is / errors.As:

    if errors.Is(err, booking.ErrNotFound)  -> 404
    if booking.IsValidation(err)            -> 400
    anything else                           -> 500
*/
package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation targets a booking
	// identifier that does not exist.
	ErrNotFound = errors.New("booking not found")

	// ErrStore wraps persistence-level failures. Fatal to the request,
	// never retried, never masked.
	ErrStore = errors.New("store failure")
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
