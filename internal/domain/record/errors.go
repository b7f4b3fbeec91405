package record

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every record, storage and routing component.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrNetwork    = errors.New("network failure")
)

// ValidationError reports a field that failed its format or arity check.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap exposes ErrValidation so callers can classify with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
