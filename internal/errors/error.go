// Package errors provides the error kinds returned by catalog operations.
// Callers check them with errors.Is / errors.As, never by message.
package errors

import (
	"errors"
	"fmt"
)

var ErrProductNotFound = errors.New("product not found")
var ErrNameConflict = errors.New("an active product with this name already exists")
var ErrValidation = errors.New("validation failed")
var ErrStorage = errors.New("storage failure")

// ValidationError reports a caller-supplied argument that violates a domain rule.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Storage wraps an unexpected storage failure so that it matches ErrStorage
// while keeping the original cause in the chain.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
