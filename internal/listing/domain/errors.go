package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed or out-of-range input, including addresses that do not geocode.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated marks operations that need a caller when none could be resolved.
	ErrUnauthenticated = errors.New("viewer cannot be found")
	// ErrNotFound indicates that a referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrUpstream wraps failures of the store or an external service.
	ErrUpstream = errors.New("upstream failure")
)

// ValidationError names the first rule a request violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps err as an ErrUpstream failure with op as context. Domain errors pass through.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrUnauthenticated) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}
