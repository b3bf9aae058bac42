// Package apperr defines the error kinds shared by services and handlers.
package apperr

import (
	"errors"
	"strings"

	"github.com/samber/oops"
)

var (
	// ErrValidation marks a request payload that failed schema validation.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat marks a credential that does not meet the format rules.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnauthenticated is returned when an operation needs an identity and none is present.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the identity is not the owner of the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on uniqueness violations.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries the per-field messages of a rejected payload.
type ValidationError struct {
	Errors []string
}

// NewValidationError builds a ValidationError from field messages.
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Errors: msgs}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Message returns the public message attached with oops.Public, or fallback.
func Message(err error, fallback string) string {
	if oe, ok := oops.AsOops(err); ok {
		if msg := oe.Public(); msg != "" {
			return msg
		}
	}
	return fallback
}
