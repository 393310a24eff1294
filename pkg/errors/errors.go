package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across handlers and services. Handlers map these to
// HTTP status families; user-facing wording lives in the handlers.

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates missing or invalid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation indicates a wizard field failed validation
	ErrValidation = errors.New("validation failed")

	// ErrLimitExceeded indicates an attachment count/size limit violation
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrConflict indicates a conflict with existing data
	ErrConflict = errors.New("conflict")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// ValidationError creates a validation error carrying the offending field
func ValidationError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrValidation)
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// LimitExceededError creates a resource-limit error with context
func LimitExceededError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrLimitExceeded)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
