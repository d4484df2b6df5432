package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrInvalidTransition      = errors.New("invalid booking transition")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("already exists")
	ErrBackendUnavailable     = errors.New("backend unavailable")

	// ErrInvalidRange is returned by the price calculator for a non-positive day count.
	ErrInvalidRange = fmt.Errorf("%w: day count must be positive", ErrValidation)
)

// Invalid builds a human-readable validation error.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Unavailable marks a failed collaborator call. Both ErrBackendUnavailable and
// the original error stay reachable through errors.Is / errors.As.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, op, err)
}
