package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)

	// Catalog errors
	ErrUnknownTest = errors.New("unknown test")

	// Flow errors
	ErrDatasetNotLoaded = errors.New("no dataset loaded")
	ErrNotConfigured    = errors.New("analysis not configured")
	ErrNoResult         = errors.New("no result to refresh")

	// Data errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrNotNumeric       = errors.New("value is not numeric")
)

// NewNotFoundError builds a not-found error with resource context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, resource, id)
}

// NewUnknownTestError builds an unknown-test error for an id outside the catalog.
// A closed catalog makes this a programmer error rather than user input noise,
// so callers are expected to treat it as a bug.
func NewUnknownTestError(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownTest, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUnknownTestError(err error) bool {
	return errors.Is(err, ErrUnknownTest)
}
