package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches any *InvalidInputError via errors.Is.
	ErrInvalidInput = errors.New("invalid impact input")

	// ErrAsteroidNotFound matches any *AsteroidNotFoundError via errors.Is.
	ErrAsteroidNotFound = errors.New("asteroid not found")
)

// InvalidInputError reports a missing, non-numeric, or out-of-range field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// AsteroidNotFoundError reports a named lookup that matched no catalog record
// and could not be satisfied from overrides alone.
type AsteroidNotFoundError struct {
	Name string
}

func (e *AsteroidNotFoundError) Error() string {
	return fmt.Sprintf("asteroid %q not found", e.Name)
}

func (e *AsteroidNotFoundError) Is(target error) bool { return target == ErrAsteroidNotFound }
