package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWorkoutInput is matched by every *InvalidWorkoutInputError.
	ErrInvalidWorkoutInput = errors.New("invalid workout input")
	// ErrNotFound is returned when no workout has the requested ID.
	ErrNotFound = errors.New("workout not found")
	// ErrCorruptSnapshot is returned by the strict snapshot decoder.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// InvalidWorkoutInputError identifies the input field that failed validation.
type InvalidWorkoutInputError struct {
	Field  string
	Reason string
}

func (e *InvalidWorkoutInputError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidWorkoutInput, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidWorkoutInput) match.
func (e *InvalidWorkoutInputError) Is(target error) bool {
	return target == ErrInvalidWorkoutInput
}

func invalid(field, reason string) error {
	return &InvalidWorkoutInputError{Field: field, Reason: reason}
}
