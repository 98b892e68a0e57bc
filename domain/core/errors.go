package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural errors: the input cannot be interpreted. These surface
	// immediately; processing continues for the remaining columns.
	ErrMalformedColumn = errors.New("malformed subject-condition column")
	ErrEmptyTable      = errors.New("no parseable data columns in table")

	// Statistical edge cases. These are never raised by the pipeline; they
	// exist so adapters can report why a computation was refused.
	ErrInsufficientData = errors.New("insufficient paired observations")
	ErrDegenerateSample = errors.New("zero-variance differences")
	ErrSampleSize       = errors.New("sample size out of supported range")
)

// Error constructors with context
func NewMalformedColumnError(label string, reason string) error {
	return fmt.Errorf("%w: %q (%s)", ErrMalformedColumn, label, reason)
}

func NewInsufficientDataError(parameter string, group string, n int) error {
	return fmt.Errorf("%w: %s/%s has n=%d", ErrInsufficientData, parameter, group, n)
}

// Error checking helpers
func IsMalformedColumn(err error) bool {
	return errors.Is(err, ErrMalformedColumn)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
