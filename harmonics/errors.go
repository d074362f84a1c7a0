package harmonics

import (
	"errors"
	"fmt"

	"github.com/notargets/LBHarmonics/operator"
	"github.com/notargets/LBHarmonics/spectral"
)

var (
	ErrUnavailable   = errors.New("harmonic unavailable")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Errors of the pipeline stages, re-exported for callers of Update
	ErrNoBoundary   = operator.ErrNoBoundary
	ErrTooFewFree   = operator.ErrTooFewFree
	ErrInvalidCount = spectral.ErrInvalidCount
	ErrNotConverged = spectral.ErrNotConverged
)

// UnavailableError is returned when a harmonic is requested that the last
// Update did not produce
type UnavailableError struct {
	Index     int
	Available int
}

func (e *UnavailableError) Error() string {
	if e.Available == 0 {
		return fmt.Sprintf("harmonic %d: %v, no successful update", e.Index, ErrUnavailable)
	}
	return fmt.Sprintf("harmonic %d: %v, have 0..%d", e.Index, ErrUnavailable, e.Available-1)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// ConfigError names the configuration field that was rejected
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", ErrInvalidConfig, e.Field, e.Err)
	}
	return fmt.Sprintf("%v: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidConfig, e.Err}
	}
	return []error{ErrInvalidConfig}
}
