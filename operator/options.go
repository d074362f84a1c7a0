package operator

import (
	"io"
	"log/slog"

	"github.com/notargets/LBHarmonics/element"
)

type options struct {
	areaTolerance float64
	maxCotangent  float64
	strict        bool
	logger        *slog.Logger
}

// Option configures Assemble and ApplyBoundary
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		areaTolerance: element.DefaultAreaTolerance,
		maxCotangent:  element.DefaultMaxCotangent,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAreaTolerance sets the relative area below which a face is skipped.
// A tol that is not positive keeps element.DefaultAreaTolerance.
func WithAreaTolerance(tol float64) Option {
	return func(o *options) {
		if tol > 0 {
			o.areaTolerance = tol
		}
	}
}

// WithMaxCotangent sets the cotangent clamp. A c that is not positive keeps
// element.DefaultMaxCotangent.
func WithMaxCotangent(c float64) Option {
	return func(o *options) {
		if c > 0 {
			o.maxCotangent = c
		}
	}
}

// WithStrict makes a Fixed condition on a mesh without boundary an error
// instead of a warning
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithLogger routes warnings about degenerate input to l
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
