package harmonics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/notargets/LBHarmonics/mesh"
	"github.com/notargets/LBHarmonics/operator"
	"github.com/notargets/LBHarmonics/spectral"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/notargets/LBHarmonics/harmonics"

// Filter computes the Laplace-Beltrami harmonics of a surface and serves
// them as scalar meshes. A Filter has a single owner and is not safe for
// concurrent use.
type Filter struct {
	acc     mesh.Accessor
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	// Result of the last successful Update, all nil after a failure
	cfg      Config
	pair     *operator.Pair
	sys      *operator.System
	spectrum *spectral.Spectrum
	runID    string
}

// Option configures a Filter
type Option func(*Filter)

// WithLogger sets the structured logger, the default discards
func WithLogger(l *slog.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMetrics records updates and materializations in m
func WithMetrics(m *Metrics) Option {
	return func(f *Filter) { f.metrics = m }
}

// WithTracer sets the tracer, the default is the global otel provider
func WithTracer(t trace.Tracer) Option {
	return func(f *Filter) {
		if t != nil {
			f.tracer = t
		}
	}
}

// New returns a Filter over the surface acc. Nothing is computed until
// Update.
func New(acc mesh.Accessor, opts ...Option) *Filter {
	f := &Filter{
		acc:    acc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Filter) reset() {
	f.cfg = Config{}
	f.pair, f.sys, f.spectrum = nil, nil, nil
	f.runID = ""
}

// Update runs assembly, boundary application and the eigensolve for cfg
// and caches the spectrum. The previous result is discarded first, so a
// failed Update leaves no harmonics available.
func (f *Filter) Update(ctx context.Context, cfg Config) (err error) {
	f.reset()
	start := time.Now()
	runID := uuid.NewString()

	ctx, span := f.tracer.Start(ctx, "harmonics.Filter.Update",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("eigenvalue_count", cfg.EigenvalueCount),
			attribute.String("boundary", cfg.Boundary.String()),
		))
	defer span.End()
	logger := f.logger.With(slog.String("run_id", runID))

	defer func() {
		result := resultLabel(err)
		if f.metrics != nil {
			f.metrics.Updates.WithLabelValues(result).Inc()
			f.metrics.UpdateDuration.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			f.reset()
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
			logger.Error("update_failed",
				slog.String("result", result),
				slog.String("error", err.Error()),
				slog.Duration("duration", time.Since(start)))
			return
		}
		span.SetStatus(codes.Ok, "")
	}()

	if f.acc == nil {
		return fmt.Errorf("harmonics: no surface: %w", mesh.ErrEmptyMesh)
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	span.SetAttributes(
		attribute.Int("vertices", f.acc.NumVertices()),
		attribute.Int("faces", f.acc.NumFaces()))
	logger.Info("update_start",
		slog.Int("vertices", f.acc.NumVertices()),
		slog.Int("faces", f.acc.NumFaces()),
		slog.Int("eigenvalue_count", cfg.EigenvalueCount),
		slog.String("boundary", cfg.Boundary.String()))

	opts := []operator.Option{
		operator.WithAreaTolerance(cfg.AreaTolerance),
		operator.WithMaxCotangent(cfg.MaxCotangent),
		operator.WithStrict(cfg.StrictBoundary),
		operator.WithLogger(logger),
	}

	var pair *operator.Pair
	err = f.stage(ctx, "assemble", func(ctx context.Context, span trace.Span) (err error) {
		pair, err = operator.Assemble(f.acc, opts...)
		if err != nil {
			return err
		}
		span.SetAttributes(
			attribute.Int("nnz", pair.Stiffness.NNZ()),
			attribute.Int("degenerate_faces", pair.Report.DegenerateFaces),
			attribute.Int("components", pair.Report.NumComponents))
		if f.metrics != nil {
			f.metrics.DegenerateFaces.Add(float64(pair.Report.DegenerateFaces))
		}
		return nil
	})
	if err != nil {
		return err
	}

	var sys *operator.System
	err = f.stage(ctx, "apply_boundary", func(ctx context.Context, span trace.Span) (err error) {
		sys, err = operator.ApplyBoundary(pair, cfg.Boundary, f.acc.IsBoundary, opts...)
		if err != nil {
			return err
		}
		span.SetAttributes(
			attribute.String("condition", sys.Condition.String()),
			attribute.Int("free", sys.Dim()),
			attribute.Int("trivial", len(sys.Trivial)))
		if avail := sys.Dim() - len(sys.Trivial); cfg.EigenvalueCount > avail {
			return fmt.Errorf("%d harmonics requested, %d free vertices with %d trivial modes: %w",
				cfg.EigenvalueCount, sys.Dim(), len(sys.Trivial), ErrTooFewFree)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var spectrum *spectral.Spectrum
	err = f.stage(ctx, "solve", func(ctx context.Context, span trace.Span) (err error) {
		spectrum, err = spectral.Solve(ctx, sys, cfg.EigenvalueCount, cfg.Solver)
		if err != nil {
			return err
		}
		st := spectrum.Stats
		span.SetAttributes(
			attribute.String("method", st.Method.String()),
			attribute.Int("basis_size", st.BasisSize),
			attribute.Int("cg_iterations", st.CGIterations),
			attribute.Float64Slice("eigenvalues", spectrum.Values()))
		if f.metrics != nil && st.Method == spectral.MethodLanczos {
			f.metrics.BasisSize.Observe(float64(st.BasisSize))
		}
		if st.CGFailures > 0 {
			logger.Warn("inner_solve_not_converged",
				slog.Int("failures", st.CGFailures),
				slog.Float64("cg_tolerance", cfg.Solver.CGTolerance))
		}
		return nil
	})
	if err != nil {
		return err
	}

	f.cfg, f.pair, f.sys, f.spectrum, f.runID = cfg, pair, sys, spectrum, runID
	logger.Info("update_complete",
		slog.String("method", spectrum.Stats.Method.String()),
		slog.Any("eigenvalues", spectrum.Values()),
		slog.Int("trivial_modes", len(spectrum.Trivial)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// stage runs fn inside a child span
func (f *Filter) stage(ctx context.Context, name string, fn func(context.Context, trace.Span) error) error {
	ctx, span := f.tracer.Start(ctx, "harmonics."+name)
	defer span.End()
	if err := fn(ctx, span); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
		return err
	}
	return nil
}

// resultLabel classifies an Update error for metrics and span status
func resultLabel(err error) string {
	var ae *operator.AssemblyError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrNotConverged):
		return "not_converged"
	case errors.Is(err, ErrNoBoundary), errors.Is(err, ErrTooFewFree):
		return "boundary_error"
	case errors.As(err, &ae):
		return "assembly_error"
	}
	return "error"
}

// Spectrum returns the cached eigenpairs, nil without a successful Update
func (f *Filter) Spectrum() *spectral.Spectrum { return f.spectrum }

// Config returns the configuration of the last successful Update
func (f *Filter) Config() Config { return f.cfg }

// RunID identifies the last successful Update in logs and traces
func (f *Filter) RunID() string { return f.runID }

// Report returns the assembly report of the last successful Update
func (f *Filter) Report() (operator.Report, bool) {
	if f.pair == nil {
		return operator.Report{}, false
	}
	return f.pair.Report, true
}

// Condition returns the boundary condition in effect for the last
// successful Update, which differs from the configured one when a fixed
// boundary was requested on a closed mesh
func (f *Filter) Condition() (operator.Condition, bool) {
	if f.sys == nil {
		return 0, false
	}
	return f.sys.Condition, true
}

// NumHarmonics is the number of harmonics available
func (f *Filter) NumHarmonics() int {
	if f.spectrum == nil {
		return 0
	}
	return len(f.spectrum.Pairs)
}
