// Command laplacebeltrami computes Laplace-Beltrami harmonics of a surface
// mesh and writes each one as a VTK file with the harmonic as point data.
//
//	laplacebeltrami [flags] <mesh_file> <first_harmonic_out>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/notargets/LBHarmonics/harmonics"
	"github.com/notargets/LBHarmonics/mesh/readers"
	"github.com/notargets/LBHarmonics/mesh/writers"
	"github.com/notargets/LBHarmonics/operator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

type options struct {
	eigenvalueCount int
	scaleFactor     float64
	boundary        int
	configPath      string
	prefix          string
	npyDir          string
	verbose         bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newFlagSet(o *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("laplacebeltrami", flag.ContinueOnError)
	fs.SetOutput(stderr)
	for _, name := range []string{"e", "eigenvalueCount"} {
		fs.IntVar(&o.eigenvalueCount, name, 1, "number of harmonics to compute")
	}
	for _, name := range []string{"s", "scaleFactor"} {
		fs.Float64Var(&o.scaleFactor, name, 1, "amplitude applied to the written harmonics")
	}
	for _, name := range []string{"b", "boundaryCondition"} {
		fs.IntVar(&o.boundary, name, int(operator.Fixed), "1 = von Neumann (natural), 2 = Dirichlet (fixed)")
	}
	fs.StringVar(&o.configPath, "config", "", "YAML configuration, flags given explicitly override it")
	fs.StringVar(&o.prefix, "prefix", "SurfaceHarmonic", "file name prefix of the per harmonic outputs")
	fs.StringVar(&o.npyDir, "npy", "", "directory for eigVal.npy and eigVec.npy")
	fs.BoolVar(&o.verbose, "v", false, "debug logging and a metrics dump on exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: laplacebeltrami [flags] <mesh_file> <first_harmonic_out>\n")
		fs.PrintDefaults()
	}
	return fs
}

// configure merges the configuration file with the flags set on the
// command line
func configure(fs *flag.FlagSet, o options) (harmonics.Config, error) {
	cfg := harmonics.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = harmonics.LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if o.configPath == "" || set["e"] || set["eigenvalueCount"] {
		cfg.EigenvalueCount = o.eigenvalueCount
	}
	if o.configPath == "" || set["s"] || set["scaleFactor"] {
		cfg.Scale = o.scaleFactor
	}
	if o.configPath == "" || set["b"] || set["boundaryCondition"] {
		cfg.Boundary = operator.Condition(o.boundary)
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var o options
	fs := newFlagSet(&o, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 1
	}
	meshPath, outPath := fs.Arg(0), fs.Arg(1)

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := configure(fs, o)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	surface, err := readers.ReadMeshFile(meshPath)
	if err != nil {
		logger.Error("reading mesh", "path", meshPath, "error", err)
		return 1
	}
	fmt.Fprintf(stdout, "Vertex Count: %d\n", surface.NumVertices())
	fmt.Fprintf(stdout, "Cell Count: %d\n", surface.NumFaces())

	reg := prometheus.NewRegistry()
	filter := harmonics.New(surface,
		harmonics.WithLogger(logger),
		harmonics.WithMetrics(harmonics.NewMetrics(reg)),
	)
	if o.verbose {
		defer dumpMetrics(reg, stderr, logger)
	}

	if err := filter.Update(ctx, cfg); err != nil {
		logger.Error("computing harmonics", "error", err)
		return 1
	}
	if r, ok := filter.Report(); ok && r.DegenerateFaces > 0 {
		fmt.Fprintf(stdout, "Degenerate Cells: %d\n", r.DegenerateFaces)
	}

	first, err := filter.Output()
	if err != nil {
		logger.Error("first harmonic", "error", err)
		return 1
	}
	if err := writers.WriteVTKFile(outPath, first); err != nil {
		logger.Error("writing output", "path", outPath, "error", err)
		return 1
	}

	code := 0
	for i := 0; i < cfg.EigenvalueCount; i++ {
		sm, err := filter.Harmonic(i)
		if err != nil {
			fmt.Fprintf(stdout, "Couldn't get harmonic #%d\n", i)
			logger.Debug("harmonic unavailable", "index", i, "error", err)
			continue
		}
		lo, hi := sm.ScalarRange()
		logger.Debug("harmonic", "index", i, "eigenvalue", sm.Eigenvalue, "min", lo, "max", hi)
		name := fmt.Sprintf("%s_%d.vtk", o.prefix, i)
		if err := writers.WriteVTKFile(name, sm); err != nil {
			logger.Error("writing harmonic", "path", name, "error", err)
			code = 1
		}
	}

	if o.npyDir != "" {
		if err := writeNPY(o.npyDir, filter); err != nil {
			logger.Error("writing npy", "dir", o.npyDir, "error", err)
			code = 1
		}
	}
	return code
}

// writeNPY stores the eigenvalues as a [k, 1] array and the vertex space
// eigenvectors as a [k, n] array
func writeNPY(dir string, filter *harmonics.Filter) error {
	spectrum := filter.Spectrum()
	k := len(spectrum.Pairs)
	if k == 0 {
		return nil
	}
	n := len(spectrum.Pairs[0].Vector)
	vals := spectrum.Values()
	vecs := make([]float64, 0, k*n)
	for _, p := range spectrum.Pairs {
		vecs = append(vecs, p.Vector...)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writers.WriteNPY(filepath.Join(dir, "eigVal.npy"), k, 1, vals); err != nil {
		return err
	}
	return writers.WriteNPY(filepath.Join(dir, "eigVec.npy"), k, n, vecs)
}

func dumpMetrics(reg *prometheus.Registry, w io.Writer, logger *slog.Logger) {
	mfs, err := reg.Gather()
	if err != nil {
		logger.Warn("gathering metrics", "error", err)
		return
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			logger.Warn("writing metrics", "error", err)
			return
		}
	}
}
