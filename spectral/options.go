package spectral

import (
	"fmt"
	"math"
	"runtime"
	"strings"
)

// Method selects the eigensolver
type Method uint8

const (
	MethodAuto    Method = iota // dense for small systems, Lanczos otherwise
	MethodDense                 // full symmetric eigendecomposition
	MethodLanczos               // block shift-invert Lanczos
)

func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodDense:
		return "dense"
	case MethodLanczos:
		return "lanczos"
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

func (m Method) MarshalText() ([]byte, error) {
	if m > MethodLanczos {
		return nil, fmt.Errorf("unknown solver method %d", uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "auto", "":
		*m = MethodAuto
	case "dense":
		*m = MethodDense
	case "lanczos", "krylov":
		*m = MethodLanczos
	default:
		return fmt.Errorf("unknown solver method %q", string(text))
	}
	return nil
}

// Default solver settings
const (
	DefaultTolerance         = 1e-10
	DefaultMaxIterations     = 300
	DefaultCheckEvery        = 1
	DefaultSeed              = 1
	DefaultDenseLimit        = 200
	DefaultParallelThreshold = 50000
	DefaultCGTolerance       = 1e-12
	DefaultShiftFactor       = 1e-6
)

// Options tunes Solve. Zero fields take their defaults.
type Options struct {
	Method Method `yaml:"method"`

	// Tolerance is the residual bound relative to the infinity norm of
	// the transformed operator
	Tolerance float64 `yaml:"tolerance"`
	// MaxIterations is the Krylov basis budget
	MaxIterations int `yaml:"max_iterations"`
	// CheckEvery is the number of block steps between Rayleigh-Ritz checks
	CheckEvery int `yaml:"check_every"`
	// BlockSize defaults to the requested count so that repeated
	// eigenvalues are resolved
	BlockSize int `yaml:"block_size"`
	// Shift is σ of (A+σI)^-1, default 1e-6 times the mean diagonal of A
	Shift float64 `yaml:"shift"`
	Seed  int64   `yaml:"seed"`

	DenseLimit        int `yaml:"dense_limit"`
	ParallelThreshold int `yaml:"parallel_threshold"`
	Workers           int `yaml:"workers"`

	CGTolerance     float64 `yaml:"cg_tolerance"`
	CGMaxIterations int     `yaml:"cg_max_iterations"`
}

// DefaultOptions returns the settings used for zero fields
func DefaultOptions() Options {
	return Options{
		Method:            MethodAuto,
		Tolerance:         DefaultTolerance,
		MaxIterations:     DefaultMaxIterations,
		CheckEvery:        DefaultCheckEvery,
		Seed:              DefaultSeed,
		DenseLimit:        DefaultDenseLimit,
		ParallelThreshold: DefaultParallelThreshold,
		CGTolerance:       DefaultCGTolerance,
	}
}

// Validate rejects negative or non finite settings
func (o Options) Validate() error {
	if o.Method > MethodLanczos {
		return fmt.Errorf("solver method %d: unknown", uint8(o.Method))
	}
	for name, v := range map[string]float64{
		"tolerance":    o.Tolerance,
		"shift":        o.Shift,
		"cg_tolerance": o.CGTolerance,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("solver %s %v: must be finite and non negative", name, v)
		}
	}
	for name, v := range map[string]int{
		"max_iterations":     o.MaxIterations,
		"check_every":        o.CheckEvery,
		"block_size":         o.BlockSize,
		"dense_limit":        o.DenseLimit,
		"parallel_threshold": o.ParallelThreshold,
		"workers":            o.Workers,
		"cg_max_iterations":  o.CGMaxIterations,
	} {
		if v < 0 {
			return fmt.Errorf("solver %s %d: must be non negative", name, v)
		}
	}
	return nil
}

// withDefaults fills zero fields for a problem of dimension n with k
// wanted pairs
func (o Options) withDefaults(n, k int) Options {
	d := DefaultOptions()
	if o.Tolerance == 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.CheckEvery == 0 {
		o.CheckEvery = d.CheckEvery
	}
	if o.BlockSize == 0 {
		o.BlockSize = k
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.DenseLimit == 0 {
		o.DenseLimit = d.DenseLimit
	}
	if o.ParallelThreshold == 0 {
		o.ParallelThreshold = d.ParallelThreshold
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.CGTolerance == 0 {
		o.CGTolerance = d.CGTolerance
	}
	if o.CGMaxIterations == 0 {
		o.CGMaxIterations = 10 * n
		if o.CGMaxIterations < 1000 {
			o.CGMaxIterations = 1000
		}
	}
	return o
}
