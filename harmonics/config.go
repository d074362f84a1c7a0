package harmonics

import (
	"fmt"
	"math"
	"os"

	"github.com/notargets/LBHarmonics/element"
	"github.com/notargets/LBHarmonics/mesh"
	"github.com/notargets/LBHarmonics/operator"
	"github.com/notargets/LBHarmonics/spectral"
	"gopkg.in/yaml.v3"
)

// Config is the complete set of parameters for one Update. It is passed by
// value and never modified by the filter.
type Config struct {
	EigenvalueCount int                `yaml:"eigenvalue_count"`
	Boundary        operator.Condition `yaml:"boundary"`
	// Scale multiplies the eigenvector when it is written as scalar data
	Scale     float64        `yaml:"scale"`
	Precision mesh.Precision `yaml:"precision"`

	// StrictBoundary turns a Fixed condition on a closed mesh into an
	// error instead of a fallback to Natural
	StrictBoundary bool `yaml:"strict_boundary"`
	// Geometry guards, both must be positive. DefaultConfig carries the
	// element package defaults.
	AreaTolerance float64 `yaml:"area_tolerance"`
	MaxCotangent  float64 `yaml:"max_cotangent"`

	Solver spectral.Options `yaml:"solver"`
}

// DefaultConfig returns one harmonic with a fixed boundary and unit scale
func DefaultConfig() Config {
	return Config{
		EigenvalueCount: 1,
		Boundary:        operator.Fixed,
		Scale:           1.0,
		Precision:       mesh.Float64,
		AreaTolerance:   element.DefaultAreaTolerance,
		MaxCotangent:    element.DefaultMaxCotangent,
		Solver:          spectral.DefaultOptions(),
	}
}

// Validate reports the first invalid field as a *ConfigError
func (c Config) Validate() error {
	switch {
	case c.EigenvalueCount < 1:
		return &ConfigError{Field: "eigenvalue_count",
			Reason: fmt.Sprintf("%d: must be at least 1", c.EigenvalueCount)}
	case !c.Boundary.Valid():
		return &ConfigError{Field: "boundary",
			Reason: fmt.Sprintf("%d: must be natural or fixed", uint8(c.Boundary))}
	case math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0):
		return &ConfigError{Field: "scale", Reason: fmt.Sprintf("%v: must be finite", c.Scale)}
	case c.Precision > mesh.Float32:
		return &ConfigError{Field: "precision", Reason: fmt.Sprintf("%d: unknown", uint8(c.Precision))}
	case !(c.AreaTolerance > 0) || math.IsInf(c.AreaTolerance, 0):
		return &ConfigError{Field: "area_tolerance",
			Reason: fmt.Sprintf("%v: must be finite and positive", c.AreaTolerance)}
	case !(c.MaxCotangent > 0) || math.IsInf(c.MaxCotangent, 0):
		return &ConfigError{Field: "max_cotangent",
			Reason: fmt.Sprintf("%v: must be finite and positive", c.MaxCotangent)}
	}
	if err := c.Solver.Validate(); err != nil {
		return &ConfigError{Field: "solver", Err: err}
	}
	return nil
}

// LoadConfig reads a YAML configuration over DefaultConfig and validates it
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// String renders the configuration as YAML
func (c Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(b)
}
