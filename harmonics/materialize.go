package harmonics

import (
	"fmt"
	"math"

	"github.com/notargets/LBHarmonics/mesh"
)

// ScalarName labels the per vertex data of a harmonic
const ScalarName = "harmonic"

// Output returns the first harmonic
func (f *Filter) Output() (*mesh.ScalarMesh, error) { return f.Harmonic(0) }

// Harmonic returns harmonic i scaled by the configured scale
func (f *Filter) Harmonic(i int) (*mesh.ScalarMesh, error) {
	return f.Materialize(i, f.cfg.Scale)
}

// Materialize returns a new mesh with the geometry of the surface and
// scale times eigenvector i as scalar data. The cached spectrum is not
// modified and the returned mesh shares no storage with it.
func (f *Filter) Materialize(i int, scale float64) (*mesh.ScalarMesh, error) {
	if f.spectrum == nil || i < 0 || i >= len(f.spectrum.Pairs) {
		f.countMaterialization("unavailable")
		return nil, &UnavailableError{Index: i, Available: f.NumHarmonics()}
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		f.countMaterialization("invalid_scale")
		return nil, &ConfigError{Field: "scale", Reason: fmt.Sprintf("%v: must be finite", scale)}
	}

	pair := f.spectrum.Pairs[i]
	sm := mesh.CopyGeometry(f.acc)
	sm.Name = fmt.Sprintf("harmonic %d, eigenvalue %.9g", i, pair.Value)
	sm.ScalarName = ScalarName
	sm.Precision = f.cfg.Precision
	sm.Index = i
	sm.Eigenvalue = pair.Value
	for v, x := range pair.Vector {
		sm.Scalars[v] = sm.Precision.Round(scale * x)
	}
	f.countMaterialization("ok")
	return sm, nil
}

func (f *Filter) countMaterialization(result string) {
	if f.metrics != nil {
		f.metrics.Materializations.WithLabelValues(result).Inc()
	}
}
