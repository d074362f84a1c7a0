package operator

import (
	"github.com/james-bowman/sparse"
	"github.com/notargets/LBHarmonics/element"
	"github.com/notargets/LBHarmonics/mesh"
	"gonum.org/v1/gonum/mat"
)

// MaxReportedFaces bounds the degenerate face indices kept in a Report
const MaxReportedFaces = 16

// Report summarizes the geometry seen during assembly
type Report struct {
	NumVertices int
	NumFaces    int

	DegenerateFaces   int   // faces skipped for negligible area
	DegenerateIndices []int // the first MaxReportedFaces of them
	ClampedFaces      int   // faces with at least one clamped cotangent

	// Connected components over the non-degenerate faces
	NumComponents   int
	ComponentLabels []int
}

// Pair is the assembled stiffness and lumped mass operators of a surface.
// Stiffness is the cotangent Laplacian L, symmetric and negative
// semidefinite with zero row sums; Mass is diagonal and strictly positive.
type Pair struct {
	Stiffness *Sparse
	Mass      *mat.DiagDense
	Report    Report
}

// Assemble builds the cotangent stiffness and lumped mass operators of the
// surface described by acc
func Assemble(acc mesh.Accessor, opts ...Option) (*Pair, error) {
	o := newOptions(opts)
	if _, err := mesh.Validate(acc); err != nil {
		return nil, &AssemblyError{Op: "validate", Err: err}
	}

	nv, nf := acc.NumVertices(), acc.NumFaces()
	report := Report{NumVertices: nv, NumFaces: nf}
	dok := sparse.NewDOK(nv, nv)
	mass := make([]float64, nv)
	kept := make([]bool, nf)

	for f := 0; f < nf; f++ {
		nodes := acc.Face(f)
		tri := element.NewTriangle(
			acc.Position(nodes[0]), acc.Position(nodes[1]), acc.Position(nodes[2]),
			o.maxCotangent)
		if tri.IsDegenerate(o.areaTolerance) {
			report.DegenerateFaces++
			if len(report.DegenerateIndices) < MaxReportedFaces {
				report.DegenerateIndices = append(report.DegenerateIndices, f)
			}
			continue
		}
		if tri.Clamped {
			report.ClampedFaces++
		}
		kept[f] = true

		lo := element.NewLocalOperators(nodes, tri)
		for a, gi := range lo.Nodes {
			mass[gi] += lo.Mass[a]
			for b, gj := range lo.Nodes {
				dok.Set(gi, gj, dok.At(gi, gj)+lo.Stiffness.At(a, b))
			}
		}
	}

	if report.DegenerateFaces > 0 {
		o.logger.Warn("skipped degenerate faces",
			"count", report.DegenerateFaces,
			"faces", report.DegenerateIndices,
			"area_tolerance", o.areaTolerance)
	}
	if report.ClampedFaces > 0 {
		o.logger.Warn("clamped cotangent weights",
			"faces", report.ClampedFaces,
			"max_cotangent", o.maxCotangent)
	}

	for i, m := range mass {
		if !(m > 0) {
			return nil, &AssemblyError{Op: "mass",
				Err: &mesh.VertexError{Vertex: i, Err: ErrIsolatedVertex}}
		}
	}

	report.ComponentLabels, report.NumComponents = mesh.Components(acc,
		func(f int) bool { return kept[f] })

	return &Pair{
		Stiffness: NewSparse(dok),
		Mass:      mat.NewDiagDense(nv, mass),
		Report:    report,
	}, nil
}

// MassDiagonal returns a copy of the lumped mass entries
func (p *Pair) MassDiagonal() []float64 {
	n := p.Mass.SymmetricDim()
	d := make([]float64, n)
	for i := range d {
		d[i] = p.Mass.At(i, i)
	}
	return d
}
