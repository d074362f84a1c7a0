package spectral

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/notargets/LBHarmonics/operator"
	"gonum.org/v1/gonum/floats"
)

// Eigenpair is one solution of K v = λ M v with K = -L. Vector has one
// entry per mesh vertex, zero on pinned vertices, and unit mass norm.
type Eigenpair struct {
	Value    float64
	Vector   []float64
	Residual float64 // ‖Ay - λy‖ of the symmetric transformed problem
}

// Stats describes the work done by a solve
type Stats struct {
	Method       Method
	Dim          int // free vertices
	Trivial      int // null vectors deflated
	BasisSize    int
	RitzChecks   int
	Restarts     int
	CGIterations int
	CGFailures   int
	Shift        float64
	Norm         float64 // infinity norm of the transformed operator
	Partitions   int     // row partitions used for products, 0 when serial
}

// Spectrum holds the requested eigenpairs in ascending order and the
// trivial constant modes that were excluded from them
type Spectrum struct {
	Pairs   []Eigenpair
	Trivial []Eigenpair
	Stats   Stats
}

// Values returns the eigenvalues of Pairs
func (s *Spectrum) Values() []float64 {
	v := make([]float64, len(s.Pairs))
	for i, p := range s.Pairs {
		v[i] = p.Value
	}
	return v
}

// Solve computes the k smallest non-trivial eigenpairs of the system. The
// generalized problem is reduced to A = M^-1/2 K M^-1/2, the constant mode
// of every unpinned component is deflated, and the eigenvectors are mapped
// back with M^-1/2 so that they are mass-orthonormal.
func Solve(ctx context.Context, sys *operator.System, k int, opts Options) (*Spectrum, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, k)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n, nNull := sys.Dim(), len(sys.Trivial)
	if k > n-nNull {
		return nil, fmt.Errorf("spectral: %d eigenpairs requested from %d free vertices with %d trivial modes: %w",
			k, n, nNull, ErrTooFewFree)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("spectral: %w", err)
	}
	o := opts.withDefaults(n, k)

	sqrtM := make([]float64, n)
	invSqrtM := make([]float64, n)
	for i, m := range sys.Mass {
		sqrtM[i] = math.Sqrt(m)
		invSqrtM[i] = 1 / sqrtM[i]
	}
	A := sys.Stiffness.Scale(-1, invSqrtM)
	op := &applier{a: A, n: n}
	st := Stats{Dim: n, Trivial: nNull, Norm: A.NormInf()}

	if n >= o.ParallelThreshold && o.Workers > 1 {
		layout, err := A.Layout(o.Workers)
		if err != nil {
			return nil, fmt.Errorf("spectral: partition rows: %w", err)
		}
		op.layout = layout
		st.Partitions = layout.NumPartitions
	}

	null := nullVectors(sys.Trivial, sqrtM)
	diag := A.Diagonal()

	method := o.Method
	if method == MethodAuto {
		method = MethodLanczos
		if n <= o.DenseLimit {
			method = MethodDense
		}
	}
	st.Method = method

	var (
		res *ritzResult
		err error
	)
	switch method {
	case MethodDense:
		res, err = dense(op, A, null, k, st.Norm, &st)
	default:
		if o.Shift == 0 {
			o.Shift = DefaultShiftFactor * floats.Sum(diag) / float64(n)
		}
		res, err = lanczos(ctx, op, diag, null, k, o, st.Norm, &st)
	}
	if err != nil {
		return nil, err
	}

	spectrum := &Spectrum{Stats: st}
	for j := range res.values {
		spectrum.Pairs = append(spectrum.Pairs, Eigenpair{
			Value:    res.values[j],
			Vector:   toVertexSpace(sys, invSqrtM, res.vectors[j]),
			Residual: res.residuals[j],
		})
	}
	sort.SliceStable(spectrum.Pairs, func(i, j int) bool {
		return spectrum.Pairs[i].Value < spectrum.Pairs[j].Value
	})

	az := make([]float64, n)
	for _, z := range null {
		op.apply(az, z)
		lambda := floats.Dot(z, az)
		floats.AddScaled(az, -lambda, z)
		spectrum.Trivial = append(spectrum.Trivial, Eigenpair{
			Value:    lambda,
			Vector:   toVertexSpace(sys, invSqrtM, z),
			Residual: floats.Norm(az, 2),
		})
	}
	return spectrum, nil
}

// nullVectors returns the normalized M^1/2 1_c of each trivial component
func nullVectors(groups [][]int, sqrtM []float64) [][]float64 {
	null := make([][]float64, 0, len(groups))
	for _, g := range groups {
		z := make([]float64, len(sqrtM))
		for _, i := range g {
			z[i] = sqrtM[i]
		}
		floats.Scale(1/floats.Norm(z, 2), z)
		null = append(null, z)
	}
	return null
}

// toVertexSpace maps y back to v = M^-1/2 y over all vertices with a fixed
// sign
func toVertexSpace(sys *operator.System, invSqrtM, y []float64) []float64 {
	v := make([]float64, len(y))
	floats.MulTo(v, invSqrtM, y)
	full := sys.Expand(v)
	fixSign(full)
	return full
}

// fixSign makes the first component within a relative 1e-9 of the largest
// magnitude positive
func fixSign(v []float64) {
	var max float64
	for _, x := range v {
		max = math.Max(max, math.Abs(x))
	}
	if max == 0 {
		return
	}
	for _, x := range v {
		if math.Abs(x) >= max*(1-1e-9) {
			if x < 0 {
				floats.Scale(-1, v)
			}
			return
		}
	}
}
