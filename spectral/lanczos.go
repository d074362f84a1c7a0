package spectral

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// breakdownTol is the relative norm below which a new direction is taken
// to lie in the current basis
const breakdownTol = 1e-9

// ritzResult holds the k lowest Ritz pairs of the transformed operator
type ritzResult struct {
	values    []float64
	vectors   [][]float64
	residuals []float64
	converged int
	worst     float64
}

// krylov builds an orthonormal basis of the block Krylov space of the
// shift-inverted operator, orthogonal to the null vectors, together with
// the projection H = Qᵀ A Q used for Rayleigh-Ritz.
type krylov struct {
	op   *applier
	null [][]float64
	rng  *rand.Rand

	Q, AQ [][]float64
	H     [][]float64
}

// orthonormalize removes the components of v along the null vectors and
// the basis, twice, and normalizes it. It returns false on breakdown.
func (kr *krylov) orthonormalize(v []float64) bool {
	n0 := floats.Norm(v, 2)
	if !(n0 > 0) || math.IsInf(n0, 0) {
		return false
	}
	for pass := 0; pass < 2; pass++ {
		for _, z := range kr.null {
			floats.AddScaled(v, -floats.Dot(z, v), z)
		}
		for _, q := range kr.Q {
			floats.AddScaled(v, -floats.Dot(q, v), q)
		}
	}
	n1 := floats.Norm(v, 2)
	if n1 <= breakdownTol*n0 {
		return false
	}
	floats.Scale(1/n1, v)
	return true
}

// add appends v to the basis and extends H
func (kr *krylov) add(v []float64) bool {
	if !kr.orthonormalize(v) {
		return false
	}
	av := make([]float64, kr.op.n)
	kr.op.apply(av, v)
	m := len(kr.Q)
	row := make([]float64, m+1)
	for i, q := range kr.Q {
		h := floats.Dot(q, av)
		row[i] = h
		kr.H[i] = append(kr.H[i], h)
	}
	row[m] = floats.Dot(v, av)
	kr.H = append(kr.H, row)
	kr.Q = append(kr.Q, v)
	kr.AQ = append(kr.AQ, av)
	return true
}

// addRandom appends a fresh seeded random direction
func (kr *krylov) addRandom() bool {
	for try := 0; try < 3; try++ {
		v := make([]float64, kr.op.n)
		for i := range v {
			v[i] = kr.rng.NormFloat64()
		}
		if kr.add(v) {
			return true
		}
	}
	return false
}

// ritz extracts the k lowest Ritz pairs from the current basis
func (kr *krylov) ritz(k int, tol float64) (*ritzResult, error) {
	m := len(kr.Q)
	S := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			S.SetSym(i, j, kr.H[i][j])
		}
	}
	var es mat.EigenSym
	if !es.Factorize(S, true) {
		return nil, fmt.Errorf("%w: Rayleigh-Ritz eigendecomposition of order %d failed", ErrNotConverged, m)
	}
	var ev mat.Dense
	es.VectorsTo(&ev)

	res := &ritzResult{}
	n := kr.op.n
	for j := 0; j < k; j++ {
		y := make([]float64, n)
		ay := make([]float64, n)
		for i := 0; i < m; i++ {
			s := ev.At(i, j)
			floats.AddScaled(y, s, kr.Q[i])
			floats.AddScaled(ay, s, kr.AQ[i])
		}
		ny := floats.Norm(y, 2)
		floats.Scale(1/ny, y)
		floats.Scale(1/ny, ay)
		lambda := floats.Dot(y, ay)
		floats.AddScaled(ay, -lambda, y)
		r := floats.Norm(ay, 2)

		res.values = append(res.values, lambda)
		res.vectors = append(res.vectors, y)
		res.residuals = append(res.residuals, r)
		if r <= tol {
			res.converged++
		}
		res.worst = math.Max(res.worst, r)
	}
	return res, nil
}

// lanczos finds the k lowest eigenpairs of the transformed operator on the
// complement of the null vectors
func lanczos(ctx context.Context, op *applier, diag []float64, null [][]float64,
	k int, o Options, normA float64, st *Stats) (*ritzResult, error) {

	limit := op.n - len(null)
	maxBasis := o.MaxIterations
	if maxBasis > limit {
		maxBasis = limit
	}
	block := o.BlockSize
	if block > maxBasis {
		block = maxBasis
	}
	tol := o.Tolerance * normA
	st.Shift = o.Shift

	kr := &krylov{op: op, null: null, rng: rand.New(rand.NewSource(o.Seed))}
	cg := newCGSolver(op, diag, o.Shift, o.CGTolerance, o.CGMaxIterations)

	for j := 0; j < block; j++ {
		if !kr.addRandom() {
			break
		}
	}
	notConverged := func(r *ritzResult) error {
		e := &NotConvergedError{Wanted: k, BasisSize: len(kr.Q), Tolerance: tol, Residual: math.Inf(1)}
		if r != nil {
			e.Converged, e.Residual = r.converged, r.worst
		}
		return e
	}

	frontStart, frontEnd := 0, len(kr.Q)
	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("spectral: %w", err)
		}
		m := len(kr.Q)
		full := m >= maxBasis
		if m >= k && (step%o.CheckEvery == 0 || full) {
			r, err := kr.ritz(k, tol)
			if err != nil {
				return nil, err
			}
			st.RitzChecks++
			st.BasisSize = m
			if r.converged == k || m == limit {
				return r, nil
			}
			if full {
				return nil, notConverged(r)
			}
		} else if full {
			return nil, notConverged(nil)
		}

		start := len(kr.Q)
		w := make([]float64, op.n)
		for f := frontStart; f < frontEnd && len(kr.Q) < maxBasis; f++ {
			iters, ok := cg.solve(w, kr.Q[f])
			st.CGIterations += iters
			if !ok {
				st.CGFailures++
			}
			if kr.add(w) {
				w = make([]float64, op.n)
				continue
			}
			st.Restarts++
			if !kr.addRandom() {
				break
			}
		}
		if len(kr.Q) == start {
			// No direction left outside the basis
			if len(kr.Q) < k {
				return nil, notConverged(nil)
			}
			r, err := kr.ritz(k, tol)
			if err != nil {
				return nil, err
			}
			st.RitzChecks++
			st.BasisSize = len(kr.Q)
			if r.converged == k {
				return r, nil
			}
			return nil, notConverged(r)
		}
		frontStart, frontEnd = start, len(kr.Q)
	}
}
