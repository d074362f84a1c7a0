package spectral

import (
	"github.com/notargets/LBHarmonics/operator"
	"github.com/notargets/LBHarmonics/partitions"
	"gonum.org/v1/gonum/floats"
)

// applier computes products with the transformed operator, over row
// partitions when a layout is set
type applier struct {
	a      *operator.Sparse
	layout *partitions.PartitionLayout
	n      int
}

func (ap *applier) apply(dst, x []float64) {
	if ap.layout != nil {
		ap.a.MulVecPartitioned(dst, x, ap.layout)
		return
	}
	ap.a.MulVec(dst, x)
}

// cgSolver solves (A + σI) x = b with the Jacobi preconditioned conjugate
// gradient method
type cgSolver struct {
	op      *applier
	shift   float64
	precond []float64 // 1 / (diag(A) + σ)
	tol     float64
	maxIter int

	r, z, p, ap []float64
}

func newCGSolver(op *applier, diag []float64, shift, tol float64, maxIter int) *cgSolver {
	s := &cgSolver{
		op:      op,
		shift:   shift,
		precond: make([]float64, op.n),
		tol:     tol,
		maxIter: maxIter,
		r:       make([]float64, op.n),
		z:       make([]float64, op.n),
		p:       make([]float64, op.n),
		ap:      make([]float64, op.n),
	}
	for i, d := range diag {
		if d+shift > 0 {
			s.precond[i] = 1 / (d + shift)
		} else {
			s.precond[i] = 1
		}
	}
	return s
}

// solve overwrites x with the solution and reports the iterations used and
// whether the relative residual reached the tolerance
func (s *cgSolver) solve(x, b []float64) (iters int, ok bool) {
	for i := range x {
		x[i] = 0
	}
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		return 0, true
	}
	copy(s.r, b)
	floats.MulTo(s.z, s.precond, s.r)
	copy(s.p, s.z)
	rz := floats.Dot(s.r, s.z)

	for iters = 1; iters <= s.maxIter; iters++ {
		s.op.apply(s.ap, s.p)
		floats.AddScaled(s.ap, s.shift, s.p)
		pAp := floats.Dot(s.p, s.ap)
		if !(pAp > 0) {
			return iters, false
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, s.p)
		floats.AddScaled(s.r, -alpha, s.ap)
		if floats.Norm(s.r, 2) <= s.tol*bnorm {
			return iters, true
		}
		floats.MulTo(s.z, s.precond, s.r)
		rzNew := floats.Dot(s.r, s.z)
		beta := rzNew / rz
		rz = rzNew
		floats.Scale(beta, s.p)
		floats.Add(s.p, s.z)
	}
	return s.maxIter, false
}
