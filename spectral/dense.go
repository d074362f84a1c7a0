package spectral

import (
	"fmt"
	"math"

	"github.com/notargets/LBHarmonics/operator"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// dense computes the k lowest eigenpairs of the transformed operator from
// a full symmetric eigendecomposition. The null vectors are shifted above
// the spectrum by adding c z zᵀ with c larger than the operator norm.
func dense(op *applier, a *operator.Sparse, null [][]float64, k int, normA float64, st *Stats) (*ritzResult, error) {
	n := op.n
	S := a.Dense()
	c := 2*normA + 1
	for _, z := range null {
		for i := 0; i < n; i++ {
			if z[i] == 0 {
				continue
			}
			for j := i; j < n; j++ {
				if z[j] != 0 {
					S.SetSym(i, j, S.At(i, j)+c*z[i]*z[j])
				}
			}
		}
	}

	var es mat.EigenSym
	if !es.Factorize(S, true) {
		return nil, fmt.Errorf("%w: dense eigendecomposition of order %d failed", ErrNotConverged, n)
	}
	var ev mat.Dense
	es.VectorsTo(&ev)
	st.BasisSize = n

	res := &ritzResult{}
	for j := 0; j < k; j++ {
		y := mat.Col(nil, j, &ev)
		ay := make([]float64, n)
		op.apply(ay, y)
		lambda := floats.Dot(y, ay)
		floats.AddScaled(ay, -lambda, y)
		r := floats.Norm(ay, 2)

		res.values = append(res.values, lambda)
		res.vectors = append(res.vectors, y)
		res.residuals = append(res.residuals, r)
		res.converged++
		res.worst = math.Max(res.worst, r)
	}
	return res, nil
}
