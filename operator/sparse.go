package operator

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"github.com/notargets/LBHarmonics/partitions"
	"gonum.org/v1/gonum/mat"
)

// Sparse is a square compressed sparse row matrix. Entries are accumulated
// into a DOK during assembly and compressed once; the row arrays are kept
// with columns sorted so that products are reproducible.
type Sparse struct {
	n      int
	csr    *sparse.CSR
	indptr []int
	ind    []int
	data   []float64
}

var _ mat.Matrix = (*Sparse)(nil)

// NewSparse compresses a dictionary of keys matrix
func NewSparse(dok *sparse.DOK) *Sparse {
	r, c := dok.Dims()
	if r != c {
		panic(fmt.Sprintf("operator: non square %dx%d matrix", r, c))
	}
	csr := dok.ToCSR()
	s := &Sparse{n: r, csr: csr, indptr: make([]int, r+1)}

	type entry struct {
		j int
		v float64
	}
	rows := make([][]entry, r)
	csr.DoNonZero(func(i, j int, v float64) {
		rows[i] = append(rows[i], entry{j, v})
	})
	s.ind = make([]int, 0, csr.NNZ())
	s.data = make([]float64, 0, csr.NNZ())
	for i, row := range rows {
		sort.Slice(row, func(a, b int) bool { return row[a].j < row[b].j })
		for _, e := range row {
			s.ind = append(s.ind, e.j)
			s.data = append(s.data, e.v)
		}
		s.indptr[i+1] = len(s.ind)
	}
	return s
}

func (s *Sparse) Dims() (r, c int) { return s.n, s.n }

func (s *Sparse) At(i, j int) float64 { return s.csr.At(i, j) }

func (s *Sparse) T() mat.Matrix { return mat.Transpose{Matrix: s} }

// NNZ is the number of stored entries
func (s *Sparse) NNZ() int { return len(s.data) }

// RowNNZ returns the stored entry count of every row, the per row cost of
// a product
func (s *Sparse) RowNNZ() []int {
	counts := make([]int, s.n)
	for i := range counts {
		counts[i] = s.indptr[i+1] - s.indptr[i]
	}
	return counts
}

// Row calls fn for each stored entry of row i in ascending column order
func (s *Sparse) Row(i int, fn func(j int, v float64)) {
	for k := s.indptr[i]; k < s.indptr[i+1]; k++ {
		fn(s.ind[k], s.data[k])
	}
}

// Diagonal returns a copy of the main diagonal
func (s *Sparse) Diagonal() []float64 {
	d := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		s.Row(i, func(j int, v float64) {
			if j == i {
				d[i] = v
			}
		})
	}
	return d
}

// Scale returns alpha D s D for the diagonal D, the symmetric scaling of
// the generalized problem
func (s *Sparse) Scale(alpha float64, d []float64) *Sparse {
	out := &Sparse{
		n:      s.n,
		csr:    s.csr,
		indptr: append([]int(nil), s.indptr...),
		ind:    append([]int(nil), s.ind...),
		data:   make([]float64, len(s.data)),
	}
	for i := 0; i < s.n; i++ {
		for k := s.indptr[i]; k < s.indptr[i+1]; k++ {
			out.data[k] = alpha * d[i] * s.data[k] * d[s.ind[k]]
		}
	}
	out.csr = out.toCSR()
	return out
}

func (s *Sparse) toCSR() *sparse.CSR {
	return sparse.NewCSR(s.n, s.n,
		append([]int(nil), s.indptr...),
		append([]int(nil), s.ind...),
		append([]float64(nil), s.data...))
}

// NormInf is the maximum absolute row sum
func (s *Sparse) NormInf() float64 {
	var max float64
	for i := 0; i < s.n; i++ {
		var sum float64
		for k := s.indptr[i]; k < s.indptr[i+1]; k++ {
			if v := s.data[k]; v < 0 {
				sum -= v
			} else {
				sum += v
			}
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

// MulVec computes dst = s x
func (s *Sparse) MulVec(dst, x []float64) {
	s.mulRows(dst, x, 0, s.n, nil)
}

// MulVecPartitioned computes dst = s x with the rows of each partition on
// a separate goroutine. Every row is computed by exactly one worker in the
// same order as MulVec, so the result is identical.
func (s *Sparse) MulVecPartitioned(dst, x []float64, layout *partitions.PartitionLayout) {
	if layout == nil || layout.NumPartitions <= 1 {
		s.MulVec(dst, x)
		return
	}
	layout.Run(func(p partitions.Partition) {
		s.mulRows(dst, x, 0, 0, p.Rows)
	})
}

func (s *Sparse) mulRows(dst, x []float64, lo, hi int, rows []int) {
	row := func(i int) {
		var sum float64
		for k := s.indptr[i]; k < s.indptr[i+1]; k++ {
			sum += s.data[k] * x[s.ind[k]]
		}
		dst[i] = sum
	}
	if rows != nil {
		for _, i := range rows {
			row(i)
		}
		return
	}
	for i := lo; i < hi; i++ {
		row(i)
	}
}

// Submatrix returns the rows and columns listed in keep, renumbered in the
// order given
func (s *Sparse) Submatrix(keep []int) *Sparse {
	local := make([]int, s.n)
	for i := range local {
		local[i] = -1
	}
	for li, gi := range keep {
		local[gi] = li
	}
	dok := sparse.NewDOK(len(keep), len(keep))
	for li, gi := range keep {
		s.Row(gi, func(j int, v float64) {
			if lj := local[j]; lj >= 0 && v != 0 {
				dok.Set(li, lj, v)
			}
		})
	}
	return NewSparse(dok)
}

// Layout partitions the rows of s by nonzero count for parallel products
func (s *Sparse) Layout(workers int) (*partitions.PartitionLayout, error) {
	pb := &partitions.PartitionBuilder{
		Rows: &partitions.RowConnectivity{
			NumRows:    s.n,
			RowWeights: s.RowNNZ(),
		},
		NumPartitions: workers,
		Strategy:      partitions.WeightedBlock,
	}
	return pb.BuildPartitions()
}

// Dense returns a dense symmetric copy, the upper triangle is used
func (s *Sparse) Dense() *mat.SymDense {
	d := mat.NewSymDense(s.n, nil)
	for i := 0; i < s.n; i++ {
		s.Row(i, func(j int, v float64) {
			if j >= i {
				d.SetSym(i, j, v)
			}
		})
	}
	return d
}
