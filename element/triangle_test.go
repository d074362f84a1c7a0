package element

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestTriangleRightIsoceles(t *testing.T) {
	tri := NewTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}, 0)

	assert.InDelta(t, 0.5, tri.Area, 1e-15)
	assert.InDelta(t, math.Sqrt2, tri.LongestEdge, 1e-15)
	assert.InDeltaSlicef(t, []float64{0, 1, 1}, tri.Cot[:], 1e-15, "")
	assert.False(t, tri.Clamped)
	assert.False(t, tri.IsDegenerate(0))

	L := tri.Laplacian()
	expected := []float64{
		-1, 0.5, 0.5,
		0.5, -0.5, 0,
		0.5, 0, -0.5,
	}
	var got []float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			got = append(got, L.At(i, j))
		}
	}
	assert.InDeltaSlicef(t, expected, got, 1e-15, "")

	m := tri.LumpedMass()
	assert.InDeltaSlicef(t, []float64{1. / 6, 1. / 6, 1. / 6}, m[:], 1e-15, "")
}

func TestTriangleRowsSumToZero(t *testing.T) {
	tris := []Triangle{
		NewTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 0.5, Y: math.Sqrt(3) / 2}, 0),
		NewTriangle(r3.Vec{}, r3.Vec{X: 2}, r3.Vec{X: 1, Y: 0.1}, 0),
		NewTriangle(r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: -1, Y: 0.5, Z: 2}, r3.Vec{X: 0.3, Y: -2, Z: 1}, 0),
	}
	for _, tri := range tris {
		L := tri.Laplacian()
		for i := 0; i < 3; i++ {
			sum := 0.0
			for j := 0; j < 3; j++ {
				sum += L.At(i, j)
				assert.Equal(t, L.At(i, j), L.At(j, i))
			}
			assert.InDelta(t, 0, sum, 1e-14)
		}
	}

	// Equilateral: all angles 60 degrees
	assert.InDeltaSlicef(t, []float64{1 / math.Sqrt(3), 1 / math.Sqrt(3), 1 / math.Sqrt(3)},
		tris[0].Cot[:], 1e-12, "")
	// Obtuse angle at node 2 gives a negative cotangent
	assert.Less(t, tris[1].Cot[2], 0.0)
}

// checkSemidefinite asserts that the local Laplacian has no positive
// eigenvalue beyond round off
func checkSemidefinite(t *testing.T, tri Triangle) {
	t.Helper()
	var eig mat.EigenSym
	if !eig.Factorize(tri.Laplacian(), false) {
		t.Fatal("eigen decomposition failed")
	}
	scale := 0.0
	for _, c := range tri.Cot {
		scale = math.Max(scale, math.Abs(c))
	}
	for _, v := range eig.Values(nil) {
		assert.LessOrEqualf(t, v, 1e-9*scale, "local Laplacian eigenvalue %g", v)
	}
}

func TestTriangleDegenerateAndClamp(t *testing.T) {
	flat := NewTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 2}, 0)
	assert.True(t, flat.IsDegenerate(0))
	assert.True(t, flat.Clamped)
	for _, c := range flat.Cot {
		assert.False(t, math.IsInf(c, 0) || math.IsNaN(c))
	}
	checkSemidefinite(t, flat)

	// Two angles of about 2e-9 rad are raised to the clamp angle and the
	// obtuse angle shrinks to keep the sum at pi
	sliver := NewTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 0.5, Y: 1e-9}, 0)
	assert.False(t, sliver.IsDegenerate(0))
	assert.True(t, sliver.Clamped)
	assert.InEpsilon(t, DefaultMaxCotangent, sliver.Cot[0], 1e-9)
	assert.InEpsilon(t, DefaultMaxCotangent, sliver.Cot[1], 1e-9)
	assert.InEpsilon(t, -DefaultMaxCotangent/2, sliver.Cot[2], 1e-6)
	checkSemidefinite(t, sliver)

	// A tighter clamp and a looser area tolerance
	sliver = NewTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 0.5, Y: 1e-9}, 10)
	assert.InDelta(t, 10.0, sliver.Cot[0], 1e-12)
	// cot(2 atan(1/10)) = (1 - 1/100) / (2/10)
	assert.InDelta(t, -4.95, sliver.Cot[2], 1e-12)
	assert.True(t, sliver.IsDegenerate(1e-6))
	checkSemidefinite(t, sliver)
}

func TestClampedThinObtuseTriangle(t *testing.T) {
	// Angles of 1e-8, 1e-8 and pi-2e-8 rad: independent clamping of each
	// cotangent would give +1e6, +1e6, -1e6 and an indefinite operator
	tri := NewTriangle(r3.Vec{}, r3.Vec{X: 2}, r3.Vec{X: 1, Y: 1e-8}, 0)
	assert.True(t, tri.Clamped)
	assert.False(t, tri.IsDegenerate(0))
	checkSemidefinite(t, tri)

	// Angles summing to pi satisfy this identity
	c := tri.Cot
	assert.InDelta(t, 1, c[0]*c[1]+c[1]*c[2]+c[2]*c[0], 1e-3)
	for _, x := range tri.Cot {
		assert.LessOrEqual(t, math.Abs(x), DefaultMaxCotangent*(1+1e-9))
	}
}

func TestLocalOperators(t *testing.T) {
	tri := NewTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}, 0)
	lo := NewLocalOperators([3]int{4, 7, 9}, tri)
	assert.Equal(t, [3]int{4, 7, 9}, lo.Nodes)
	r, c := lo.Stiffness.Dims()
	assert.Equal(t, P1Triangle.Np, r)
	assert.Equal(t, P1Triangle.Np, c)
	assert.Contains(t, lo.String(), "Tri1 nodes [4 7 9]")
}
