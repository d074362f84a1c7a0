package element

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Default numerical guards for triangle geometry
const (
	DefaultAreaTolerance = 1e-12 // relative to the squared longest edge
	DefaultMaxCotangent  = 1e6   // |cot| clamp, an angle of about 1e-6 rad
)

// Triangle is a linear (P1) Lagrange triangle in 3D. Node i sits at vertex
// V[i]; edge i is the edge opposite node i.
type Triangle struct {
	V [3]r3.Vec

	Area        float64
	LongestEdge float64

	// Cot[i] is the cotangent of the interior angle at node i. The angles
	// always sum to pi, so the local Laplacian stays semidefinite even when
	// the clamp is active.
	Cot     [3]float64
	Clamped bool // true if an angle was raised to the clamp angle
}

// NewTriangle computes area and angle cotangents of the triangle (a, b, c).
// The cotangent at a node is dot/|cross| of the two edge vectors leaving it,
// which avoids acos/tan and stays finite for flat triangles. If any |cot|
// exceeds maxCot, angles below atan(1/maxCot) are raised to it and the
// largest angle takes up the difference to pi.
func NewTriangle(a, b, c r3.Vec, maxCot float64) (tri Triangle) {
	if maxCot <= 0 {
		maxCot = DefaultMaxCotangent
	}
	tri.V = [3]r3.Vec{a, b, c}

	doubleArea := r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
	tri.Area = 0.5 * doubleArea

	var dots [3]float64
	for i := 0; i < 3; i++ {
		p := tri.V[i]
		e1 := r3.Sub(tri.V[(i+1)%3], p)
		e2 := r3.Sub(tri.V[(i+2)%3], p)
		tri.LongestEdge = math.Max(tri.LongestEdge, r3.Norm(r3.Sub(tri.V[(i+2)%3], tri.V[(i+1)%3])))

		dots[i] = r3.Dot(e1, e2)
		cot := dots[i] / doubleArea
		if !(math.Abs(cot) <= maxCot) {
			tri.Clamped = true
		}
		tri.Cot[i] = cot
	}
	if tri.Clamped {
		tri.Cot = clampedCotangents(dots, doubleArea, maxCot)
	}
	return
}

// clampedCotangents raises angles below atan(1/maxCot) to it, except the
// largest, whose cotangent follows from the other two through
// cot(pi-a-b) = (1 - cot a cot b) / (cot a + cot b)
func clampedCotangents(dots [3]float64, doubleArea, maxCot float64) (cot [3]float64) {
	minAngle := math.Atan(1 / maxCot)
	var angle [3]float64
	big := 0
	for i := range angle {
		angle[i] = math.Atan2(doubleArea, dots[i])
		if angle[i] > angle[big] {
			big = i
		}
	}
	a, b := (big+1)%3, (big+2)%3
	for _, i := range []int{a, b} {
		if angle[i] < minAngle {
			cot[i] = maxCot
		} else {
			cot[i] = 1 / math.Tan(angle[i])
		}
	}
	cot[big] = (1 - cot[a]*cot[b]) / (cot[a] + cot[b])
	return
}

// IsDegenerate reports whether the area is negligible relative to the
// squared longest edge
func (t Triangle) IsDegenerate(tol float64) bool {
	if tol <= 0 {
		tol = DefaultAreaTolerance
	}
	return !(t.Area > tol*t.LongestEdge*t.LongestEdge)
}

// Laplacian returns the 3x3 local cotangent Laplacian in the negative
// semidefinite convention: the (i,j) entry is ½cot of the angle at the
// node opposite edge (i,j), and each row sums to zero.
func (t Triangle) Laplacian() *mat.SymDense {
	L := mat.NewSymDense(3, nil)
	for k := 0; k < 3; k++ {
		i, j := (k+1)%3, (k+2)%3
		w := 0.5 * t.Cot[k]
		L.SetSym(i, j, w)
	}
	for i := 0; i < 3; i++ {
		L.SetSym(i, i, -(L.At(i, (i+1)%3) + L.At(i, (i+2)%3)))
	}
	return L
}

// LumpedMass returns the barycentric mass of each node, one third of the area
func (t Triangle) LumpedMass() [3]float64 {
	m := t.Area / 3
	return [3]float64{m, m, m}
}
