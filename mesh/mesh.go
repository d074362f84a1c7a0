package mesh

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// Accessor supplies the geometry and topology of a triangulated surface.
// Implementations are read-only for the lifetime of a solve.
type Accessor interface {
	NumVertices() int
	// Position returns vertex i in solver precision
	Position(i int) r3.Vec
	NumFaces() int
	Face(f int) [3]int
	// IsBoundary reports whether vertex i lies on a boundary edge
	IsBoundary(i int) bool
}

// TriMesh is a triangle surface with single precision vertex storage. The
// conversion to float64 happens in Position and nowhere else.
type TriMesh struct {
	Points [][3]float32
	Faces  [][3]int

	edges    *EdgeConnector
	boundary []bool
}

// NewTriMesh validates the surface and derives its boundary
func NewTriMesh(points [][3]float32, faces [][3]int) (*TriMesh, error) {
	if len(points) == 0 || len(faces) == 0 {
		return nil, ErrEmptyMesh
	}
	for i, p := range points {
		for _, c := range p {
			if math32.IsNaN(c) || math32.IsInf(c, 0) {
				return nil, &VertexError{Vertex: i, Err: ErrNonFinite}
			}
		}
	}
	ec, err := NewEdgeConnector(len(points), faces)
	if err != nil {
		return nil, err
	}
	return &TriMesh{
		Points:   points,
		Faces:    faces,
		edges:    ec,
		boundary: ec.BoundaryVertices(),
	}, nil
}

func (m *TriMesh) NumVertices() int { return len(m.Points) }

func (m *TriMesh) Position(i int) r3.Vec {
	p := m.Points[i]
	return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

func (m *TriMesh) NumFaces() int { return len(m.Faces) }

func (m *TriMesh) Face(f int) [3]int { return m.Faces[f] }

func (m *TriMesh) IsBoundary(i int) bool { return m.boundary[i] }

// Edges returns the edge connectivity built at construction
func (m *TriMesh) Edges() *EdgeConnector { return m.edges }

// NumBoundaryVertices counts vertices on boundary edges
func (m *TriMesh) NumBoundaryVertices() (n int) {
	for _, b := range m.boundary {
		if b {
			n++
		}
	}
	return
}

// IsClosed is true when no edge is a boundary edge
func (m *TriMesh) IsClosed() bool { return m.NumBoundaryVertices() == 0 }

// Bounds returns the axis aligned bounding box of the vertices
func (m *TriMesh) Bounds() (lo, hi [3]float32) {
	lo, hi = m.Points[0], m.Points[0]
	for _, p := range m.Points[1:] {
		for c := 0; c < 3; c++ {
			lo[c] = math32.Min(lo[c], p[c])
			hi[c] = math32.Max(hi[c], p[c])
		}
	}
	return
}

// String returns a one line summary of the surface
func (m *TriMesh) String() string {
	lo, hi := m.Bounds()
	return fmt.Sprintf("TriMesh: %d vertices, %d faces, %d edges, %d boundary vertices, bounds %v - %v",
		m.NumVertices(), m.NumFaces(), len(m.edges.Edges), m.NumBoundaryVertices(), lo, hi)
}

// Validate checks that an Accessor describes a well formed 2-manifold
// triangle surface with finite coordinates, and returns the edge
// connectivity it implies.
func Validate(acc Accessor) (*EdgeConnector, error) {
	nv, nf := acc.NumVertices(), acc.NumFaces()
	if nv <= 0 || nf <= 0 {
		return nil, ErrEmptyMesh
	}
	for i := 0; i < nv; i++ {
		p := acc.Position(i)
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return nil, &VertexError{Vertex: i, Err: ErrNonFinite}
		}
	}
	faces := make([][3]int, nf)
	for f := range faces {
		faces[f] = acc.Face(f)
	}
	return NewEdgeConnector(nv, faces)
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
