package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridCounts(t *testing.T) {
	m, err := Grid(4, 4, 1.0)
	require.NoError(t, err)

	assert.Equal(t, 16, m.NumVertices())
	assert.Equal(t, 18, m.NumFaces())
	assert.Equal(t, 12, m.NumBoundaryVertices())
	assert.False(t, m.IsClosed())

	// Interior vertices of a 4x4 grid are (1,1),(2,1),(1,2),(2,2)
	for _, v := range []int{5, 6, 9, 10} {
		assert.Falsef(t, m.IsBoundary(v), "vertex %d should be interior", v)
	}
	// 3 rows of 3 cells: 12 boundary edges
	assert.Len(t, m.Edges().BoundaryEdges(), 12)
	require.NoError(t, m.Edges().Verify())
}

func TestClosedShapes(t *testing.T) {
	tests := []struct {
		name         string
		build        func() (*TriMesh, error)
		verts, faces int
		euler        int
	}{
		{"tetrahedron", func() (*TriMesh, error) { return Tetrahedron(), nil }, 4, 4, 2},
		{"icosahedron", func() (*TriMesh, error) { return Icosahedron(), nil }, 12, 20, 2},
		{"icosphere-1", func() (*TriMesh, error) { return Icosphere(1) }, 42, 80, 2},
		{"icosphere-2", func() (*TriMesh, error) { return Icosphere(2) }, 162, 320, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := tc.build()
			require.NoError(t, err)
			assert.Equal(t, tc.verts, m.NumVertices())
			assert.Equal(t, tc.faces, m.NumFaces())
			assert.True(t, m.IsClosed())
			chi := m.NumVertices() - len(m.Edges().Edges) + m.NumFaces()
			assert.Equal(t, tc.euler, chi)
			for i := 0; i < m.NumVertices(); i++ {
				p := m.Position(i)
				if tc.name != "tetrahedron" {
					assert.InDelta(t, 1.0, math.Sqrt(p.X*p.X+p.Y*p.Y+p.Z*p.Z), 1e-6)
				}
			}
		})
	}
}

func TestNewTriMeshRejectsMalformed(t *testing.T) {
	square := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {0.5, 0.5, 1}}
	tests := []struct {
		name   string
		points [][3]float32
		faces  [][3]int
		want   error
	}{
		{"empty", nil, nil, ErrEmptyMesh},
		{"index out of range", square, [][3]int{{0, 1, 7}}, ErrVertexIndex},
		{"negative index", square, [][3]int{{0, -1, 2}}, ErrVertexIndex},
		{"repeated vertex", square, [][3]int{{0, 1, 1}}, ErrRepeatedVertex},
		{"three faces on an edge", square, [][3]int{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}}, ErrNonManifold},
		{"inconsistent orientation", square, [][3]int{{0, 1, 2}, {0, 1, 3}}, ErrNonManifold},
		{"nan coordinate", [][3]float32{{0, 0, 0}, {float32(math.NaN()), 0, 0}, {0, 1, 0}},
			[][3]int{{0, 1, 2}}, ErrNonFinite},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTriMesh(tc.points, tc.faces)
			require.Error(t, err)
			assert.Truef(t, errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		})
	}

	_, err := NewTriMesh(square, [][3]int{{0, 1, 7}})
	var fe *FaceError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.Face)
	assert.Equal(t, [3]int{0, 1, 7}, fe.Indices)
}

func TestEdgeConnector(t *testing.T) {
	// Two triangles sharing the edge (0,2)
	faces := [][3]int{{0, 1, 2}, {0, 2, 3}}
	ec, err := NewEdgeConnector(4, faces)
	require.NoError(t, err)
	require.NoError(t, ec.Verify())

	assert.Len(t, ec.Edges, 5)
	assert.Equal(t, []int{0, 1}, ec.EdgeFacesOf(2, 0))
	assert.Equal(t, []int{0}, ec.EdgeFacesOf(0, 1))
	assert.Nil(t, ec.EdgeFacesOf(1, 3))
	assert.Equal(t, []Edge{{0, 1}, {0, 3}, {1, 2}, {2, 3}}, ec.BoundaryEdges())
	assert.Equal(t, []bool{true, true, true, true}, ec.BoundaryVertices())
}

func TestComponents(t *testing.T) {
	tet := Tetrahedron()
	grid, err := Grid(3, 3, 1)
	require.NoError(t, err)
	both, err := Merge(tet, Translate(grid, 5, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, float32(5), both.Points[4][0])
	assert.Equal(t, float32(0), grid.Points[0][0])

	labels, count := Components(both, nil)
	assert.Equal(t, 2, count)
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0, labels[i])
	}
	for i := 4; i < both.NumVertices(); i++ {
		assert.Equal(t, 1, labels[i])
	}

	// Dropping every face leaves singletons
	_, count = Components(tet, func(int) bool { return false })
	assert.Equal(t, 4, count)
}

func TestValidateAccessor(t *testing.T) {
	m, err := Grid(3, 2, 0.5)
	require.NoError(t, err)
	ec, err := Validate(m)
	require.NoError(t, err)
	assert.Equal(t, len(m.Edges().Edges), len(ec.Edges))
}

func TestPrecisionText(t *testing.T) {
	var p Precision
	require.NoError(t, p.UnmarshalText([]byte("float")))
	assert.Equal(t, Float32, p)
	require.NoError(t, p.UnmarshalText([]byte("double")))
	assert.Equal(t, Float64, p)
	assert.Error(t, p.UnmarshalText([]byte("half")))

	text, err := Float32.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "float32", string(text))

	assert.Equal(t, float64(float32(0.1)), Float32.Round(0.1))
	assert.Equal(t, 0.1, Float64.Round(0.1))
}

func TestCopyGeometryIsIndependent(t *testing.T) {
	m := Tetrahedron()
	sm := CopyGeometry(m)
	sm.Points[0].X = 42
	sm.Faces[0][0] = 3
	assert.Equal(t, float32(1), m.Points[0][0])
	assert.Equal(t, 0, m.Faces[0][0])
}

func TestScalarRange(t *testing.T) {
	sm := CopyGeometry(Tetrahedron())
	lo, hi := sm.ScalarRange()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)

	copy(sm.Scalars, []float64{0.5, -2, 3, 1})
	lo, hi = sm.ScalarRange()
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 3.0, hi)

	lo, hi = (&ScalarMesh{}).ScalarRange()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}
