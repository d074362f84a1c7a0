package readers

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/LBHarmonics/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var unitTet = [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// checkOutward verifies that every face normal points away from the
// centroid of the closed surface
func checkOutward(t *testing.T, m *mesh.TriMesh) {
	t.Helper()
	var c r3.Vec
	for i := 0; i < m.NumVertices(); i++ {
		c = r3.Add(c, m.Position(i))
	}
	c = r3.Scale(1/float64(m.NumVertices()), c)
	for f := 0; f < m.NumFaces(); f++ {
		idx := m.Face(f)
		a, b, d := m.Position(idx[0]), m.Position(idx[1]), m.Position(idx[2])
		n := r3.Cross(r3.Sub(b, a), r3.Sub(d, a))
		assert.Greaterf(t, r3.Dot(n, r3.Sub(a, c)), 0.0, "face %d %v points inward", f, idx)
	}
}

func TestExtractSurfaceSingleTet(t *testing.T) {
	m, err := ExtractSurface(unitTet, [][]int{{0, 1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, 4, m.NumFaces())
	assert.True(t, m.IsClosed())
	checkOutward(t, m)
}

func TestExtractSurfaceTwoTets(t *testing.T) {
	points := append(append([][]float64{}, unitTet...), []float64{1, 1, 1})
	// The tets share face {1,2,3}; boundary triangles are ignored
	elements := [][]int{{0, 1, 2, 3}, {1, 2, 3, 4}, {0, 1, 2}}
	m, err := ExtractSurface(points, elements)
	require.NoError(t, err)
	assert.Equal(t, 5, m.NumVertices())
	assert.Equal(t, 6, m.NumFaces())
	assert.True(t, m.IsClosed())
	chi := m.NumVertices() - len(m.Edges().Edges) + m.NumFaces()
	assert.Equal(t, 2, chi)
}

func TestExtractSurfaceTriangles(t *testing.T) {
	points := [][]float64{{0, 0, 0}, {9, 9, 9}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	m, err := ExtractSurface(points, [][]int{{0, 2, 3}, {2, 4, 3}, {0, 2}})
	require.NoError(t, err)
	// Vertex 1 is unused and dropped, the others keep their order
	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, [3]int{0, 1, 2}, m.Face(0))
	assert.Equal(t, [3]int{1, 3, 2}, m.Face(1))
	assert.Equal(t, r3.Vec{X: 1}, m.Position(1))

	_, err = ExtractSurface(points, [][]int{{0, 1}})
	assert.True(t, errors.Is(err, ErrNoSurface))
	_, err = ExtractSurface(points, [][]int{{0, 1, 7}})
	assert.Error(t, err)
}

const polyData = `# vtk DataFile Version 3.0
square
ASCII
DATASET POLYDATA
POINTS 4 float
0 0 0 1 0 0
1 1 0 0 1 0
POLYGONS 2 8
3 0 1 2
3 0 2 3
POINT_DATA 4
SCALARS s float 1
LOOKUP_TABLE default
0 1 2 3
`

func TestReadVTKPolyData(t *testing.T) {
	m, err := ReadVTK(strings.NewReader(polyData))
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, 2, m.NumFaces())
	assert.Equal(t, 4, m.NumBoundaryVertices())
	assert.Equal(t, r3.Vec{X: 1, Y: 1}, m.Position(2))
}

func TestReadVTKUnstructuredTet(t *testing.T) {
	text := `# vtk DataFile Version 2.0
tet
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 4 double
0 0 0
1 0 0
0 1 0
0 0 1
CELLS 1 5
4 0 1 2 3
CELL_TYPES 1
10
`
	m, err := ReadVTK(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumFaces())
	checkOutward(t, m)
}

func TestReadVTKRejects(t *testing.T) {
	tests := map[string]string{
		"not vtk":    "hello\n",
		"binary":     "# vtk DataFile Version 3.0\nx\nBINARY\nDATASET POLYDATA\n",
		"dataset":    "# vtk DataFile Version 3.0\nx\nASCII\nDATASET STRUCTURED_POINTS\n",
		"quad":       "# vtk DataFile Version 3.0\nx\nASCII\nDATASET POLYDATA\nPOINTS 4 float\n0 0 0 1 0 0 1 1 0 0 1 0\nPOLYGONS 1 5\n4 0 1 2 3\n",
		"hexahedron": "# vtk DataFile Version 3.0\nx\nASCII\nDATASET UNSTRUCTURED_GRID\nPOINTS 3 float\n0 0 0 1 0 0 0 1 0\nCELLS 1 4\n3 0 1 2\nCELL_TYPES 1\n12\n",
		"truncated":  "# vtk DataFile Version 3.0\nx\nASCII\nDATASET POLYDATA\nPOINTS 4 float\n0 0 0\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadVTK(strings.NewReader(text))
			assert.Error(t, err)
		})
	}
}

func binarySTL(m *mesh.TriMesh) []byte {
	buf := make([]byte, stlHeaderSize+4+stlFacetSize*m.NumFaces())
	copy(buf, "binary stl")
	binary.LittleEndian.PutUint32(buf[stlHeaderSize:], uint32(m.NumFaces()))
	for f := 0; f < m.NumFaces(); f++ {
		rec := buf[stlHeaderSize+4+f*stlFacetSize:]
		for c, v := range m.Face(f) {
			for k := 0; k < 3; k++ {
				binary.LittleEndian.PutUint32(rec[12+12*c+4*k:], math.Float32bits(m.Points[v][k]))
			}
		}
	}
	return buf
}

func asciiSTL(m *mesh.TriMesh) []byte {
	var sb strings.Builder
	sb.WriteString("solid tet\n")
	for f := 0; f < m.NumFaces(); f++ {
		sb.WriteString("  facet normal 0 0 0\n    outer loop\n")
		for _, v := range m.Face(f) {
			p := m.Points[v]
			sb.WriteString(fmt.Sprintf("      vertex %g %g %g\n", p[0], p[1], p[2]))
		}
		sb.WriteString("    endloop\n  endfacet\n")
	}
	sb.WriteString("endsolid tet\n")
	return []byte(sb.String())
}

func TestReadSTL(t *testing.T) {
	tet := mesh.Tetrahedron()
	for name, data := range map[string][]byte{
		"binary":     binarySTL(tet),
		"ascii":  asciiSTL(tet),
	} {
		t.Run(name, func(t *testing.T) {
			m, err := ReadSTL(data)
			require.NoError(t, err)
			assert.Equal(t, 4, m.NumVertices())
			assert.Equal(t, 4, m.NumFaces())
			assert.True(t, m.IsClosed())
			checkOutward(t, m)
		})
	}

	_, err := ReadSTL([]byte("garbage"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReadMeshFile(t *testing.T) {
	dir := t.TempDir()
	vtkPath := filepath.Join(dir, "square.VTK")
	require.NoError(t, os.WriteFile(vtkPath, []byte(polyData), 0o644))
	m, err := ReadMeshFile(vtkPath)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumFaces())

	stlPath := filepath.Join(dir, "tet.stl")
	require.NoError(t, os.WriteFile(stlPath, binarySTL(mesh.Tetrahedron()), 0o644))
	m, err = ReadMeshFile(stlPath)
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumFaces())

	_, err = ReadMeshFile(filepath.Join(dir, "surface.obj"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	_, err = ReadMeshFile(filepath.Join(dir, "missing.vtk"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = ReadMeshFile(filepath.Join(dir, "missing.msh"))
	assert.Error(t, err)
}
