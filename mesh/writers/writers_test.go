package writers

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kshedden/gonpy"
	"github.com/notargets/LBHarmonics/mesh"
	"github.com/notargets/LBHarmonics/mesh/readers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalarGrid(t *testing.T) *mesh.ScalarMesh {
	g, err := mesh.Grid(3, 3, 0.5)
	require.NoError(t, err)
	sm := mesh.CopyGeometry(g)
	sm.Name = "harmonic 0"
	sm.ScalarName = "harmonic"
	for i := range sm.Scalars {
		sm.Scalars[i] = 0.1 * float64(i)
	}
	return sm
}

func TestWriteVTKRoundTrip(t *testing.T) {
	sm := scalarGrid(t)
	var buf bytes.Buffer
	require.NoError(t, WriteVTK(&buf, sm))
	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "# vtk DataFile Version 3.0\nharmonic 0\nASCII\nDATASET POLYDATA\n"))
	assert.Contains(t, text, "POINTS 9 double")
	assert.Contains(t, text, "POLYGONS 8 32")
	assert.Contains(t, text, "SCALARS harmonic double 1")
	assert.Contains(t, text, "\n0.8\n")

	m, err := readers.ReadVTK(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, 9, m.NumVertices())
	assert.Equal(t, 8, m.NumFaces())
	for i := 0; i < 9; i++ {
		assert.Equal(t, sm.Points[i], m.Position(i))
	}
	for f := 0; f < 8; f++ {
		assert.Equal(t, sm.Faces[f], m.Face(f))
	}
}

func TestWriteVTKFloat(t *testing.T) {
	sm := scalarGrid(t)
	sm.Precision = mesh.Float32
	sm.Scalars[1] = float64(float32(1) / 3)
	var buf bytes.Buffer
	require.NoError(t, WriteVTK(&buf, sm))
	assert.Contains(t, buf.String(), "SCALARS harmonic float 1")
	assert.Contains(t, buf.String(), "POINTS 9 float")
	assert.Contains(t, buf.String(), "\n0.33333334\n")

	sm.Scalars = sm.Scalars[:3]
	assert.Error(t, WriteVTK(&buf, sm))
}

func TestWriteVTKFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SurfaceHarmonic_0.vtk")
	require.NoError(t, WriteVTKFile(path, scalarGrid(t)))
	m, err := readers.ReadMeshFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9, m.NumVertices())
}

func TestWriteNPY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eigVec.npy")
	data := []float64{1, 2, 3, 4, 5, 6}
	require.NoError(t, WriteNPY(path, 2, 3, data))

	r, err := gonpy.NewFileReader(path)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, r.Shape)
	got, err := r.GetFloat64()
	require.NoError(t, err)
	assert.Equal(t, data, got)

	assert.Error(t, WriteNPY(path, 4, 4, data))
}
