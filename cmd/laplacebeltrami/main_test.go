package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kshedden/gonpy"
	"github.com/notargets/LBHarmonics/mesh"
	"github.com/notargets/LBHarmonics/mesh/readers"
	"github.com/notargets/LBHarmonics/mesh/writers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridFile(t *testing.T, dir string) string {
	t.Helper()
	grid, err := mesh.Grid(4, 4, 1)
	require.NoError(t, err)
	path := filepath.Join(dir, "grid.vtk")
	require.NoError(t, writers.WriteVTKFile(path, mesh.CopyGeometry(grid)))
	return path
}

func TestRunWritesHarmonics(t *testing.T) {
	dir := t.TempDir()
	in := gridFile(t, dir)
	out := filepath.Join(dir, "first.vtk")
	prefix := filepath.Join(dir, "h")
	npyDir := filepath.Join(dir, "npy")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-e", "3", "-s", "2", "-prefix", prefix, "-npy", npyDir, in, out},
		&stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Vertex Count: 16\n")
	assert.Contains(t, stdout.String(), "Cell Count: 18\n")
	assert.NotContains(t, stdout.String(), "Couldn't get harmonic")

	for _, name := range []string{out, prefix + "_0.vtk", prefix + "_1.vtk", prefix + "_2.vtk"} {
		m, err := readers.ReadMeshFile(name)
		require.NoError(t, err, name)
		assert.Equal(t, 18, m.NumFaces())
	}

	r, err := gonpy.NewFileReader(filepath.Join(npyDir, "eigVal.npy"))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, r.Shape)
	vals, err := r.GetFloat64()
	require.NoError(t, err)
	assert.True(t, vals[0] < vals[1] && vals[1] < vals[2])

	r, err = gonpy.NewFileReader(filepath.Join(npyDir, "eigVec.npy"))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 16}, r.Shape)
}

func TestRunMisuse(t *testing.T) {
	dir := t.TempDir()
	in := gridFile(t, dir)
	out := filepath.Join(dir, "out.vtk")

	tests := map[string][]string{
		"no arguments":    nil,
		"one argument":    {in},
		"bad boundary":    {"-b", "3", in, out},
		"bad count":       {"-e", "0", in, out},
		"missing mesh":    {filepath.Join(dir, "none.vtk"), out},
		"too many wanted": {"-e", "10", in, out},
		"unknown flag":    {"-q", in, out},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 1, run(context.Background(), args, &stdout, &stderr))
		})
	}

	var stdout, stderr bytes.Buffer
	run(context.Background(), []string{in}, &stdout, &stderr)
	assert.Contains(t, stderr.String(), "Usage: laplacebeltrami")
}

func TestConfigureOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lb.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("eigenvalue_count: 4\nboundary: natural\nscale: 3\n"), 0o644))

	var o options
	var stderr bytes.Buffer
	fs := newFlagSet(&o, &stderr)
	require.NoError(t, fs.Parse([]string{"-config", cfgPath, "-boundaryCondition", "2", "a", "b"}))
	cfg, err := configure(fs, o)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.EigenvalueCount)
	assert.Equal(t, 3.0, cfg.Scale)
	assert.Equal(t, "fixed", cfg.Boundary.String())

	o = options{}
	fs = newFlagSet(&o, &stderr)
	require.NoError(t, fs.Parse([]string{"a", "b"}))
	cfg, err = configure(fs, o)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.EigenvalueCount)
	assert.Equal(t, "fixed", cfg.Boundary.String())
}

func TestRunVerboseDumpsMetrics(t *testing.T) {
	dir := t.TempDir()
	in := gridFile(t, dir)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-v", "-prefix", filepath.Join(dir, "h"), in, filepath.Join(dir, "out.vtk")},
		&stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "lb_harmonics_updates_total")
	assert.Contains(t, stderr.String(), "msg=harmonic index=0")
	assert.Contains(t, stderr.String(), " min=")
}
