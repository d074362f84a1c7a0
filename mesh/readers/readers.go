// Package readers loads triangulated surfaces from mesh files
package readers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/LBHarmonics/mesh"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported mesh file format")
	ErrNoSurface         = errors.New("mesh file has no triangles or tetrahedra")
)

// ReadMeshFile reads a surface mesh, choosing the format from the file
// extension: .vtk (legacy ASCII), .stl (binary or ASCII), or the volume
// formats .neu, .msh and .su2, whose boundary surface is extracted.
func ReadMeshFile(path string) (*mesh.TriMesh, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".vtk":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		m, err := ReadVTK(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return m, nil
	case ".stl":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		m, err := ReadSTL(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return m, nil
	case ".neu", ".msh", ".su2":
		return readVolumeMesh(path)
	}
	return nil, fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
}
