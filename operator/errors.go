package operator

import (
	"errors"
	"fmt"

	"github.com/notargets/LBHarmonics/mesh"
)

var (
	// Assembly input errors, the mesh sentinels are shared so that callers
	// can test with errors.Is against either package
	ErrEmptyMesh      = mesh.ErrEmptyMesh
	ErrVertexIndex    = mesh.ErrVertexIndex
	ErrRepeatedVertex = mesh.ErrRepeatedVertex
	ErrNonManifold    = mesh.ErrNonManifold
	ErrNonFinite      = mesh.ErrNonFinite

	ErrIsolatedVertex = errors.New("vertex is not referenced by any face")
	ErrNoBoundary     = errors.New("fixed boundary requested on a mesh without boundary")
	ErrTooFewFree     = errors.New("no free vertices remain after pinning the boundary")
)

// AssemblyError reports the operation that failed while building operators
type AssemblyError struct {
	Op  string
	Err error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble %s: %v", e.Op, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }
