package mesh

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed surface input. Callers match them with
// errors.Is; FaceError and VertexError carry the offending index.
var (
	ErrEmptyMesh      = errors.New("mesh: no vertices or no faces")
	ErrVertexIndex    = errors.New("mesh: face references a vertex out of range")
	ErrRepeatedVertex = errors.New("mesh: face repeats a vertex")
	ErrNonManifold    = errors.New("mesh: edge is not 2-manifold")
	ErrNonFinite      = errors.New("mesh: vertex coordinate is NaN or Inf")
)

// FaceError reports a problem with a single face
type FaceError struct {
	Face    int
	Indices [3]int
	Err     error
}

func (e *FaceError) Error() string {
	return fmt.Sprintf("face %d %v: %v", e.Face, e.Indices, e.Err)
}

func (e *FaceError) Unwrap() error { return e.Err }

// VertexError reports a problem with a single vertex
type VertexError struct {
	Vertex int
	Err    error
}

func (e *VertexError) Error() string {
	return fmt.Sprintf("vertex %d: %v", e.Vertex, e.Err)
}

func (e *VertexError) Unwrap() error { return e.Err }
