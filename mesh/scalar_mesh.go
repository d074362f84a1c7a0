package mesh

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Precision selects the storage precision of per-vertex scalar output
type Precision uint8

const (
	Float64 Precision = iota
	Float32
)

func (p Precision) String() string {
	switch p {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	}
	return fmt.Sprintf("Precision(%d)", uint8(p))
}

func (p Precision) MarshalText() ([]byte, error) {
	if p > Float32 {
		return nil, fmt.Errorf("unknown precision %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Precision) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "float64", "double", "":
		*p = Float64
	case "float32", "float", "single":
		*p = Float32
	default:
		return fmt.Errorf("unknown precision %q", string(text))
	}
	return nil
}

// Round returns x as representable in this precision
func (p Precision) Round(x float64) float64 {
	if p == Float32 {
		return float64(float32(x))
	}
	return x
}

// ScalarMesh is an independent copy of surface geometry decorated with one
// scalar value per vertex
type ScalarMesh struct {
	Name       string
	ScalarName string
	Points     []r3.Vec
	Faces      [][3]int
	Scalars    []float64
	Precision  Precision

	// Set when the scalars are an eigenvector
	Index      int
	Eigenvalue float64
}

// CopyGeometry deep copies the vertices and faces of an Accessor into a new
// ScalarMesh with zeroed scalars
func CopyGeometry(acc Accessor) *ScalarMesh {
	sm := &ScalarMesh{
		Points:  make([]r3.Vec, acc.NumVertices()),
		Faces:   make([][3]int, acc.NumFaces()),
		Scalars: make([]float64, acc.NumVertices()),
	}
	for i := range sm.Points {
		sm.Points[i] = acc.Position(i)
	}
	for f := range sm.Faces {
		sm.Faces[f] = acc.Face(f)
	}
	return sm
}

// ScalarRange returns the minimum and maximum scalar values
func (sm *ScalarMesh) ScalarRange() (lo, hi float64) {
	if len(sm.Scalars) == 0 {
		return 0, 0
	}
	lo, hi = sm.Scalars[0], sm.Scalars[0]
	for _, v := range sm.Scalars[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return
}
