package element

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Dimensionality represents the spatial dimension of an element
type Dimensionality uint8

const (
	D0 Dimensionality = iota // points
	D1                       // lines
	D2                       // triangles
)

// ElementProperties contains metadata describing an element type
type ElementProperties struct {
	Name       string // Full descriptive name
	ShortName  string // Abbreviated name
	Order      int    // Polynomial order
	Np         int    // Nodes per element
	NEdges     int    // Edges per element
	Dimensions Dimensionality
}

// P1Triangle describes the linear triangle used for surface operators
var P1Triangle = ElementProperties{
	Name:       "Lagrange Triangle Order 1",
	ShortName:  "Tri1",
	Order:      1,
	Np:         3,
	NEdges:     3,
	Dimensions: D2,
}

// LocalOperators are the per element matrices scattered into the global
// operators during assembly
type LocalOperators struct {
	Nodes     [3]int        // global vertex ids of the element nodes
	Stiffness *mat.SymDense // [Np × Np] local Laplacian
	Mass      [3]float64    // lumped nodal mass
}

// NewLocalOperators evaluates the local operators of a triangle
func NewLocalOperators(nodes [3]int, tri Triangle) LocalOperators {
	return LocalOperators{
		Nodes:     nodes,
		Stiffness: tri.Laplacian(),
		Mass:      tri.LumpedMass(),
	}
}

// String formats the local operators for debugging
func (lo LocalOperators) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s nodes %v\n", P1Triangle.ShortName, lo.Nodes))
	for i := 0; i < P1Triangle.Np; i++ {
		sb.WriteString("    {")
		for j := 0; j < P1Triangle.Np; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%.15e", lo.Stiffness.At(i, j)))
		}
		sb.WriteString(fmt.Sprintf("}  m=%.15e\n", lo.Mass[i]))
	}
	return sb.String()
}
