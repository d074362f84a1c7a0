package operator

import (
	"fmt"
	"strings"
)

// Condition is the boundary condition applied to boundary vertices. The
// numeric values match the codes accepted on the command line.
type Condition uint8

const (
	Natural Condition = iota + 1 // zero normal derivative, all vertices free
	Fixed                        // boundary vertices pinned to zero
)

func (c Condition) String() string {
	switch c {
	case Natural:
		return "natural"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("Condition(%d)", uint8(c))
}

// Valid reports whether c is a known condition
func (c Condition) Valid() bool { return c == Natural || c == Fixed }

func (c Condition) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown boundary condition %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Condition) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "natural", "neumann", "vonneumann", "1":
		*c = Natural
	case "fixed", "dirichlet", "2":
		*c = Fixed
	default:
		return fmt.Errorf("unknown boundary condition %q", string(text))
	}
	return nil
}

// System is the generalized eigenproblem left after applying a boundary
// condition: the stiffness and mass restricted to the free vertices.
type System struct {
	Requested Condition // condition asked for
	Condition Condition // condition in effect

	Stiffness *Sparse   // L on the free vertices, negative semidefinite
	Mass      []float64 // lumped mass of the free vertices

	NumVertices int
	Free        []int // global ids of the free vertices, ascending
	Pinned      []int // global ids of the pinned vertices, ascending

	// Trivial lists, for every connected component without a pinned
	// vertex, the local (free) indices of its vertices. Each spans one
	// constant null vector of the stiffness.
	Trivial [][]int
}

// Dim is the number of free vertices
func (s *System) Dim() int { return len(s.Free) }

// Expand zero-extends a vector over the free vertices to all vertices
func (s *System) Expand(reduced []float64) []float64 {
	if len(reduced) != len(s.Free) {
		panic(fmt.Sprintf("operator: expand %d values onto %d free vertices",
			len(reduced), len(s.Free)))
	}
	full := make([]float64, s.NumVertices)
	for li, gi := range s.Free {
		full[gi] = reduced[li]
	}
	return full
}

// ApplyBoundary restricts the operators to the vertices left free by the
// condition. Under Natural every vertex is free and the operators are
// shared, not copied.
func ApplyBoundary(p *Pair, cond Condition, isBoundary func(i int) bool, opts ...Option) (*System, error) {
	if !cond.Valid() {
		return nil, fmt.Errorf("apply boundary: unknown condition %d", uint8(cond))
	}
	o := newOptions(opts)
	nv := p.Report.NumVertices
	sys := &System{Requested: cond, Condition: cond, NumVertices: nv}

	var pinned []int
	if cond == Fixed {
		for i := 0; i < nv; i++ {
			if isBoundary(i) {
				pinned = append(pinned, i)
			}
		}
		if len(pinned) == 0 {
			if o.strict {
				return nil, ErrNoBoundary
			}
			o.logger.Warn("mesh has no boundary, using natural condition",
				"requested", cond.String())
			sys.Condition = Natural
		}
	}

	mass := p.MassDiagonal()
	if len(pinned) == 0 {
		sys.Free = make([]int, nv)
		for i := range sys.Free {
			sys.Free[i] = i
		}
		sys.Stiffness = p.Stiffness
		sys.Mass = mass
	} else {
		isPinned := make([]bool, nv)
		for _, i := range pinned {
			isPinned[i] = true
		}
		for i := 0; i < nv; i++ {
			if !isPinned[i] {
				sys.Free = append(sys.Free, i)
			}
		}
		if len(sys.Free) == 0 {
			return nil, fmt.Errorf("apply boundary: all %d vertices pinned: %w", nv, ErrTooFewFree)
		}
		sys.Pinned = pinned
		sys.Stiffness = p.Stiffness.Submatrix(sys.Free)
		sys.Mass = make([]float64, len(sys.Free))
		for li, gi := range sys.Free {
			sys.Mass[li] = mass[gi]
		}
	}

	sys.Trivial = trivialComponents(p.Report, sys)
	return sys, nil
}

// trivialComponents groups the free vertices of each component that has no
// pinned vertex, in order of component label
func trivialComponents(r Report, sys *System) [][]int {
	hasPin := make([]bool, r.NumComponents)
	for _, gi := range sys.Pinned {
		hasPin[r.ComponentLabels[gi]] = true
	}
	groups := make([][]int, r.NumComponents)
	for li, gi := range sys.Free {
		c := r.ComponentLabels[gi]
		if !hasPin[c] {
			groups[c] = append(groups[c], li)
		}
	}
	var trivial [][]int
	for _, g := range groups {
		if len(g) > 0 {
			trivial = append(trivial, g)
		}
	}
	return trivial
}
