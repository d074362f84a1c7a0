package mesh

import (
	"fmt"
	"sort"
)

// Edge is an undirected mesh edge stored with A < B
type Edge struct {
	A, B int
}

// NewEdge returns the canonical (sorted) edge between two vertices
func NewEdge(i, j int) Edge {
	if i > j {
		i, j = j, i
	}
	return Edge{A: i, B: j}
}

// EdgeConnector holds edge to face connectivity for a triangle surface
type EdgeConnector struct {
	// Mesh dimensions
	NumVertices int
	NumFaces    int

	// Unique edges in order of first appearance
	Edges []Edge
	// EdgeFaces[e] lists the faces incident to Edges[e], in face order
	EdgeFaces [][]int

	edgeIndex map[Edge]int
	directed  map[[2]int]int // directed edge -> owning face
}

// NewEdgeConnector builds edge connectivity from triangle faces. It returns a
// *FaceError when a face references a vertex out of range, repeats a vertex,
// or makes an edge non-manifold (a third incident face, or a directed edge
// already used by another face).
func NewEdgeConnector(numVertices int, faces [][3]int) (*EdgeConnector, error) {
	// Validate inputs
	if numVertices <= 0 || len(faces) == 0 {
		return nil, fmt.Errorf("invalid dimensions: vertices=%d, faces=%d: %w",
			numVertices, len(faces), ErrEmptyMesh)
	}

	ec := &EdgeConnector{
		NumVertices: numVertices,
		NumFaces:    len(faces),
		Edges:       make([]Edge, 0, 3*len(faces)/2+1),
		EdgeFaces:   make([][]int, 0, 3*len(faces)/2+1),
		edgeIndex:   make(map[Edge]int, 3*len(faces)/2+1),
		directed:    make(map[[2]int]int, 3*len(faces)),
	}

	for f, tri := range faces {
		if err := checkFace(f, tri, numVertices); err != nil {
			return nil, err
		}
		for k := 0; k < 3; k++ {
			i, j := tri[k], tri[(k+1)%3]

			// Orientation: a directed edge may belong to one face only
			if _, used := ec.directed[[2]int{i, j}]; used {
				return nil, &FaceError{Face: f, Indices: tri,
					Err: fmt.Errorf("directed edge (%d,%d) repeated: %w", i, j, ErrNonManifold)}
			}
			ec.directed[[2]int{i, j}] = f

			e := NewEdge(i, j)
			idx, ok := ec.edgeIndex[e]
			if !ok {
				idx = len(ec.Edges)
				ec.edgeIndex[e] = idx
				ec.Edges = append(ec.Edges, e)
				ec.EdgeFaces = append(ec.EdgeFaces, make([]int, 0, 2))
			}
			if len(ec.EdgeFaces[idx]) == 2 {
				return nil, &FaceError{Face: f, Indices: tri,
					Err: fmt.Errorf("edge (%d,%d) has more than two faces: %w", e.A, e.B, ErrNonManifold)}
			}
			ec.EdgeFaces[idx] = append(ec.EdgeFaces[idx], f)
		}
	}

	return ec, nil
}

func checkFace(f int, tri [3]int, numVertices int) error {
	for _, v := range tri {
		if v < 0 || v >= numVertices {
			return &FaceError{Face: f, Indices: tri,
				Err: fmt.Errorf("vertex %d not in [0,%d): %w", v, numVertices, ErrVertexIndex)}
		}
	}
	if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
		return &FaceError{Face: f, Indices: tri, Err: ErrRepeatedVertex}
	}
	return nil
}

// EdgeFacesOf returns the faces incident to the edge (i,j), nil if the edge
// does not exist
func (ec *EdgeConnector) EdgeFacesOf(i, j int) []int {
	idx, ok := ec.edgeIndex[NewEdge(i, j)]
	if !ok {
		return nil
	}
	return ec.EdgeFaces[idx]
}

// BoundaryEdges returns the edges that belong to exactly one face, sorted
func (ec *EdgeConnector) BoundaryEdges() []Edge {
	var edges []Edge
	for e, faces := range ec.EdgeFaces {
		if len(faces) == 1 {
			edges = append(edges, ec.Edges[e])
		}
	}
	sort.Slice(edges, func(a, b int) bool {
		if edges[a].A != edges[b].A {
			return edges[a].A < edges[b].A
		}
		return edges[a].B < edges[b].B
	})
	return edges
}

// BoundaryVertices flags every vertex lying on a boundary edge
func (ec *EdgeConnector) BoundaryVertices() []bool {
	onBoundary := make([]bool, ec.NumVertices)
	for e, faces := range ec.EdgeFaces {
		if len(faces) == 1 {
			onBoundary[ec.Edges[e].A] = true
			onBoundary[ec.Edges[e].B] = true
		}
	}
	return onBoundary
}

// Verify checks the connectivity is internally consistent
func (ec *EdgeConnector) Verify() error {
	// Verify 1: every edge has one or two faces
	for e, faces := range ec.EdgeFaces {
		if len(faces) < 1 || len(faces) > 2 {
			return fmt.Errorf("edge %v has %d faces", ec.Edges[e], len(faces))
		}
	}

	// Verify 2: each face contributes exactly three directed edges
	if len(ec.directed) != 3*ec.NumFaces {
		return fmt.Errorf("directed edge count %d != 3*faces %d", len(ec.directed), 3*ec.NumFaces)
	}

	// Verify 3: incidence count, sum over edges of faces == 3*faces
	total := 0
	for _, faces := range ec.EdgeFaces {
		total += len(faces)
	}
	if total != 3*ec.NumFaces {
		return fmt.Errorf("conservation error: edge incidences %d != 3*faces %d", total, 3*ec.NumFaces)
	}

	return nil
}
