package readers

import (
	"fmt"
	"sort"

	"github.com/notargets/LBHarmonics/mesh"
	gocfdreaders "github.com/notargets/gocfd/DG3D/mesh/readers"
	"gonum.org/v1/gonum/spatial/r3"
)

// tetFaces lists the local faces of a tetrahedron with the local vertex
// opposite each
var tetFaces = [4]struct {
	nodes    [3]int
	opposite int
}{
	{[3]int{0, 1, 2}, 3},
	{[3]int{0, 1, 3}, 2},
	{[3]int{0, 2, 3}, 1},
	{[3]int{1, 2, 3}, 0},
}

// readVolumeMesh loads a gocfd supported mesh and extracts its surface
func readVolumeMesh(path string) (*mesh.TriMesh, error) {
	msh, err := gocfdreaders.ReadMeshFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := ExtractSurface(msh.Vertices, msh.EtoV)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ExtractSurface builds a triangle surface from element connectivity. Rows
// of three vertices are triangles. When tetrahedra (rows of four) are
// present only their boundary faces are used, oriented with normals
// pointing out of the volume, and triangles are taken to be boundary
// markers and ignored. Vertices no face refers to are dropped.
func ExtractSurface(points [][]float64, elements [][]int) (*mesh.TriMesh, error) {
	var tris, tets [][]int
	for e, el := range elements {
		for _, v := range el {
			if v < 0 || v >= len(points) {
				return nil, fmt.Errorf("element %d: vertex %d out of range", e, v)
			}
		}
		switch len(el) {
		case 3:
			tris = append(tris, el)
		case 4:
			tets = append(tets, el)
		}
	}

	var faces [][3]int
	if len(tets) > 0 {
		faces = boundaryFaces(points, tets)
	} else {
		for _, el := range tris {
			faces = append(faces, [3]int{el[0], el[1], el[2]})
		}
	}
	if len(faces) == 0 {
		return nil, ErrNoSurface
	}
	return compact(points, faces)
}

func position(p []float64) r3.Vec {
	var v r3.Vec
	if len(p) > 0 {
		v.X = p[0]
	}
	if len(p) > 1 {
		v.Y = p[1]
	}
	if len(p) > 2 {
		v.Z = p[2]
	}
	return v
}

// boundaryFaces returns the tetrahedron faces that belong to exactly one
// element, in element order
func boundaryFaces(points [][]float64, tets [][]int) [][3]int {
	key := func(f [3]int) [3]int {
		sort.Ints(f[:])
		return f
	}
	count := make(map[[3]int]int)
	for _, el := range tets {
		for _, tf := range tetFaces {
			f := [3]int{el[tf.nodes[0]], el[tf.nodes[1]], el[tf.nodes[2]]}
			count[key(f)]++
		}
	}

	var faces [][3]int
	for _, el := range tets {
		for _, tf := range tetFaces {
			f := [3]int{el[tf.nodes[0]], el[tf.nodes[1]], el[tf.nodes[2]]}
			if count[key(f)] != 1 {
				continue
			}
			a, b, c := position(points[f[0]]), position(points[f[1]]), position(points[f[2]])
			d := position(points[el[tf.opposite]])
			n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
			if r3.Dot(n, r3.Sub(d, a)) > 0 {
				f[1], f[2] = f[2], f[1]
			}
			faces = append(faces, f)
		}
	}
	return faces
}

// compact drops unreferenced vertices, keeping the others in their
// original order
func compact(points [][]float64, faces [][3]int) (*mesh.TriMesh, error) {
	used := make([]bool, len(points))
	for _, face := range faces {
		for _, v := range face {
			used[v] = true
		}
	}
	newID := make([]int, len(points))
	var pts [][3]float32
	for v, ok := range used {
		if !ok {
			continue
		}
		newID[v] = len(pts)
		p := position(points[v])
		pts = append(pts, [3]float32{float32(p.X), float32(p.Y), float32(p.Z)})
	}
	out := make([][3]int, len(faces))
	for f, face := range faces {
		for c, v := range face {
			out[f][c] = newID[v]
		}
	}
	return mesh.NewTriMesh(pts, out)
}
