package mesh

import (
	"fmt"
	"math"
)

// Grid returns a flat nx by ny grid of vertices in the z=0 plane with the
// given spacing. Each cell is split into two counter-clockwise triangles
// along a diagonal that alternates direction between neighbouring cells,
// giving 2*(nx-1)*(ny-1) faces. Vertex (i,j) has index j*nx+i.
func Grid(nx, ny int, spacing float64) (*TriMesh, error) {
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("grid needs at least 2x2 vertices, got %dx%d", nx, ny)
	}
	points := make([][3]float32, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			points = append(points, [3]float32{
				float32(float64(i) * spacing), float32(float64(j) * spacing), 0,
			})
		}
	}
	faces := make([][3]int, 0, 2*(nx-1)*(ny-1))
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			v00 := j*nx + i
			v10 := v00 + 1
			v01 := v00 + nx
			v11 := v01 + 1
			if (i+j)%2 == 0 {
				faces = append(faces, [3]int{v00, v10, v11}, [3]int{v00, v11, v01})
			} else {
				faces = append(faces, [3]int{v00, v10, v01}, [3]int{v10, v11, v01})
			}
		}
	}
	return NewTriMesh(points, faces)
}

// Tetrahedron returns the closed regular tetrahedron inscribed in the cube
// [-1,1]^3 with outward oriented faces
func Tetrahedron() *TriMesh {
	points := [][3]float32{
		{1, 1, 1},
		{1, -1, -1},
		{-1, 1, -1},
		{-1, -1, 1},
	}
	faces := [][3]int{
		{0, 1, 2},
		{0, 3, 1},
		{0, 2, 3},
		{1, 3, 2},
	}
	m, err := NewTriMesh(points, faces)
	if err != nil {
		panic(err)
	}
	return m
}

// Icosahedron returns the closed regular icosahedron with vertices on the
// unit sphere
func Icosahedron() *TriMesh {
	points, faces := icosahedron()
	m, err := NewTriMesh(points, faces)
	if err != nil {
		panic(err)
	}
	return m
}

func icosahedron() ([][3]float32, [][3]int) {
	t := (1 + math.Sqrt(5)) / 2
	raw := [][3]float64{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	points := make([][3]float32, len(raw))
	for i, p := range raw {
		points[i] = unit(p)
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return points, faces
}

// Icosphere subdivides the icosahedron level times, splitting every
// triangle in four and projecting new vertices onto the unit sphere.
// Level 0 is the icosahedron (12 vertices), each level multiplies the face
// count by four.
func Icosphere(level int) (*TriMesh, error) {
	if level < 0 {
		return nil, fmt.Errorf("icosphere level must be >= 0, got %d", level)
	}
	points, faces := icosahedron()
	for l := 0; l < level; l++ {
		points, faces = subdivide(points, faces)
	}
	return NewTriMesh(points, faces)
}

func subdivide(points [][3]float32, faces [][3]int) ([][3]float32, [][3]int) {
	midpoints := make(map[Edge]int)
	mid := func(i, j int) int {
		e := NewEdge(i, j)
		if idx, ok := midpoints[e]; ok {
			return idx
		}
		a, b := points[i], points[j]
		points = append(points, unit([3]float64{
			float64(a[0]) + float64(b[0]),
			float64(a[1]) + float64(b[1]),
			float64(a[2]) + float64(b[2]),
		}))
		midpoints[e] = len(points) - 1
		return len(points) - 1
	}
	out := make([][3]int, 0, 4*len(faces))
	for _, f := range faces {
		a := mid(f[0], f[1])
		b := mid(f[1], f[2])
		c := mid(f[2], f[0])
		out = append(out,
			[3]int{f[0], a, c},
			[3]int{f[1], b, a},
			[3]int{f[2], c, b},
			[3]int{a, b, c},
		)
	}
	return points, out
}

func unit(p [3]float64) [3]float32 {
	n := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
	return [3]float32{float32(p[0] / n), float32(p[1] / n), float32(p[2] / n)}
}

// Merge returns the disjoint union of two surfaces, the vertices of b
// renumbered after those of a
func Merge(a, b *TriMesh) (*TriMesh, error) {
	points := make([][3]float32, 0, len(a.Points)+len(b.Points))
	points = append(points, a.Points...)
	points = append(points, b.Points...)
	faces := make([][3]int, 0, len(a.Faces)+len(b.Faces))
	faces = append(faces, a.Faces...)
	off := len(a.Points)
	for _, f := range b.Faces {
		faces = append(faces, [3]int{f[0] + off, f[1] + off, f[2] + off})
	}
	return NewTriMesh(points, faces)
}

// Translate returns a copy of m shifted by (dx, dy, dz)
func Translate(m *TriMesh, dx, dy, dz float32) *TriMesh {
	points := make([][3]float32, len(m.Points))
	for i, p := range m.Points {
		points[i] = [3]float32{p[0] + dx, p[1] + dy, p[2] + dz}
	}
	faces := make([][3]int, len(m.Faces))
	copy(faces, m.Faces)
	return &TriMesh{Points: points, Faces: faces, edges: m.edges, boundary: m.boundary}
}
