package readers

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/notargets/LBHarmonics/mesh"
)

const (
	stlHeaderSize = 80
	stlFacetSize  = 50
)

// ReadSTL parses binary or ASCII STL data. STL stores every facet with its
// own corners, so corners with identical coordinates are welded into one
// vertex.
func ReadSTL(data []byte) (*mesh.TriMesh, error) {
	if len(data) >= stlHeaderSize+4 {
		n := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
		if len(data) == stlHeaderSize+4+n*stlFacetSize {
			return readBinarySTL(data[stlHeaderSize+4:], n)
		}
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")) {
		return readASCIISTL(data)
	}
	return nil, fmt.Errorf("%w: not an STL file", ErrUnsupportedFormat)
}

type welder struct {
	index  map[[3]float32]int
	points [][3]float32
	faces  [][3]int
}

func (w *welder) vertex(p [3]float32) int {
	// -0 and 0 are the same point
	for c := range p {
		if p[c] == 0 {
			p[c] = 0
		}
	}
	if id, ok := w.index[p]; ok {
		return id
	}
	id := len(w.points)
	w.index[p] = id
	w.points = append(w.points, p)
	return id
}

func (w *welder) facet(corners [3][3]float32) {
	var f [3]int
	for c, p := range corners {
		f[c] = w.vertex(p)
	}
	// Facets collapsed by welding have no area and no orientation
	if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
		return
	}
	w.faces = append(w.faces, f)
}

func (w *welder) mesh() (*mesh.TriMesh, error) {
	if len(w.faces) == 0 {
		return nil, ErrNoSurface
	}
	return mesh.NewTriMesh(w.points, w.faces)
}

func readBinarySTL(data []byte, n int) (*mesh.TriMesh, error) {
	w := &welder{index: make(map[[3]float32]int)}
	for i := 0; i < n; i++ {
		rec := data[i*stlFacetSize:]
		var corners [3][3]float32
		for c := 0; c < 3; c++ {
			for k := 0; k < 3; k++ {
				off := 12 + 12*c + 4*k // skip the normal
				corners[c][k] = math.Float32frombits(binary.LittleEndian.Uint32(rec[off:]))
			}
		}
		w.facet(corners)
	}
	return w.mesh()
}

func readASCIISTL(data []byte) (*mesh.TriMesh, error) {
	w := &welder{index: make(map[[3]float32]int)}
	sc := bufio.NewScanner(bytes.NewReader(data))
	var (
		corners [3][3]float32
		nc      int
		line    int
	)
	for sc.Scan() {
		line++
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "outer":
			nc = 0
		case "vertex":
			if len(f) != 4 || nc >= 3 {
				return nil, fmt.Errorf("line %d: bad vertex", line)
			}
			for k := 0; k < 3; k++ {
				v, err := strconv.ParseFloat(f[k+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				corners[nc][k] = float32(v)
			}
			nc++
		case "endloop":
			if nc != 3 {
				return nil, fmt.Errorf("line %d: facet with %d vertices", line, nc)
			}
			w.facet(corners)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return w.mesh()
}
