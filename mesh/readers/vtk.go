package readers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/notargets/LBHarmonics/mesh"
)

// VTK cell types
const (
	vtkTriangle = 5
	vtkTetra    = 10
)

type tokenizer struct {
	sc   *bufio.Scanner
	line int
}

func newTokenizer(r io.Reader) *tokenizer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &tokenizer{sc: sc}
}

// nextLine returns the next non-empty line
func (t *tokenizer) nextLine() (string, error) {
	for t.sc.Scan() {
		t.line++
		if l := strings.TrimSpace(t.sc.Text()); l != "" {
			return l, nil
		}
	}
	if err := t.sc.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}

// fields reads whitespace separated values across lines until n are read
func (t *tokenizer) fields(n int) ([]string, error) {
	out := make([]string, 0, n)
	for len(out) < n {
		l, err := t.nextLine()
		if err != nil {
			return nil, fmt.Errorf("line %d: want %d values, have %d: %w", t.line, n, len(out), err)
		}
		out = append(out, strings.Fields(l)...)
	}
	if len(out) != n {
		return nil, fmt.Errorf("line %d: want %d values, have %d", t.line, n, len(out))
	}
	return out, nil
}

func (t *tokenizer) ints(n int) ([]int, error) {
	f, err := t.fields(n)
	if err != nil {
		return nil, err
	}
	v := make([]int, n)
	for i, s := range f {
		if v[i], err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("line %d: %w", t.line, err)
		}
	}
	return v, nil
}

// ReadVTK parses a legacy ASCII VTK file holding POLYDATA triangles or an
// UNSTRUCTURED_GRID of triangles or tetrahedra
func ReadVTK(r io.Reader) (*mesh.TriMesh, error) {
	t := newTokenizer(r)
	header, err := t.nextLine()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.ToLower(header), "# vtk datafile") {
		return nil, fmt.Errorf("%w: not a legacy VTK file", ErrUnsupportedFormat)
	}
	if _, err = t.nextLine(); err != nil { // title
		return nil, err
	}
	enc, err := t.nextLine()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(enc, "ASCII") {
		return nil, fmt.Errorf("%w: VTK encoding %s", ErrUnsupportedFormat, enc)
	}
	ds, err := t.nextLine()
	if err != nil {
		return nil, err
	}
	dataset := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(ds, "DATASET")))
	if dataset != "POLYDATA" && dataset != "UNSTRUCTURED_GRID" {
		return nil, fmt.Errorf("%w: VTK dataset %s", ErrUnsupportedFormat, dataset)
	}

	var (
		points   [][]float64
		elements [][]int
		cellType []int
	)
	for {
		l, err := t.nextLine()
		if err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		kw := strings.Fields(l)
		switch strings.ToUpper(kw[0]) {
		case "POINTS":
			if len(kw) < 2 {
				return nil, fmt.Errorf("line %d: POINTS without count", t.line)
			}
			n, err := strconv.Atoi(kw[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", t.line, err)
			}
			vals, err := t.fields(3 * n)
			if err != nil {
				return nil, err
			}
			points = make([][]float64, n)
			for i := range points {
				points[i] = make([]float64, 3)
				for c := 0; c < 3; c++ {
					if points[i][c], err = strconv.ParseFloat(vals[3*i+c], 64); err != nil {
						return nil, fmt.Errorf("point %d: %w", i, err)
					}
				}
			}
		case "POLYGONS", "CELLS":
			if len(kw) < 3 {
				return nil, fmt.Errorf("line %d: %s needs a count and a size", t.line, kw[0])
			}
			n, err1 := strconv.Atoi(kw[1])
			size, err2 := strconv.Atoi(kw[2])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("line %d: bad %s header", t.line, kw[0])
			}
			vals, err := t.ints(size)
			if err != nil {
				return nil, err
			}
			for k, c := 0, 0; c < n; c++ {
				if k >= len(vals) || k+1+vals[k] > len(vals) {
					return nil, fmt.Errorf("%s: cell %d overruns the list", kw[0], c)
				}
				nv := vals[k]
				if strings.EqualFold(kw[0], "POLYGONS") && nv != 3 {
					return nil, fmt.Errorf("%w: polygon %d has %d vertices", ErrUnsupportedFormat, c, nv)
				}
				elements = append(elements, vals[k+1:k+1+nv])
				k += 1 + nv
			}
		case "CELL_TYPES":
			if len(kw) < 2 {
				return nil, fmt.Errorf("line %d: CELL_TYPES without count", t.line)
			}
			n, err := strconv.Atoi(kw[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", t.line, err)
			}
			if cellType, err = t.ints(n); err != nil {
				return nil, err
			}
		case "POINT_DATA", "CELL_DATA":
			// Attributes are not part of the surface
			return vtkSurface(points, elements, cellType)
		case "VERTICES", "LINES", "TRIANGLE_STRIPS":
			return nil, fmt.Errorf("%w: VTK %s section", ErrUnsupportedFormat, kw[0])
		}
	}
	return vtkSurface(points, elements, cellType)
}

func vtkSurface(points [][]float64, elements [][]int, cellType []int) (*mesh.TriMesh, error) {
	if cellType != nil {
		if len(cellType) != len(elements) {
			return nil, fmt.Errorf("have %d cell types for %d cells", len(cellType), len(elements))
		}
		for c, ct := range cellType {
			if ct != vtkTriangle && ct != vtkTetra {
				return nil, fmt.Errorf("%w: VTK cell type %d in cell %d", ErrUnsupportedFormat, ct, c)
			}
		}
	}
	return ExtractSurface(points, elements)
}
