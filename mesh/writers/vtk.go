// Package writers saves scalar meshes and solver output for visualization
// and analysis
package writers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/LBHarmonics/mesh"
)

// WriteVTK writes sm as legacy ASCII VTK POLYDATA with the scalars as
// POINT_DATA, stored as float or double following sm.Precision
func WriteVTK(w io.Writer, sm *mesh.ScalarMesh) error {
	typ, bits := "double", 64
	if sm.Precision == mesh.Float32 {
		typ, bits = "float", 32
	}
	format := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, bits) }

	title := strings.NewReplacer("\n", " ", "\r", " ").Replace(sm.Name)
	if title == "" {
		title = "surface"
	}
	scalarName := strings.Join(strings.Fields(sm.ScalarName), "_")
	if scalarName == "" {
		scalarName = "scalars"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n%s\nASCII\nDATASET POLYDATA\n", title)
	fmt.Fprintf(bw, "POINTS %d %s\n", len(sm.Points), typ)
	for _, p := range sm.Points {
		fmt.Fprintf(bw, "%s %s %s\n", format(p.X), format(p.Y), format(p.Z))
	}
	fmt.Fprintf(bw, "POLYGONS %d %d\n", len(sm.Faces), 4*len(sm.Faces))
	for _, f := range sm.Faces {
		fmt.Fprintf(bw, "3 %d %d %d\n", f[0], f[1], f[2])
	}
	if len(sm.Scalars) > 0 {
		if len(sm.Scalars) != len(sm.Points) {
			return fmt.Errorf("write vtk: %d scalars for %d points", len(sm.Scalars), len(sm.Points))
		}
		fmt.Fprintf(bw, "POINT_DATA %d\nSCALARS %s %s 1\nLOOKUP_TABLE default\n",
			len(sm.Points), scalarName, typ)
		for _, s := range sm.Scalars {
			bw.WriteString(format(s))
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// WriteVTKFile writes sm to path
func WriteVTKFile(path string, sm *mesh.ScalarMesh) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteVTK(f, sm)
}
