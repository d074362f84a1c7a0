package writers

import (
	"fmt"

	"github.com/kshedden/gonpy"
)

// WriteNPY writes a row-major rows x cols matrix as a numpy .npy file
func WriteNPY(path string, rows, cols int, data []float64) error {
	if len(data) != rows*cols {
		return fmt.Errorf("write npy: %d values for a %dx%d matrix", len(data), rows, cols)
	}
	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("write npy: %w", err)
	}
	w.Shape = []int{rows, cols}
	w.Version = 2
	if err = w.WriteFloat64(data); err != nil {
		return fmt.Errorf("write npy %s: %w", path, err)
	}
	return nil
}
