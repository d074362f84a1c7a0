package spectral

import (
	"errors"
	"fmt"

	"github.com/notargets/LBHarmonics/operator"
)

var (
	ErrInvalidCount = errors.New("spectral: eigenvalue count must be positive")
	ErrNotConverged = errors.New("spectral: eigensolver did not converge")
	ErrTooFewFree   = operator.ErrTooFewFree
)

// NotConvergedError reports how far the iteration got before the basis
// budget ran out
type NotConvergedError struct {
	Wanted    int
	Converged int
	BasisSize int
	Residual  float64 // worst residual of the wanted Ritz pairs
	Tolerance float64 // absolute residual tolerance
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("%v: %d of %d eigenpairs converged with %d basis vectors, worst residual %.3g > %.3g",
		ErrNotConverged, e.Converged, e.Wanted, e.BasisSize, e.Residual, e.Tolerance)
}

func (e *NotConvergedError) Unwrap() error { return ErrNotConverged }
