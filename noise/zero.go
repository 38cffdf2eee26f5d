package noise

import (
	"fmt"

	filter "github.com/sno/go-estimate"
	"gonum.org/v1/gonum/mat"
)

// Zero is noise with zero mean and zero covariance.
// Every sample is a zero vector.
type Zero struct {
	n int
}

// NewZero returns zero noise of dimension n.
// It returns error if n is non-positive.
func NewZero(n int) (*Zero, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: invalid noise dimension: %d", filter.ErrInvalidArgument, n)
	}

	return &Zero{n: n}, nil
}

// Sample returns zero vector
func (z *Zero) Sample() mat.Vector { return mat.NewVecDense(z.n, nil) }

// Cov returns zero covariance matrix
func (z *Zero) Cov() mat.Symmetric { return mat.NewSymDense(z.n, nil) }

// Mean returns zero mean
func (z *Zero) Mean() []float64 { return make([]float64, z.n) }

// Reset is a no-op
func (z *Zero) Reset() {}

// String implements the Stringer interface.
func (z *Zero) String() string {
	return fmt.Sprintf("Zero{\nDim=%d\nMean=%v\n}", z.n, z.Mean())
}
