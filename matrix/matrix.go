package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Symmetrize returns symmetric matrix (m + m')/2.
// It returns error if m is not a square matrix.
func Symmetrize(m mat.Matrix) (*mat.SymDense, error) {
	rows, cols := m.Dims()
	if rows != cols {
		return nil, fmt.Errorf("matrix not square: [%d x %d]", rows, cols)
	}

	sym := mat.NewSymDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := i; j < cols; j++ {
			sym.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}

	return sym, nil
}

// IsSymmetric returns true if m is a square matrix whose
// elements mirrored around the diagonal differ by at most tol.
func IsSymmetric(m mat.Matrix, tol float64) bool {
	rows, cols := m.Dims()
	if rows != cols {
		return false
	}

	for i := 0; i < rows; i++ {
		for j := i + 1; j < cols; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return false
			}
		}
	}

	return true
}
