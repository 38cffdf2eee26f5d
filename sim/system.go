package sim

import (
	"fmt"

	filter "github.com/sno/go-estimate"
	"gonum.org/v1/gonum/mat"
)

// System is a linear plant described by its state space matrices:
//
//	A: state transition
//	B: control input, nil when the plant has no input
//	C: output, nil when the plant is not observed
//	D: feedthrough, nil when the input does not reach the output
type System struct {
	A *mat.Dense
	B *mat.Dense
	C *mat.Dense
	D *mat.Dense
}

func copyOrNil(m mat.Matrix) *mat.Dense {
	if m == nil {
		return nil
	}
	return mat.DenseCopyOf(m)
}

func newSystem(A, B, C, D mat.Matrix) System {
	return System{
		A: mat.DenseCopyOf(A),
		B: copyOrNil(B),
		C: copyOrNil(C),
		D: copyOrNil(D),
	}
}

// SystemDims returns state (nx), input (nu) and output (ny) dimensions.
// Missing matrices contribute zero dimensions.
func (s System) SystemDims() (nx, nu, ny int) {
	nx, _ = s.A.Dims()
	if s.B != nil {
		_, nu = s.B.Dims()
	}
	if s.C != nil {
		ny, _ = s.C.Dims()
	}
	return nx, nu, ny
}

// SystemMatrix returns A
func (s System) SystemMatrix() mat.Matrix { return s.A }

// ControlMatrix returns B or nil
func (s System) ControlMatrix() mat.Matrix { return orNil(s.B) }

// OutputMatrix returns C or nil
func (s System) OutputMatrix() mat.Matrix { return orNil(s.C) }

// FeedForwardMatrix returns D or nil
func (s System) FeedForwardMatrix() mat.Matrix { return orNil(s.D) }

// orNil keeps a nil *mat.Dense from turning into a non-nil mat.Matrix
func orNil(m *mat.Dense) mat.Matrix {
	if m == nil {
		return nil
	}
	return m
}

// Observe returns system output y = C*x + D*u + wn.
// u and wn may be nil. It returns error if the system has no output
// matrix or if x or u have invalid dimensions.
func (s System) Observe(x, u, wn mat.Vector) (mat.Vector, error) {
	if s.C == nil {
		return nil, fmt.Errorf("%w: system has no output matrix", filter.ErrInvalidArgument)
	}

	return s.linear(s.C, s.D, x, u, wn)
}

// linear computes m*x + n*u + w checking x and u against system dimensions.
// n, u and w can be nil. w is ignored if its length does not match the result.
func (s System) linear(m, n *mat.Dense, x, u, w mat.Vector) (mat.Vector, error) {
	nx, nu, _ := s.SystemDims()
	if x == nil || x.Len() != nx {
		return nil, fmt.Errorf("%w: invalid state vector", filter.ErrInvalidArgument)
	}

	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("%w: invalid input vector", filter.ErrInvalidArgument)
	}

	rows, _ := m.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(m, x)

	if u != nil && n != nil {
		du := mat.NewVecDense(rows, nil)
		du.MulVec(n, u)
		out.AddVec(out, du)
	}

	if w != nil && w.Len() == rows {
		out.AddVec(out, w)
	}

	return out, nil
}
