package sim

import (
	"fmt"

	filter "github.com/sno/go-estimate"
	"gonum.org/v1/gonum/mat"
)

// Discrete is a basic model of a linear, discrete-time, dynamical system
type Discrete struct {
	System
}

// NewDiscrete creates a linear discrete-time model based on the control theory equations.
//
//	x[n+1] = A*x[n] + B*u[n] + wd[n]
//	y[n] = C*x[n] + D*u[n] + wn[n]
//
// It returns error if the matrix dimensions don't agree.
func NewDiscrete(A, B, C, D mat.Matrix) (*Discrete, error) {
	if A == nil {
		return nil, fmt.Errorf("%w: system matrix must be defined for a model", filter.ErrInvalidArgument)
	}

	nx, cols := A.Dims()
	if nx != cols {
		return nil, fmt.Errorf("%w: invalid system matrix dimensions: [%d x %d]", filter.ErrInvalidArgument, nx, cols)
	}

	if B != nil {
		if rows, cols := B.Dims(); rows != nx {
			return nil, fmt.Errorf("%w: invalid control matrix dimensions: [%d x %d]", filter.ErrInvalidArgument, rows, cols)
		}
	}

	if C != nil {
		if rows, cols := C.Dims(); cols != nx {
			return nil, fmt.Errorf("%w: invalid output matrix dimensions: [%d x %d]", filter.ErrInvalidArgument, rows, cols)
		}
	}

	if D != nil {
		if C == nil || B == nil {
			return nil, fmt.Errorf("%w: feedthrough matrix requires output and control matrices", filter.ErrInvalidArgument)
		}
		ny, _ := C.Dims()
		_, nu := B.Dims()
		if rows, cols := D.Dims(); rows != ny || cols != nu {
			return nil, fmt.Errorf("%w: invalid feedthrough matrix dimensions: [%d x %d]", filter.ErrInvalidArgument, rows, cols)
		}
	}

	return &Discrete{System: newSystem(A, B, C, D)}, nil
}

// Propagate returns the next state x[n+1] = A*x[n] + B*u[n] + wd[n].
// u and wd may be nil.
func (d *Discrete) Propagate(x, u, wd mat.Vector) (mat.Vector, error) {
	return d.linear(d.A, d.B, x, u, wd)
}
