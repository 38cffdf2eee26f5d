package model

import (
	"fmt"

	filter "github.com/sno/go-estimate"
	"gonum.org/v1/gonum/mat"
)

// Transition returns a system propagation matrix for time step dt.
type Transition func(dt float64) mat.Matrix

// InitCond implements filter.InitCond
type InitCond struct {
	state *mat.VecDense
	cov   *mat.SymDense
}

// NewInitCond creates new InitCond and returns it
func NewInitCond(state mat.Vector, cov mat.Symmetric) *InitCond {
	s := &mat.VecDense{}
	s.CloneFromVec(state)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &InitCond{
		state: s,
		cov:   c,
	}
}

// State returns initial state
func (c *InitCond) State() mat.Vector {
	state := mat.NewVecDense(c.state.Len(), nil)
	state.CopyVec(c.state)

	return state
}

// Cov returns initial covariance
func (c *InitCond) Cov() mat.Symmetric {
	cov := mat.NewSymDense(c.cov.SymmetricDim(), nil)
	cov.CopySym(c.cov)

	return cov
}

// Func is a model of a linear dynamical system whose state transition
// and control matrices are arbitrary functions of time step dt.
// Both functions must be defined for dt = 0 where A(0) is expected
// to be identity and B(0) zero.
type Func struct {
	// A returns state transition matrix
	A Transition
	// B returns control matrix; nil means the system has no control input
	B Transition
}

// NewFunc creates new Func model and returns it.
// It returns error if a is nil.
func NewFunc(a, b Transition) (*Func, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: state transition function must be defined", filter.ErrInvalidArgument)
	}

	return &Func{A: a, B: b}, nil
}

// SystemMatrix returns state transition matrix for time step dt
func (f *Func) SystemMatrix(dt float64) mat.Matrix {
	if f.A == nil {
		return nil
	}

	return f.A(dt)
}

// ControlMatrix returns control matrix for time step dt.
// It returns nil if the model has no control input.
func (f *Func) ControlMatrix(dt float64) mat.Matrix {
	if f.B == nil {
		return nil
	}

	return f.B(dt)
}

// Const returns Transition which returns a copy of m regardless of time step.
func Const(m mat.Matrix) Transition {
	c := mat.DenseCopyOf(m)

	return func(float64) mat.Matrix {
		return mat.DenseCopyOf(c)
	}
}

// NewConst creates time invariant model with constant
// state transition matrix A and control matrix B.
// B can be nil if the system has no control input.
// It returns error if A is nil.
func NewConst(A, B mat.Matrix) (*Func, error) {
	if A == nil {
		return nil, fmt.Errorf("%w: state transition matrix must be defined", filter.ErrInvalidArgument)
	}

	var b Transition
	if B != nil {
		b = Const(B)
	}

	return NewFunc(Const(A), b)
}
