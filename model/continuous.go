package model

import (
	"fmt"

	"github.com/milosgajdos/matrix"
	filter "github.com/sno/go-estimate"
	"gonum.org/v1/gonum/mat"
)

// Continuous is a model of a linear, continuous-time, dynamical system
//
//	dx/dt = A*x + B*u
//
// which is discretized for every requested time step dt.
type Continuous struct {
	// A is continuous-time system matrix
	A *mat.Dense
	// B is continuous-time control matrix
	B *mat.Dense
	// aInv is inverse of A; nil if A is singular
	aInv *mat.Dense
	// n is number of integration steps used when A is singular
	n int
}

// NewContinuous creates a linear continuous-time model and returns it.
// B can be nil if the system has no control input.
// It returns error if A is nil or not square or if B does not have as many rows as A.
func NewContinuous(A, B mat.Matrix) (*Continuous, error) {
	if A == nil {
		return nil, fmt.Errorf("%w: system matrix must be defined for a model", filter.ErrInvalidArgument)
	}

	rows, cols := A.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%w: invalid system matrix dimensions: [%d x %d]", filter.ErrInvalidArgument, rows, cols)
	}

	c := &Continuous{
		A: mat.DenseCopyOf(A),
		n: 100,
	}

	if B != nil {
		if br, bc := B.Dims(); br != rows {
			return nil, fmt.Errorf("%w: invalid control matrix dimensions: [%d x %d]", filter.ErrInvalidArgument, br, bc)
		}
		c.B = mat.DenseCopyOf(B)
	}

	aInv := &mat.Dense{}
	if err := aInv.Inverse(c.A); err == nil {
		c.aInv = aInv
	}

	return c, nil
}

// SystemMatrix returns discrete-time state transition matrix exp(A*dt).
func (c *Continuous) SystemMatrix(dt float64) mat.Matrix {
	scaled := &mat.Dense{}
	scaled.Scale(dt, c.A)

	ad := &mat.Dense{}
	ad.Exp(scaled)

	return ad
}

// ControlMatrix returns discrete-time control matrix for time step dt.
// See Discrete-Time Control Systems by Katsuhiko Ogata, Eq. (5-74).
// It returns nil if the model has no control input.
func (c *Continuous) ControlMatrix(dt float64) mat.Matrix {
	if c.B == nil {
		return nil
	}

	nx, _ := c.A.Dims()

	// Bd(dt) = (exp(A*dt) - I)*inv(A)*B
	if c.aInv != nil {
		eye, _ := matrix.NewDenseValIdentity(nx, 1.0)
		aux := &mat.Dense{}
		aux.Sub(c.SystemMatrix(dt), eye)
		aux.Mul(aux, c.aInv)

		bd := &mat.Dense{}
		bd.Mul(aux, c.B)

		return bd
	}

	// A is singular: Bd = integrate(exp(A*t)dt, 0, dt) * B
	// using trapezoidal rule over c.n intervals
	sum := mat.NewDense(nx, nx, nil)
	h := dt / float64(c.n)
	scaled := &mat.Dense{}
	aux := &mat.Dense{}
	for i := 0; i <= c.n; i++ {
		scaled.Scale(h*float64(i), c.A)
		aux.Exp(scaled)
		w := h
		if i == 0 || i == c.n {
			w = h / 2
		}
		aux.Scale(w, aux)
		sum.Add(sum, aux)
	}

	bd := &mat.Dense{}
	bd.Mul(sum, c.B)

	return bd
}
