package filter

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidArgument is returned when matrix or vector shapes do not agree
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNumerical is returned when a numerical computation fails,
	// e.g. when innovation covariance can not be inverted
	ErrNumerical = errors.New("numerical error")
)

// Filter is a timestamped dynamical system filter.
type Filter interface {
	// Predict advances the filter estimate to time t with zero input
	Predict(t float64) error
	// PredictCtl advances the filter estimate to time t given input u
	PredictCtl(u mat.Vector, t float64) error
	// Update corrects the filter estimate with measurement z observed via h with noise covariance r
	Update(z mat.Vector, h mat.Matrix, r mat.Symmetric) error
}

// Model is a model of a linear dynamical system whose
// propagation matrices are functions of elapsed time dt.
type Model interface {
	// SystemMatrix returns state transition matrix for time step dt
	SystemMatrix(dt float64) mat.Matrix
	// ControlMatrix returns control input matrix for time step dt
	ControlMatrix(dt float64) mat.Matrix
}

// InitCond is initial state condition of the filter
type InitCond interface {
	// State returns initial filter state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is dynamical system filter estimate
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
	// Time returns the time the estimate is valid for
	Time() float64
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset()
}
