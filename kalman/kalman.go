package kalman

import (
	filter "github.com/sno/go-estimate"
	"gonum.org/v1/gonum/mat"
)

// Kalman is timestamped Kalman Filter
type Kalman interface {
	// filter.Filter is dynamical system filter
	filter.Filter
	// State returns Kalman filter state estimate
	State() mat.Vector
	// Cov returns Kalman filter state covariance
	Cov() mat.Symmetric
	// Gain returns Kalman filter gain
	Gain() mat.Matrix
	// Timestamp returns the time of the last prediction
	Timestamp() float64
}
