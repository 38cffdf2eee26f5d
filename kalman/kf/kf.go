package kf

import (
	"fmt"

	gomatrix "github.com/milosgajdos/matrix"
	filter "github.com/sno/go-estimate"
	"github.com/sno/go-estimate/estimate"
	"github.com/sno/go-estimate/matrix"
	"github.com/sno/go-estimate/model"
	"gonum.org/v1/gonum/mat"
)

// Observation is a single linear measurement of the system state:
// z = H*x + v, where v ~ N(0, R)
type Observation struct {
	// Z is measurement vector
	Z mat.Vector
	// H maps system state to measurement space
	H mat.Matrix
	// R is measurement noise covariance
	R mat.Symmetric
}

// Option configures KF
type Option func(*KF)

// WithJoseph makes KF use the Joseph form of covariance update
//
//	P = (I-K*H)*P*(I-K*H)' + K*R*K'
//
// instead of the default P = (I-K*H)*P.
func WithJoseph() Option {
	return func(k *KF) {
		k.joseph = true
	}
}

// KF is a timestamped Kalman Filter whose state transition
// and control matrices are functions of elapsed time.
//
// KF is not safe for concurrent use.
type KF struct {
	// m is KF system model
	m filter.Model
	// q is process noise covariance
	q *mat.SymDense
	// x is the state estimate
	x *mat.VecDense
	// p is the state estimate covariance matrix
	p *mat.SymDense
	// t is the timestamp of the last prediction
	t float64
	// nx is state dimension
	nx int
	// nu is control input dimension
	nu int
	// inn is the last innovation vector
	inn *mat.VecDense
	// k is the last Kalman gain
	k *mat.Dense
	// joseph enables Joseph form covariance update
	joseph bool
}

// New creates new KF and returns it.
// It accepts the following parameters:
//   - m:    system model which provides state transition and control matrices for a time step
//   - init: initial condition of the filter
//   - q:    process noise covariance; nil means no process noise
//   - t0:   initial timestamp
//
// It returns error if either of the following conditions is met:
//   - model or initial condition is nil
//   - initial state covariance, process noise covariance or model matrices
//     evaluated at zero time step don't match the initial state dimension
func New(m filter.Model, init filter.InitCond, q mat.Symmetric, t0 float64, opts ...Option) (*KF, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: invalid model: %v", filter.ErrInvalidArgument, m)
	}

	if init == nil {
		return nil, fmt.Errorf("%w: invalid initial condition: %v", filter.ErrInvalidArgument, init)
	}

	state := init.State()
	if state == nil || state.Len() == 0 {
		return nil, fmt.Errorf("%w: invalid initial state: %v", filter.ErrInvalidArgument, state)
	}
	nx := state.Len()

	cov := init.Cov()
	if cov == nil || cov.SymmetricDim() != nx {
		return nil, fmt.Errorf("%w: invalid initial covariance dimensions", filter.ErrInvalidArgument)
	}

	if q != nil && q.SymmetricDim() != nx {
		return nil, fmt.Errorf("%w: invalid process noise dimension: %d != %d", filter.ErrInvalidArgument, q.SymmetricDim(), nx)
	}

	if _, err := checkSystem(m.SystemMatrix(0), nx); err != nil {
		return nil, err
	}

	nu, err := checkControl(m.ControlMatrix(0), nx, -1)
	if err != nil {
		return nil, err
	}

	x := mat.NewVecDense(nx, nil)
	x.CopyVec(state)

	p := mat.NewSymDense(nx, nil)
	p.CopySym(cov)

	qc := mat.NewSymDense(nx, nil)
	if q != nil {
		qc.CopySym(q)
	}

	k := &KF{
		m:   m,
		q:   qc,
		x:   x,
		p:   p,
		t:   t0,
		nx:  nx,
		nu:  nu,
		inn: &mat.VecDense{},
		k:   &mat.Dense{},
	}

	for _, opt := range opts {
		opt(k)
	}

	return k, nil
}

// NewConst creates new KF for time invariant system with constant
// state transition matrix A and control matrix B and returns it.
// B can be nil if the system has no control input.
// See New for the remaining parameters and the returned errors.
func NewConst(A, B mat.Matrix, q mat.Symmetric, x0 mat.Vector, p0 mat.Symmetric, t0 float64, opts ...Option) (*KF, error) {
	m, err := model.NewConst(A, B)
	if err != nil {
		return nil, err
	}

	if x0 == nil || p0 == nil {
		return nil, fmt.Errorf("%w: initial state and covariance must be defined", filter.ErrInvalidArgument)
	}

	if x0.Len() != p0.SymmetricDim() {
		return nil, fmt.Errorf("%w: invalid initial condition dimensions: %d != %d", filter.ErrInvalidArgument, x0.Len(), p0.SymmetricDim())
	}

	return New(m, model.NewInitCond(x0, p0), q, t0, opts...)
}

// Predict advances the state estimate to time t with zero control input.
func (k *KF) Predict(t float64) error {
	return k.PredictCtl(nil, t)
}

// PredictCtl advances the state estimate to time t given control input u.
// Nil u is treated as zero control input.
// Time step is calculated from the timestamp of the last prediction and is
// allowed to be negative. Constant process noise is added on every prediction,
// including a prediction to the timestamp of the last one.
// It returns error if u or the model matrices for the time step have invalid
// dimensions, in which case the filter is left unchanged.
func (k *KF) PredictCtl(u mat.Vector, t float64) error {
	if u != nil && u.Len() != k.nu {
		return fmt.Errorf("%w: invalid input vector length: %d != %d", filter.ErrInvalidArgument, u.Len(), k.nu)
	}

	dt := t - k.t

	a, err := checkSystem(k.m.SystemMatrix(dt), k.nx)
	if err != nil {
		return err
	}

	b := k.m.ControlMatrix(dt)
	if _, err := checkControl(b, k.nx, k.nu); err != nil {
		return err
	}

	// x = A*x + B*u
	x := mat.NewVecDense(k.nx, nil)
	x.MulVec(a, k.x)
	if u != nil && b != nil {
		bu := mat.NewVecDense(k.nx, nil)
		bu.MulVec(b, u)
		x.AddVec(x, bu)
	}

	// P = A*P*A' + Q
	// Q is constant: it does not scale with dt
	ap := &mat.Dense{}
	ap.Mul(a, k.p)
	cov := &mat.Dense{}
	cov.Mul(ap, a.T())
	cov.Add(cov, k.q)

	p, err := matrix.Symmetrize(cov)
	if err != nil {
		return fmt.Errorf("%w: %v", filter.ErrNumerical, err)
	}

	k.x = x
	k.p = p
	k.t = t

	return nil
}

// Update corrects the state estimate with measurement z given observation matrix h
// and measurement noise covariance r. Measurements of any dimension are supported.
// Update does not advance time: call Predict first if z was sampled after the last prediction.
// It returns error if the arguments have invalid dimensions or if the innovation
// covariance can not be inverted, in which case the filter is left unchanged.
func (k *KF) Update(z mat.Vector, h mat.Matrix, r mat.Symmetric) error {
	if z == nil || h == nil || r == nil {
		return fmt.Errorf("%w: measurement, observation matrix and noise must be defined", filter.ErrInvalidArgument)
	}

	ny := z.Len()
	if ny == 0 {
		return fmt.Errorf("%w: empty measurement", filter.ErrInvalidArgument)
	}

	if rows, cols := h.Dims(); rows != ny || cols != k.nx {
		return fmt.Errorf("%w: invalid observation matrix dimensions: [%d x %d]", filter.ErrInvalidArgument, rows, cols)
	}

	if r.SymmetricDim() != ny {
		return fmt.Errorf("%w: invalid measurement noise dimension: %d != %d", filter.ErrInvalidArgument, r.SymmetricDim(), ny)
	}

	// innovation: y = z - H*x
	hx := mat.NewVecDense(ny, nil)
	hx.MulVec(h, k.x)
	inn := mat.NewVecDense(ny, nil)
	inn.SubVec(z, hx)

	// P*H'
	pht := &mat.Dense{}
	pht.Mul(k.p, h.T())

	// innovation covariance: S = H*P*H' + R
	s := &mat.Dense{}
	s.Mul(h, pht)
	s.Add(s, r)

	sInv := &mat.Dense{}
	if err := sInv.Inverse(s); err != nil {
		return fmt.Errorf("%w: failed to invert innovation covariance: %v", filter.ErrNumerical, err)
	}

	// Kalman gain: K = P*H'*S^-1
	gain := &mat.Dense{}
	gain.Mul(pht, sInv)

	// x = x + K*y
	corr := mat.NewVecDense(k.nx, nil)
	corr.MulVec(gain, inn)
	x := mat.NewVecDense(k.nx, nil)
	x.AddVec(k.x, corr)

	// I - K*H
	eye, err := gomatrix.NewDenseValIdentity(k.nx, 1.0)
	if err != nil {
		return fmt.Errorf("%w: %v", filter.ErrInvalidArgument, err)
	}
	a := &mat.Dense{}
	a.Mul(gain, h)
	a.Sub(eye, a)

	cov := &mat.Dense{}
	cov.Mul(a, k.p)
	if k.joseph {
		ap := &mat.Dense{}
		ap.Mul(a, k.p)
		cov.Mul(ap, a.T())
		kr := &mat.Dense{}
		kr.Mul(gain, r)
		krk := &mat.Dense{}
		krk.Mul(kr, gain.T())
		cov.Add(cov, krk)
	}

	p, err := matrix.Symmetrize(cov)
	if err != nil {
		return fmt.Errorf("%w: %v", filter.ErrNumerical, err)
	}

	k.x = x
	k.p = p
	k.inn = inn
	k.k = gain

	return nil
}

// UpdateScalar corrects the state estimate with a scalar measurement z
// given observation row vector h and measurement noise variance r.
func (k *KF) UpdateScalar(z float64, h mat.Vector, r float64) error {
	if h == nil || h.Len() != k.nx {
		return fmt.Errorf("%w: invalid observation vector", filter.ErrInvalidArgument)
	}

	hRow := mat.NewDense(1, k.nx, nil)
	for i := 0; i < k.nx; i++ {
		hRow.Set(0, i, h.AtVec(i))
	}

	return k.Update(mat.NewVecDense(1, []float64{z}), hRow, mat.NewSymDense(1, []float64{r}))
}

// Run advances the state estimate to time t given control input u and
// then applies all observations obs in the given order.
// It returns error if either the prediction or any of the updates fails.
// Observations preceding the failed one remain applied.
func (k *KF) Run(u mat.Vector, t float64, obs ...Observation) error {
	if err := k.PredictCtl(u, t); err != nil {
		return err
	}

	for i, o := range obs {
		if err := k.Update(o.Z, o.H, o.R); err != nil {
			return fmt.Errorf("observation %d: %w", i, err)
		}
	}

	return nil
}

// Model returns KF model
func (k *KF) Model() filter.Model {
	return k.m
}

// Dims returns state and control input dimensions
func (k *KF) Dims() (nx, nu int) {
	return k.nx, k.nu
}

// Timestamp returns the timestamp of the last prediction
func (k *KF) Timestamp() float64 {
	return k.t
}

// State returns a copy of KF state estimate
func (k *KF) State() mat.Vector {
	x := mat.NewVecDense(k.nx, nil)
	x.CopyVec(k.x)

	return x
}

// SetState sets KF state estimate to x. It does not change the filter timestamp.
// It returns error if x is nil or its length is not the same as KF state length.
func (k *KF) SetState(x mat.Vector) error {
	if x == nil || x.Len() != k.nx {
		return fmt.Errorf("%w: invalid state vector: %v", filter.ErrInvalidArgument, x)
	}

	k.x.CopyVec(x)

	return nil
}

// Cov returns a copy of KF covariance
func (k *KF) Cov() mat.Symmetric {
	cov := mat.NewSymDense(k.nx, nil)
	cov.CopySym(k.p)

	return cov
}

// SetCov sets KF covariance matrix to cov. It does not change the filter timestamp.
// Positive semi-definiteness of cov is not checked.
// It returns error if either cov is nil or its dimensions are not the same as KF covariance dimensions.
func (k *KF) SetCov(cov mat.Symmetric) error {
	if cov == nil {
		return fmt.Errorf("%w: invalid covariance matrix: %v", filter.ErrInvalidArgument, cov)
	}

	if cov.SymmetricDim() != k.nx {
		return fmt.Errorf("%w: invalid covariance matrix dims: [%d x %d]", filter.ErrInvalidArgument, cov.SymmetricDim(), cov.SymmetricDim())
	}

	k.p.CopySym(cov)

	return nil
}

// Reset reinitializes KF state estimate and covariance from init and
// moves the filter timestamp to t.
// It returns error if init does not match KF dimensions, in which case the filter is left unchanged.
func (k *KF) Reset(init filter.InitCond, t float64) error {
	if init == nil {
		return fmt.Errorf("%w: invalid initial condition: %v", filter.ErrInvalidArgument, init)
	}

	x, p := init.State(), init.Cov()
	if x == nil || x.Len() != k.nx || p == nil || p.SymmetricDim() != k.nx {
		return fmt.Errorf("%w: invalid initial condition dimensions", filter.ErrInvalidArgument)
	}

	k.x.CopyVec(x)
	k.p.CopySym(p)
	k.t = t
	k.inn = &mat.VecDense{}
	k.k = &mat.Dense{}

	return nil
}

// Estimate returns a copy of the current KF estimate
func (k *KF) Estimate() filter.Estimate {
	// dimensions of x and p always agree
	est, _ := estimate.NewBaseWithCov(k.x, k.p, k.t)

	return est
}

// Gain returns the Kalman gain of the last update.
// It returns empty matrix if no update has been done yet.
func (k *KF) Gain() mat.Matrix {
	gain := &mat.Dense{}
	if !k.k.IsEmpty() {
		gain.CloneFrom(k.k)
	}

	return gain
}

// Innovation returns the innovation vector of the last update.
// It returns empty vector if no update has been done yet.
func (k *KF) Innovation() mat.Vector {
	inn := &mat.VecDense{}
	if !k.inn.IsEmpty() {
		inn.CloneFromVec(k.inn)
	}

	return inn
}

func checkSystem(a mat.Matrix, nx int) (mat.Matrix, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: state transition matrix must be defined", filter.ErrInvalidArgument)
	}

	if rows, cols := a.Dims(); rows != nx || cols != nx {
		return nil, fmt.Errorf("%w: invalid state transition matrix dimensions: [%d x %d]", filter.ErrInvalidArgument, rows, cols)
	}

	return a, nil
}

// checkControl validates control matrix b against state dimension nx and
// control input dimension nu and returns the control input dimension.
// Negative nu accepts any number of columns. Nil b means the system has
// no control input: nu is returned or nx if nu is negative.
func checkControl(b mat.Matrix, nx, nu int) (int, error) {
	if b == nil {
		if nu < 0 {
			return nx, nil
		}
		return nu, nil
	}

	rows, cols := b.Dims()
	if rows != nx || cols == 0 || (nu >= 0 && cols != nu) {
		return 0, fmt.Errorf("%w: invalid control matrix dimensions: [%d x %d]", filter.ErrInvalidArgument, rows, cols)
	}

	return cols, nil
}
