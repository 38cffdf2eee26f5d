package sim

import (
	"fmt"
	"io"
	"os"

	filter "github.com/sno/go-estimate"
	"github.com/sno/go-estimate/matrix"
	"github.com/sno/go-estimate/noise"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Scenario describes a simulation of a linear system and the
// filter settings used to estimate its state.
type Scenario struct {
	// Dt is simulation time step in seconds
	Dt float64 `yaml:"dt"`
	// Steps is number of simulation steps
	Steps int `yaml:"steps"`
	// Seed seeds simulation noise; zero seeds from the current time
	Seed uint64 `yaml:"seed"`
	// A, B, C, D are system matrices stored by rows
	A [][]float64 `yaml:"a"`
	B [][]float64 `yaml:"b"`
	C [][]float64 `yaml:"c"`
	D [][]float64 `yaml:"d"`
	// X0 is the true initial state
	X0 []float64 `yaml:"x0"`
	// U is constant control input
	U []float64 `yaml:"u"`
	// P0 is initial filter covariance
	P0 [][]float64 `yaml:"p0"`
	// Q is process noise covariance
	Q [][]float64 `yaml:"q"`
	// R is measurement noise covariance
	R [][]float64 `yaml:"r"`
}

// DefaultScenario is a falling ball measured by a noisy position sensor
var DefaultScenario = Scenario{
	Dt:    1.0,
	Steps: 50,
	A:     [][]float64{{1.0, 1.0}, {0.0, 1.0}},
	B:     [][]float64{{0.5}, {1.0}},
	C:     [][]float64{{1.0, 0.0}},
	D:     [][]float64{{0.0}},
	X0:    []float64{100.0, 0.0},
	U:     []float64{-1.0},
	P0:    [][]float64{{0.25, 0}, {0, 0.25}},
	Q:     [][]float64{{0.01, 0}, {0, 0.01}},
	R:     [][]float64{{6.25}},
}

// LoadScenario decodes YAML scenario from r and validates it.
func LoadScenario(r io.Reader) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// LoadScenarioFile loads YAML scenario from file at path.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadScenario(f)
}

// Validate checks scenario parameters and dimensions.
func (s *Scenario) Validate() error {
	if s.Dt <= 0 || s.Steps <= 0 {
		return fmt.Errorf("%w: invalid scenario time step %v or steps %d", filter.ErrInvalidArgument, s.Dt, s.Steps)
	}

	sys, err := s.System()
	if err != nil {
		return err
	}

	if _, err := s.InitCov(); err != nil {
		return err
	}

	if _, err := s.StateCov(); err != nil {
		return err
	}

	_, nu, ny := sys.SystemDims()
	if len(s.U) != nu {
		return fmt.Errorf("%w: invalid control input length: %d != %d", filter.ErrInvalidArgument, len(s.U), nu)
	}

	if _, err := sym("r", s.R, ny); err != nil {
		return err
	}

	return nil
}

// System returns simulated discrete-time system.
func (s *Scenario) System() (*Discrete, error) {
	A, err := dense("a", s.A)
	if err != nil {
		return nil, err
	}

	if rows, _ := A.Dims(); rows != len(s.X0) {
		return nil, fmt.Errorf("%w: initial state length %d does not match system matrix", filter.ErrInvalidArgument, len(s.X0))
	}

	var B, C, D mat.Matrix
	if len(s.B) > 0 {
		if B, err = dense("b", s.B); err != nil {
			return nil, err
		}
	}
	if len(s.C) > 0 {
		if C, err = dense("c", s.C); err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("%w: scenario output matrix must be defined", filter.ErrInvalidArgument)
	}
	if len(s.D) > 0 {
		if D, err = dense("d", s.D); err != nil {
			return nil, err
		}
	}

	return NewDiscrete(A, B, C, D)
}

// InitState returns the true initial state.
func (s *Scenario) InitState() *mat.VecDense {
	return mat.NewVecDense(len(s.X0), append([]float64(nil), s.X0...))
}

// Input returns constant control input or nil if the scenario has none.
func (s *Scenario) Input() mat.Vector {
	if len(s.U) == 0 {
		return nil
	}

	return mat.NewVecDense(len(s.U), append([]float64(nil), s.U...))
}

// InitCov returns initial filter covariance.
func (s *Scenario) InitCov() (*mat.SymDense, error) {
	return sym("p0", s.P0, len(s.X0))
}

// StateCov returns process noise covariance.
func (s *Scenario) StateCov() (*mat.SymDense, error) {
	return sym("q", s.Q, len(s.X0))
}

// OutputCov returns measurement noise covariance.
func (s *Scenario) OutputCov() (*mat.SymDense, error) {
	return sym("r", s.R, len(s.C))
}

// Noise returns process and measurement noise used to simulate the scenario.
// Zero covariance yields zero noise.
func (s *Scenario) Noise() (q, r filter.Noise, err error) {
	qc, err := s.StateCov()
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.OutputCov()
	if err != nil {
		return nil, nil, err
	}

	if q, err = s.newNoise(qc, 0); err != nil {
		return nil, nil, err
	}

	if r, err = s.newNoise(rc, 1); err != nil {
		return nil, nil, err
	}

	return q, r, nil
}

func (s *Scenario) newNoise(cov *mat.SymDense, offset uint64) (filter.Noise, error) {
	n := cov.SymmetricDim()
	if mat.Norm(cov, 1) == 0 {
		return noise.NewZero(n)
	}

	if s.Seed == 0 {
		return noise.NewGaussian(make([]float64, n), cov)
	}

	return noise.NewGaussianWithSeed(make([]float64, n), cov, s.Seed+offset)
}

func dense(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: matrix %s is empty", filter.ErrInvalidArgument, name)
	}

	r, c := len(rows), len(rows[0])
	data := make([]float64, 0, r*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("%w: matrix %s row %d has %d columns, expected %d", filter.ErrInvalidArgument, name, i, len(row), c)
		}
		data = append(data, row...)
	}

	return mat.NewDense(r, c, data), nil
}

func sym(name string, rows [][]float64, n int) (*mat.SymDense, error) {
	m, err := dense(name, rows)
	if err != nil {
		return nil, err
	}

	if r, c := m.Dims(); r != n || c != n {
		return nil, fmt.Errorf("%w: matrix %s must be [%d x %d], got [%d x %d]", filter.ErrInvalidArgument, name, n, n, r, c)
	}

	if !matrix.IsSymmetric(m, 0) {
		return nil, fmt.Errorf("%w: matrix %s is not symmetric", filter.ErrInvalidArgument, name)
	}

	return matrix.Symmetrize(m)
}
