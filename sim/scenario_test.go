package sim

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	filter "github.com/sno/go-estimate"
	"github.com/sno/go-estimate/noise"
	"github.com/stretchr/testify/assert"
)

const scenarioYAML = `
dt: 0.5
steps: 20
seed: 3
a: [[1, 0.5], [0, 1]]
b: [[0.125], [0.5]]
c: [[1, 0]]
x0: [10, 0]
u: [-9.81]
p0: [[1, 0], [0, 1]]
q: [[0, 0], [0, 0]]
r: [[0.5]]
`

func TestLoadScenario(t *testing.T) {
	assert := assert.New(t)

	s, err := LoadScenario(strings.NewReader(scenarioYAML))
	assert.NoError(err)
	assert.NotNil(s)
	assert.Equal(0.5, s.Dt)
	assert.Equal(20, s.Steps)
	assert.Equal(uint64(3), s.Seed)

	sys, err := s.System()
	assert.NoError(err)
	nx, nu, ny := sys.SystemDims()
	assert.Equal(2, nx)
	assert.Equal(1, nu)
	assert.Equal(1, ny)

	assert.Equal(10.0, s.InitState().AtVec(0))
	assert.Equal(-9.81, s.Input().AtVec(0))

	p0, err := s.InitCov()
	assert.NoError(err)
	assert.Equal(1.0, p0.At(1, 1))

	q, r, err := s.Noise()
	assert.NoError(err)
	// zero process noise covariance yields zero noise
	_, ok := q.(*noise.Zero)
	assert.True(ok)
	_, ok = r.(*noise.Gaussian)
	assert.True(ok)

	_, err = LoadScenario(strings.NewReader("dt: [oops"))
	assert.Error(err)
}

func TestLoadScenarioFile(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	assert.NoError(os.WriteFile(path, []byte(scenarioYAML), 0o644))

	s, err := LoadScenarioFile(path)
	assert.NoError(err)
	assert.Equal(20, s.Steps)

	_, err = LoadScenarioFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(err)
}

func TestScenarioValidate(t *testing.T) {
	assert := assert.New(t)

	s := DefaultScenario
	assert.NoError(s.Validate())
	assert.Nil((&Scenario{U: nil}).Input())

	for _, test := range []struct {
		name   string
		modify func(s *Scenario)
	}{
		{"zero time step", func(s *Scenario) { s.Dt = 0 }},
		{"no steps", func(s *Scenario) { s.Steps = 0 }},
		{"ragged system matrix", func(s *Scenario) { s.A = [][]float64{{1, 1}, {0}} }},
		{"bad initial state", func(s *Scenario) { s.X0 = []float64{1, 2, 3} }},
		{"no output matrix", func(s *Scenario) { s.C = nil }},
		{"bad input", func(s *Scenario) { s.U = []float64{1, 2} }},
		{"bad p0", func(s *Scenario) { s.P0 = [][]float64{{1}} }},
		{"asymmetric q", func(s *Scenario) { s.Q = [][]float64{{1, 2}, {0, 1}} }},
		{"bad r", func(s *Scenario) { s.R = [][]float64{{1, 0}, {0, 1}} }},
	} {
		s := DefaultScenario
		test.modify(&s)
		err := s.Validate()
		assert.True(errors.Is(err, filter.ErrInvalidArgument), test.name)
	}
}
