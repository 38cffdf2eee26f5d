package sim

import (
	"errors"
	"os"
	"testing"

	filter "github.com/sno/go-estimate"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

var (
	x, u, q, r *mat.VecDense
	A, B, C, D *mat.Dense
)

func setup() {
	x = mat.NewVecDense(2, []float64{0.5, 0.6})
	u = mat.NewVecDense(1, []float64{-1.0})

	// state and output noise
	q = mat.NewVecDense(2, nil)
	r = mat.NewVecDense(1, nil)

	A = mat.NewDense(2, 2, []float64{1.0, 1.0, 0.0, 1.0})
	B = mat.NewDense(2, 1, []float64{0.5, 1.0})
	C = mat.NewDense(1, 2, []float64{1.0, 0.0})
	D = mat.NewDense(1, 1, []float64{0.0})
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestNewDiscrete(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, D)
	assert.NotNil(f)
	assert.NoError(err)

	f, err = NewDiscrete(A, nil, C, nil)
	assert.NotNil(f)
	assert.NoError(err)

	for _, test := range []struct {
		name       string
		a, b, c, d mat.Matrix
	}{
		{"nil system", nil, B, C, D},
		{"non-square system", mat.NewDense(2, 3, nil), B, C, D},
		{"bad control", A, mat.NewDense(3, 1, nil), C, D},
		{"bad output", A, B, mat.NewDense(1, 3, nil), D},
		{"bad feedthrough", A, B, C, mat.NewDense(2, 2, nil)},
		{"feedthrough without control", A, nil, C, D},
	} {
		f, err := NewDiscrete(test.a, test.b, test.c, test.d)
		assert.Nil(f, test.name)
		assert.True(errors.Is(err, filter.ErrInvalidArgument), test.name)
	}
}

func TestDiscretePropagate(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, D)
	assert.NotNil(f)
	assert.NoError(err)

	v, err := f.Propagate(x, u, q)
	assert.NotNil(v)
	assert.NoError(err)
	assert.InDelta(0.6, v.AtVec(0), 1e-9)
	assert.InDelta(-0.4, v.AtVec(1), 1e-9)

	_u := mat.NewVecDense(10, nil)
	v, err = f.Propagate(x, _u, q)
	assert.Nil(v)
	assert.Error(err)

	_x := mat.NewVecDense(10, nil)
	v, err = f.Propagate(_x, u, q)
	assert.Nil(v)
	assert.Error(err)

	v, err = f.Propagate(x, u, nil)
	assert.NotNil(v)
	assert.NoError(err)
}

func TestDiscreteObserve(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, D)
	assert.NotNil(f)
	assert.NoError(err)

	v, err := f.Observe(x, u, r)
	assert.NotNil(v)
	assert.NoError(err)
	assert.InDelta(0.5, v.AtVec(0), 1e-9)

	_u := mat.NewVecDense(10, nil)
	v, err = f.Observe(x, _u, r)
	assert.Nil(v)
	assert.Error(err)

	_x := mat.NewVecDense(10, nil)
	v, err = f.Observe(_x, u, r)
	assert.Nil(v)
	assert.Error(err)

	v, err = f.Observe(x, u, nil)
	assert.NotNil(v)
	assert.NoError(err)

	noOut, err := NewDiscrete(A, B, nil, nil)
	assert.NoError(err)
	v, err = noOut.Observe(x, u, nil)
	assert.Nil(v)
	assert.Error(err)
}

func TestSystemMatrices(t *testing.T) {
	assert := assert.New(t)
	f := System{A, B, C, D}

	m := f.SystemMatrix()
	assert.True(mat.EqualApprox(m, A, 0.001))

	m = f.ControlMatrix()
	assert.True(mat.EqualApprox(m, B, 0.001))

	m = f.OutputMatrix()
	assert.True(mat.EqualApprox(m, C, 0.001))

	m = f.FeedForwardMatrix()
	assert.True(mat.EqualApprox(m, D, 0.001))

	f = System{A: A}
	assert.Nil(f.ControlMatrix())
	assert.Nil(f.OutputMatrix())
	assert.Nil(f.FeedForwardMatrix())
}

func TestSystemDims(t *testing.T) {
	assert := assert.New(t)
	f := System{A, B, C, D}

	nx, nu, ny := f.SystemDims()
	r, c := A.Dims()
	assert.Equal(nx, r) // A is square [n,n]
	assert.Equal(nx, c)
	r, c = B.Dims()
	assert.Equal(nx, r) // B [n,p]
	assert.Equal(nu, c)
	r, c = C.Dims()
	assert.Equal(ny, r) // C [q,n]
	assert.Equal(nx, c)
	r, c = D.Dims()
	assert.Equal(ny, r) // D [q,p]
	assert.Equal(nu, c)
}
