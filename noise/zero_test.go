package noise

import (
	"errors"
	"testing"

	filter "github.com/sno/go-estimate"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewZero(t *testing.T) {
	assert := assert.New(t)

	e, err := NewZero(2)
	assert.NotNil(e)
	assert.NoError(err)

	for _, size := range []int{0, -10} {
		e, err := NewZero(size)
		assert.Nil(e)
		assert.True(errors.Is(err, filter.ErrInvalidArgument))
	}
}

func TestZeroMeanCov(t *testing.T) {
	assert := assert.New(t)

	size := 2
	e, err := NewZero(size)
	assert.NotNil(e)
	assert.NoError(err)

	cov := e.Cov()
	assert.Equal(size, cov.SymmetricDim())
	assert.True(mat.Equal(mat.NewSymDense(size, nil), cov))
	assert.EqualValues([]float64{0, 0}, e.Mean())
}

func TestZeroSample(t *testing.T) {
	assert := assert.New(t)

	e, err := NewZero(3)
	assert.NoError(err)

	sample1 := e.Sample()
	assert.Equal(3, sample1.Len())
	assert.Equal(0.0, mat.Sum(sample1))

	e.Reset()

	sample2 := e.Sample()
	assert.True(mat.Equal(sample1, sample2))
}

func TestZeroString(t *testing.T) {
	assert := assert.New(t)

	e, err := NewZero(2)
	assert.NotNil(e)
	assert.NoError(err)
	assert.Contains(e.String(), "Mean=[0 0]")
}
