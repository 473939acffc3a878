package estimate

import (
	"errors"
	"testing"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/state"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewBase(t *testing.T) {
	assert := assert.New(t)

	p := state.Partition{Static: 1, Dynamic: 1}
	val := mat.NewVecDense(2, []float64{1.0, 1.0})
	cov := mat.NewSymDense(2, []float64{1.0, 0.0, 0.0, 1.0})

	b, err := NewBase(p, val, cov)
	assert.NotNil(b)
	assert.NoError(err)

	b, err = NewBase(p, val, mat.NewSymDense(1, []float64{1.0}))
	assert.Nil(b)
	assert.True(errors.Is(err, ffbs.ErrDimensionMismatch))

	b, err = NewBase(state.Partition{Dynamic: 3}, val, cov)
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBase(p, nil, cov)
	assert.Nil(b)
	assert.Error(err)
}

func TestValCov(t *testing.T) {
	assert := assert.New(t)

	p := state.Partition{Static: 1, Dynamic: 2}
	val := mat.NewVecDense(3, []float64{1.0, 2.0, 3.0})
	cov := mat.NewSymDense(3, []float64{
		1.0, 0.1, 0.2,
		0.1, 2.0, 0.3,
		0.2, 0.3, 4.0,
	})

	b, err := NewBase(p, val, cov)
	assert.NotNil(b)
	assert.NoError(err)
	assert.Equal(p, b.Partition())

	// estimate must not alias the inputs
	val.SetVec(0, 100)
	assert.Equal(1.0, b.Val().AtVec(0))
	b.Val().(*mat.VecDense).SetVec(1, 100)
	assert.Equal(2.0, b.Val().AtVec(1))

	assert.True(mat.Equal(cov, b.Cov()))

	s := b.Static()
	assert.Equal(1, s.Len())
	assert.Equal(1.0, s.AtVec(0))

	d := b.Dynamic()
	assert.Equal(2, d.Len())
	assert.Equal(2.0, d.AtVec(0))
	assert.Equal(3.0, d.AtVec(1))

	dc := b.DynamicCov()
	assert.Equal(2, dc.SymmetricDim())
	assert.Equal(2.0, dc.At(0, 0))
	assert.Equal(0.3, dc.At(0, 1))
	assert.Equal(4.0, dc.At(1, 1))

	// no static part
	b, err = NewBase(state.Partition{Dynamic: 3}, mat.NewVecDense(3, nil), cov)
	assert.NoError(err)
	assert.Equal(0, b.Static().Len())
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	b, err := NewBase(state.Partition{Dynamic: 2}, mat.NewVecDense(2, []float64{1, 2}), mat.NewSymDense(2, []float64{1, 0, 0, 1}))
	assert.NoError(err)

	str := b.String()
	assert.Contains(str, "Base{")
	assert.Contains(str, "Val=")
	assert.Contains(str, "Cov=")
}
