package rand

import (
	"errors"
	"testing"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/noise"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestChol(t *testing.T) {
	assert := assert.New(t)

	cov := mat.NewSymDense(2, []float64{4, 2, 2, 3})
	L, err := Chol(cov)
	assert.NoError(err)

	llt := &mat.Dense{}
	llt.Mul(L, L.T())
	assert.True(mat.EqualApprox(cov, llt, 1e-12))
	assert.Equal(0.0, L.At(0, 1))

	L, err = Chol(mat.NewSymDense(2, []float64{1, 2, 2, 1}))
	assert.Nil(L)
	assert.True(errors.Is(err, ffbs.ErrNotPositiveDefinite))
}

func TestWithCov(t *testing.T) {
	assert := assert.New(t)

	mean := mat.NewVecDense(2, []float64{1, -1})
	cov := mat.NewSymDense(2, []float64{4, 2, 2, 3})

	// L = [2 0; 1 sqrt(2)]
	z := mat.NewVecDense(2, []float64{1, 1})
	x, err := WithCov(mean, cov, nil, z)
	assert.NoError(err)
	assert.InDelta(3.0, x.AtVec(0), 1e-12)
	assert.InDelta(1.41421356237, x.AtVec(1), 1e-9)

	// zero draws yield the mean
	zero, _ := noise.NewZero()
	x, err = WithCov(mean, cov, zero, nil)
	assert.NoError(err)
	assert.True(mat.Equal(mean, x))

	x, err = WithCov(mat.NewVecDense(3, nil), cov, zero, nil)
	assert.Nil(x)
	assert.True(errors.Is(err, ffbs.ErrDimensionMismatch))

	x, err = WithCov(mean, cov, nil, mat.NewVecDense(3, nil))
	assert.Nil(x)
	assert.True(errors.Is(err, ffbs.ErrDimensionMismatch))

	x, err = WithCov(mean, cov, nil, nil)
	assert.Nil(x)
	assert.Error(err)

	x, err = WithCov(mean, mat.NewSymDense(2, []float64{1, 2, 2, 1}), zero, nil)
	assert.Nil(x)
	assert.True(errors.Is(err, ffbs.ErrNotPositiveDefinite))
}

func TestWithCovMoments(t *testing.T) {
	assert := assert.New(t)

	mean := mat.NewVecDense(2, []float64{1, -1})
	cov := mat.NewSymDense(2, []float64{1, 0.5, 0.5, 2})
	g, err := noise.NewGaussian(11)
	assert.NoError(err)

	n := 20000
	samples := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		x, err := WithCov(mean, cov, g, nil)
		assert.NoError(err)
		samples.SetRow(i, x.RawVector().Data)
	}

	assert.InDelta(1.0, stat.Mean(mat.Col(nil, 0, samples), nil), 0.05)
	assert.InDelta(-1.0, stat.Mean(mat.Col(nil, 1, samples), nil), 0.05)

	emp := mat.NewSymDense(2, nil)
	stat.CovarianceMatrix(emp, samples, nil)
	assert.True(mat.EqualApprox(cov, emp, 0.1))
}

func TestCholSolve(t *testing.T) {
	assert := assert.New(t)

	a := mat.NewSymDense(2, []float64{4, 2, 2, 3})
	b := mat.NewDense(2, 1, []float64{6, 5})
	x, err := CholSolve(a, b)
	assert.NoError(err)
	assert.InDelta(1.0, x.At(0, 0), 1e-12)
	assert.InDelta(1.0, x.At(1, 0), 1e-12)

	x, err = CholSolve(mat.NewSymDense(2, []float64{1, 2, 2, 1}), b)
	assert.Nil(x)
	assert.True(errors.Is(err, ffbs.ErrNotPositiveDefinite))
}
