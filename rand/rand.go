package rand

import (
	"fmt"

	ffbs "github.com/milosgajdos/go-ffbs"
	"gonum.org/v1/gonum/mat"
)

// Chol returns lower triangular Cholesky factor L of cov such that cov = L*L'.
// It returns ffbs.ErrNotPositiveDefinite if cov is not positive definite.
func Chol(cov mat.Symmetric) (*mat.TriDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, fmt.Errorf("%w: Cholesky factorization failed", ffbs.ErrNotPositiveDefinite)
	}

	L := mat.NewTriDense(cov.SymmetricDim(), mat.Lower, nil)
	chol.LTo(L)

	return L, nil
}

// WithCov draws a sample from a Normal (aka Gaussian) distribution with mean mean and covariance cov.
// It transforms the standard normal draws z using the Cholesky factor L of cov:
//
//	x = mean + L*z
//
// If z is nil, cov.SymmetricDim() draws are requested from noise n instead.
// It returns ffbs.ErrNotPositiveDefinite if the Cholesky factorization of cov fails and
// ffbs.ErrDimensionMismatch if mean, cov and z dimensions do not match.
func WithCov(mean mat.Vector, cov mat.Symmetric, n ffbs.Noise, z mat.Vector) (*mat.VecDense, error) {
	size := cov.SymmetricDim()
	if mean.Len() != size {
		return nil, fmt.Errorf("%w: mean length %d != %d", ffbs.ErrDimensionMismatch, mean.Len(), size)
	}

	L, err := Chol(cov)
	if err != nil {
		return nil, err
	}

	if z == nil {
		if n == nil {
			return nil, fmt.Errorf("invalid noise: %v", n)
		}
		z = n.Sample(size)
	}

	if z.Len() != size {
		return nil, fmt.Errorf("%w: draw length %d != %d", ffbs.ErrDimensionMismatch, z.Len(), size)
	}

	x := mat.NewVecDense(size, nil)
	x.MulVec(L, z)
	x.AddVec(mean, x)

	return x, nil
}

// CholSolve solves a*x = b for x using Cholesky factorization of a and returns x.
// a is never inverted explicitly.
// It returns ffbs.ErrNotPositiveDefinite if a is not positive definite.
func CholSolve(a mat.Symmetric, b mat.Matrix) (*mat.Dense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, fmt.Errorf("%w: Cholesky factorization failed", ffbs.ErrNotPositiveDefinite)
	}

	x := &mat.Dense{}
	if err := chol.SolveTo(x, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ffbs.ErrNotPositiveDefinite, err)
	}

	return x, nil
}
