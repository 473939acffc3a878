package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DiagScaleSym computes diag(d)*c*diag(d) + w, stores it in dst and returns it.
// w may be nil. It runs in O(n^2) since diag(d) is never materialized.
// It panics if the dimensions of the operands do not match.
func DiagScaleSym(dst *mat.SymDense, d []float64, c, w mat.Symmetric) *mat.SymDense {
	n := c.SymmetricDim()
	if len(d) != n || (w != nil && w.SymmetricDim() != n) {
		panic(fmt.Sprintf("matrix: dimension mismatch: diag %d, cov %d", len(d), n))
	}

	if dst == nil {
		dst = mat.NewSymDense(n, nil)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := d[i] * c.At(i, j) * d[j]
			if w != nil {
				v += w.At(i, j)
			}
			dst.SetSym(i, j, v)
		}
	}

	return dst
}

// ScaleRows scales i-th row of m by d[i] and returns the result as a new matrix.
// It computes diag(d)*m without materializing diag(d).
// It panics if len(d) does not match the number of rows of m.
func ScaleRows(d []float64, m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	if len(d) != r {
		panic(fmt.Sprintf("matrix: dimension mismatch: diag %d, rows %d", len(d), r))
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, d[i]*m.At(i, j))
		}
	}

	return out
}

// Symmetrize returns (m + m')/2 stored in a symmetric matrix.
// It panics if m is not square.
func Symmetrize(m mat.Matrix) *mat.SymDense {
	r, c := m.Dims()
	if r != c {
		panic(fmt.Sprintf("matrix: can't symmetrize non-square matrix [%d x %d]", r, c))
	}

	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, (m.At(i, j)+m.At(j, i))/2)
		}
	}

	return s
}

// IsPSD returns true if all eigenvalues of s are greater than -tol.
// It returns false if the eigen decomposition of s fails.
func IsPSD(s mat.Symmetric, tol float64) bool {
	var eig mat.EigenSym
	if ok := eig.Factorize(s, false); !ok {
		return false
	}

	return floats.Min(eig.Values(nil)) > -tol
}

// Ones returns a slice of n ones.
func Ones(n int) []float64 {
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1.0
	}

	return ones
}

// DenseColMajor creates a new r x c matrix from column-major data.
// It returns error if len(data) != r*c.
func DenseColMajor(r, c int, data []float64) (*mat.Dense, error) {
	if r <= 0 || c <= 0 || len(data) != r*c {
		return nil, fmt.Errorf("invalid column-major data: %d != [%d x %d]", len(data), r, c)
	}

	// column-major r x c is row-major c x r
	m := mat.NewDense(r, c, nil)
	m.Copy(mat.NewDense(c, r, data).T())

	return m, nil
}

// SymTol is absolute tolerance of symmetry checks
const SymTol = 1e-12

// SymColMajor creates a new n x n symmetric matrix from column-major data.
// It returns error if len(data) != n*n or if the data is not symmetric within SymTol.
func SymColMajor(n int, data []float64) (*mat.SymDense, error) {
	if n <= 0 || len(data) != n*n {
		return nil, fmt.Errorf("invalid column-major data: %d != [%d x %d]", len(data), n, n)
	}

	s := mat.NewSymDense(n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i <= j; i++ {
			if math.Abs(data[j*n+i]-data[i*n+j]) > SymTol {
				return nil, fmt.Errorf("matrix not symmetric at [%d, %d]", i, j)
			}
			s.SetSym(i, j, data[j*n+i])
		}
	}

	return s, nil
}

// ColMajor writes m into dst in column-major order.
// It panics if len(dst) is smaller than the number of elements of m.
func ColMajor(dst []float64, m mat.Matrix) {
	r, c := m.Dims()
	if len(dst) < r*c {
		panic(fmt.Sprintf("matrix: destination too small: %d < %d", len(dst), r*c))
	}

	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			dst[j*r+i] = m.At(i, j)
		}
	}
}
