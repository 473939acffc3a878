package noise

import (
	"gonum.org/v1/gonum/mat"
)

// Zero is zero noise i.e. no noise.
// Sampling with zero noise yields the conditional means instead of random draws.
type Zero struct{}

// NewZero creates new zero noise and returns it.
func NewZero() (*Zero, error) {
	return &Zero{}, nil
}

// Sample returns a vector of n zeros.
func (e *Zero) Sample(n int) mat.Vector {
	if n <= 0 {
		return &mat.VecDense{}
	}

	return mat.NewVecDense(n, nil)
}

// Reset does nothing: it's here to implement ffbs.Noise interface
func (e *Zero) Reset() {}

// String implements the Stringer interface.
func (e *Zero) String() string {
	return "Zero{}"
}
