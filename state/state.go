// Package state defines the partition of the augmented state vector into
// its static and dynamic parts.
//
// The augmented state stacks the static coefficients (alpha) on top of the
// dynamic coefficients (beta_t):
//
//	theta_t = [alpha; beta_t]
//
// Partition provides typed views of both parts of augmented vectors and
// covariance matrices so callers never index into the flat representation.
package state

import (
	"fmt"

	ffbs "github.com/milosgajdos/go-ffbs"
	"gonum.org/v1/gonum/mat"
)

// Partition splits augmented state into static and dynamic parts
type Partition struct {
	// Static is the number of static coefficients
	Static int
	// Dynamic is the number of dynamic coefficients
	Dynamic int
}

// New returns a partition of an augmented state of dimension n with nb dynamic coefficients.
// It returns error if nb is not positive or larger than n.
func New(n, nb int) (Partition, error) {
	p := Partition{Static: n - nb, Dynamic: nb}
	if err := p.Validate(); err != nil {
		return Partition{}, err
	}

	return p, nil
}

// N returns augmented state dimension.
func (p Partition) N() int {
	return p.Static + p.Dynamic
}

// HasStatic returns true if the partition contains static coefficients.
func (p Partition) HasStatic() bool {
	return p.Static > 0
}

// Validate checks the partition dimensions.
func (p Partition) Validate() error {
	if p.Dynamic <= 0 {
		return fmt.Errorf("%w: dynamic dimension must be positive: %d", ffbs.ErrDimensionMismatch, p.Dynamic)
	}

	if p.Static < 0 {
		return fmt.Errorf("%w: static dimension can't be negative: %d", ffbs.ErrDimensionMismatch, p.Static)
	}

	return nil
}

// StaticVec returns a view of the static part of augmented vector v.
// It returns empty vector if the partition has no static part.
// It panics if v length does not match the partition.
func (p Partition) StaticVec(v mat.Vector) *mat.VecDense {
	p.mustVec(v)
	if !p.HasStatic() {
		return &mat.VecDense{}
	}

	return asVecDense(v).SliceVec(0, p.Static).(*mat.VecDense)
}

// DynamicVec returns a view of the dynamic part of augmented vector v.
// It panics if v length does not match the partition.
func (p Partition) DynamicVec(v mat.Vector) *mat.VecDense {
	p.mustVec(v)

	return asVecDense(v).SliceVec(p.Static, p.N()).(*mat.VecDense)
}

// DynamicCov returns a view of the dynamic block of augmented covariance c.
// It panics if c size does not match the partition.
func (p Partition) DynamicCov(c mat.Symmetric) *mat.SymDense {
	if c.SymmetricDim() != p.N() {
		panic(fmt.Sprintf("state: covariance size %d does not match partition %d", c.SymmetricDim(), p.N()))
	}

	return asSymDense(c).SliceSym(p.Static, p.N()).(*mat.SymDense)
}

// Join stacks the static vector alpha on top of the dynamic vector beta and returns the result.
// alpha may be nil if the partition has no static part.
// It returns error if the vector lengths do not match the partition.
func (p Partition) Join(alpha, beta mat.Vector) (*mat.VecDense, error) {
	na := 0
	if alpha != nil {
		na = alpha.Len()
	}

	if na != p.Static || beta == nil || beta.Len() != p.Dynamic {
		return nil, fmt.Errorf("%w: can't join static and dynamic state into %v", ffbs.ErrDimensionMismatch, p)
	}

	theta := mat.NewVecDense(p.N(), nil)
	if na > 0 {
		theta.SliceVec(0, p.Static).(*mat.VecDense).CopyVec(alpha)
	}
	theta.SliceVec(p.Static, p.N()).(*mat.VecDense).CopyVec(beta)

	return theta, nil
}

// String implements the Stringer interface.
func (p Partition) String() string {
	return fmt.Sprintf("Partition{Static=%d Dynamic=%d}", p.Static, p.Dynamic)
}

func (p Partition) mustVec(v mat.Vector) {
	if v.Len() != p.N() {
		panic(fmt.Sprintf("state: vector length %d does not match partition %d", v.Len(), p.N()))
	}
}

func asVecDense(v mat.Vector) *mat.VecDense {
	if vd, ok := v.(*mat.VecDense); ok {
		return vd
	}

	return mat.VecDenseCopyOf(v)
}

func asSymDense(c mat.Symmetric) *mat.SymDense {
	if sd, ok := c.(*mat.SymDense); ok {
		return sd
	}

	s := mat.NewSymDense(c.SymmetricDim(), nil)
	s.CopySym(c)

	return s
}
