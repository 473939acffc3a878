package estimate

import (
	"fmt"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/state"
	"gonum.org/v1/gonum/mat"
)

// Base is augmented state estimate
type Base struct {
	// p partitions the state into static and dynamic parts
	p state.Partition
	// val is estimated value
	val *mat.VecDense
	// cov is estimated covariance
	cov *mat.SymDense
}

// NewBase returns base estimate given partition p, value val and covariance cov.
// It takes ownership of neither val nor cov: both are copied.
// It returns error if val or cov dimensions do not match the partition.
func NewBase(p state.Partition, val mat.Vector, cov mat.Symmetric) (*Base, error) {
	if val == nil || cov == nil {
		return nil, fmt.Errorf("%w: nil estimate value or covariance", ffbs.ErrDimensionMismatch)
	}

	rv, rc := val.Len(), cov.SymmetricDim()
	if rv != p.N() || rc != p.N() {
		return nil, fmt.Errorf("%w: val: %d, cov: %d x %d, partition: %v", ffbs.ErrDimensionMismatch, rv, rc, rc, p)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	c := mat.NewSymDense(rc, nil)
	c.CopySym(cov)

	return &Base{
		p:   p,
		val: v,
		cov: c,
	}, nil
}

// Partition returns estimate state partition
func (b *Base) Partition() state.Partition {
	return b.p
}

// Val returns estimated value
func (b *Base) Val() mat.Vector {
	v := &mat.VecDense{}
	v.CloneFromVec(b.val)

	return v
}

// Cov returns covariance estimate
func (b *Base) Cov() mat.Symmetric {
	cov := mat.NewSymDense(b.cov.SymmetricDim(), nil)
	cov.CopySym(b.cov)

	return cov
}

// Static returns the static part of the estimated value
func (b *Base) Static() mat.Vector {
	v := &mat.VecDense{}
	if b.p.HasStatic() {
		v.CloneFromVec(b.p.StaticVec(b.val))
	}

	return v
}

// Dynamic returns the dynamic part of the estimated value
func (b *Base) Dynamic() mat.Vector {
	v := &mat.VecDense{}
	v.CloneFromVec(b.p.DynamicVec(b.val))

	return v
}

// DynamicCov returns the dynamic block of the estimated covariance
func (b *Base) DynamicCov() mat.Symmetric {
	cov := mat.NewSymDense(b.p.Dynamic, nil)
	cov.CopySym(b.p.DynamicCov(b.cov))

	return cov
}

// String implements the Stringer interface.
func (b *Base) String() string {
	return fmt.Sprintf("Base{\nVal=%v\nCov=%v\n}",
		mat.Formatted(b.val.T(), mat.Prefix("    "), mat.Squeeze()),
		mat.Formatted(b.cov, mat.Prefix("    "), mat.Squeeze()))
}
