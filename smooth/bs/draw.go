package bs

import (
	"fmt"

	"github.com/milosgajdos/go-ffbs/state"
	"gonum.org/v1/gonum/mat"
)

// Draw is a single latent path draw
type Draw struct {
	// p is state partition
	p state.Partition
	// alpha stores static state draw
	alpha *mat.VecDense
	// beta stores dynamic state draws in its columns
	beta *mat.Dense
}

func newDraw(p state.Partition, steps int) *Draw {
	na := p.Static
	if na < 1 {
		na = 1
	}

	return &Draw{
		p:     p,
		alpha: mat.NewVecDense(na, nil),
		beta:  mat.NewDense(p.Dynamic, steps+1, nil),
	}
}

func (d *Draw) col(t int) *mat.VecDense {
	return d.beta.ColView(t).(*mat.VecDense)
}

// Partition returns state partition of the draw
func (d *Draw) Partition() state.Partition {
	return d.p
}

// Steps returns the number of time steps following the initial state.
func (d *Draw) Steps() int {
	_, c := d.beta.Dims()
	return c - 1
}

// Static returns static state draw.
// The returned vector always has at least one element:
// if there is no static state it contains a single zero.
func (d *Draw) Static() mat.Vector {
	alpha := &mat.VecDense{}
	alpha.CloneFromVec(d.alpha)

	return alpha
}

// Dynamic returns dynamic state draws: column t stores the dynamic state at time t.
func (d *Draw) Dynamic() mat.Matrix {
	return mat.DenseCopyOf(d.beta)
}

// Beta returns dynamic state draw at time t.
// It panics if t is out of range.
func (d *Draw) Beta(t int) mat.Vector {
	beta := &mat.VecDense{}
	beta.CloneFromVec(d.beta.ColView(t))

	return beta
}

// String implements the Stringer interface.
func (d *Draw) String() string {
	return fmt.Sprintf("Draw{\nAlpha=%v\nBeta=%v\n}",
		mat.Formatted(d.alpha.T(), mat.Prefix("     "), mat.Squeeze()),
		mat.Formatted(d.beta, mat.Prefix("     "), mat.Squeeze()))
}
