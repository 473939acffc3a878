package kf

import (
	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/estimate"
	"github.com/milosgajdos/go-ffbs/state"
)

// Trajectory stores forward filter estimates for every time step.
// Index 0 of the filtered estimates holds the prior; index 0 of the
// predictive estimates is unused.
type Trajectory struct {
	// p is state partition
	p state.Partition
	// pred stores predictive estimates a_t, R_t
	pred []*estimate.Base
	// filt stores filtered estimates m_t, C_t
	filt []*estimate.Base
}

func newTrajectory(p state.Partition, steps int) *Trajectory {
	return &Trajectory{
		p:    p,
		pred: make([]*estimate.Base, steps+1),
		filt: make([]*estimate.Base, steps+1),
	}
}

// Partition returns state partition
func (tr *Trajectory) Partition() state.Partition {
	return tr.p
}

// Len returns the number of filtered steps.
func (tr *Trajectory) Len() int {
	return len(tr.filt) - 1
}

// Predicted returns predictive estimate at step t.
// It panics if t is not in [1, Len()].
func (tr *Trajectory) Predicted(t int) ffbs.Augmented {
	if t < 1 {
		panic("kf: no predictive estimate at step 0")
	}

	return tr.pred[t]
}

// Filtered returns filtered estimate at step t.
// It panics if t is not in [0, Len()].
func (tr *Trajectory) Filtered(t int) ffbs.Augmented {
	return tr.filt[t]
}
