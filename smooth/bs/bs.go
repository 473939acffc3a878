package bs

import (
	"context"
	"fmt"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/matrix"
	"github.com/milosgajdos/go-ffbs/model"
	"github.com/milosgajdos/go-ffbs/rand"
	"github.com/milosgajdos/go-ffbs/state"
	"gonum.org/v1/gonum/mat"
)

// BS is backward sampler of a dynamic linear model.
// It draws the latent state path from its joint posterior given a forward filter trajectory.
type BS struct {
	// p is state partition
	p state.Partition
	// phi is persistence of the dynamic state
	phi []float64
}

// New creates new backward sampler for model m and returns it.
// It returns error if the model is nil.
func New(m *model.DLM) (*BS, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: missing model", ffbs.ErrDimensionMismatch)
	}

	return &BS{
		p:   m.Partition(),
		phi: m.Evolution().Phi(),
	}, nil
}

// Sample draws a single latent path from trajectory tr using standard normal noise n.
// It implements ffbs.Sampler.
func (s *BS) Sample(ctx context.Context, tr ffbs.Trajectory, n ffbs.Noise) (ffbs.Path, error) {
	d, err := s.Draw(ctx, tr, n)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Draw draws a single latent path from trajectory tr using standard normal noise n and returns it.
//
// It first draws the terminal augmented state from its filtered distribution and then
// walks backward in time drawing every dynamic state from its distribution conditional
// on the dynamic state drawn for the following time step:
//
//	A    = R_t^-1 * diag(phi) * C_{t-1}
//	m_bs = m_{t-1} + A' * (beta_t - a_t)
//	V_bs = C_{t-1} - A' * R_t * A
//
// where all the moments are restricted to the dynamic state.
// It returns ffbs.ErrNotPositiveDefinite if any of the Cholesky factorizations fails.
// No draw is returned on error.
func (s *BS) Draw(ctx context.Context, tr ffbs.Trajectory, n ffbs.Noise) (*Draw, error) {
	if tr == nil || n == nil {
		return nil, fmt.Errorf("invalid trajectory or noise")
	}

	steps := tr.Len()
	if steps < 1 {
		return nil, fmt.Errorf("%w: empty trajectory", ffbs.ErrDimensionMismatch)
	}

	if l := tr.Filtered(steps).Val().Len(); l != s.p.N() {
		return nil, fmt.Errorf("%w: trajectory state dimension %d != %d", ffbs.ErrDimensionMismatch, l, s.p.N())
	}

	if l := tr.Filtered(steps).Dynamic().Len(); l != s.p.Dynamic {
		return nil, fmt.Errorf("%w: trajectory dynamic state dimension %d != %d", ffbs.ErrDimensionMismatch, l, s.p.Dynamic)
	}

	d := newDraw(s.p, steps)

	// terminal augmented state
	last := tr.Filtered(steps)
	theta, err := rand.WithCov(last.Val(), last.Cov(), n, nil)
	if err != nil {
		return nil, &ffbs.StepError{Phase: ffbs.Sampling, Step: steps, Err: fmt.Errorf("terminal state: %w", err)}
	}

	if s.p.HasStatic() {
		d.alpha.CopyVec(s.p.StaticVec(theta))
	}
	d.col(steps).CopyVec(s.p.DynamicVec(theta))

	for t := steps; t > 0; t-- {
		if err := ctx.Err(); err != nil {
			return nil, &ffbs.StepError{Phase: ffbs.Sampling, Step: t, Err: err}
		}

		beta, err := s.step(tr.Predicted(t), tr.Filtered(t-1), d.col(t), n)
		if err != nil {
			return nil, &ffbs.StepError{Phase: ffbs.Sampling, Step: t, Err: err}
		}
		d.col(t - 1).CopyVec(beta)
	}

	return d, nil
}

// step draws dynamic state at t-1 given the dynamic state beta drawn at t.
func (s *BS) step(pred, filt ffbs.Augmented, beta mat.Vector, n ffbs.Noise) (*mat.VecDense, error) {
	rsub := pred.DynamicCov()
	csub := filt.DynamicCov()

	// R * A = diag(phi) * C
	a, err := rand.CholSolve(rsub, matrix.ScaleRows(s.phi, csub))
	if err != nil {
		return nil, fmt.Errorf("smoothing gain: %w", err)
	}

	// e = beta_t - a_t
	e := mat.NewVecDense(s.p.Dynamic, nil)
	e.SubVec(beta, pred.Dynamic())

	// m_bs = m_{t-1} + A'*e
	mbs := mat.NewVecDense(s.p.Dynamic, nil)
	mbs.MulVec(a.T(), e)
	mbs.AddVec(filt.Dynamic(), mbs)

	// V_bs = C - A'*R*A
	ra := &mat.Dense{}
	ra.Mul(rsub, a)
	vbs := &mat.Dense{}
	vbs.Mul(a.T(), ra)
	vbs.Sub(csub, vbs)

	x, err := rand.WithCov(mbs, matrix.Symmetrize(vbs), n, nil)
	if err != nil {
		return nil, fmt.Errorf("conditional state: %w", err)
	}

	return x, nil
}
