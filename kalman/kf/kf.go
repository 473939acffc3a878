package kf

import (
	"context"
	"fmt"
	"math"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/estimate"
	"github.com/milosgajdos/go-ffbs/matrix"
	"github.com/milosgajdos/go-ffbs/model"
	gomatrix "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// Stability is covariance update policy
type Stability int

const (
	// Simple updates covariance as C = R - K*Q*K'
	Simple Stability = iota
	// Joseph updates covariance in Joseph form C = (I-K*x')*R*(I-K*x')' + K*V*K'
	Joseph
)

// String implements the Stringer interface.
func (s Stability) String() string {
	switch s {
	case Simple:
		return "simple"
	case Joseph:
		return "joseph"
	default:
		return fmt.Sprintf("Stability(%d)", int(s))
	}
}

// Config is KF configuration
type Config struct {
	// Stability is covariance update policy
	Stability Stability
}

// KF is Kalman Filter of a dynamic linear model
type KF struct {
	// m is KF model
	m *model.DLM
	// init is initial condition
	init *estimate.Base
	// c is KF configuration
	c Config
	// q is forecast variance of the last update
	q float64
	// inn is innovation of the last update
	inn float64
	// k is Kalman gain of the last update
	k *mat.VecDense
}

// New creates new KF and returns it.
// It accepts the following parameters:
//   - m:      dynamic linear model
//   - init:   initial condition of the filter i.e. prior mean and covariance
//   - c:      KF configuration; nil means default configuration
//
// It returns error if the initial condition does not match the model dimensions.
func New(m *model.DLM, init ffbs.InitCond, c *Config) (*KF, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: missing model", ffbs.ErrDimensionMismatch)
	}

	if err := m.CheckInitCond(init); err != nil {
		return nil, err
	}

	if c == nil {
		c = &Config{}
	}

	if c.Stability != Simple && c.Stability != Joseph {
		return nil, fmt.Errorf("invalid covariance update policy: %v", c.Stability)
	}

	est, err := estimate.NewBase(m.Partition(), init.State(), init.Cov())
	if err != nil {
		return nil, err
	}

	n, _, _ := m.Dims()

	return &KF{
		m:    m,
		init: est,
		c:    *c,
		k:    mat.NewVecDense(n, nil),
	}, nil
}

// Predict propagates filtered estimate est at step t-1 to step t and returns the predictive estimate.
// It returns error if est dimensions do not match the model.
func (k *KF) Predict(t int, est ffbs.Augmented) (ffbs.Augmented, error) {
	if err := k.checkStep(t); err != nil {
		return nil, err
	}

	a, err := k.m.Propagate(est.Val())
	if err != nil {
		return nil, fmt.Errorf("state propagation failed: %w", err)
	}

	r, err := k.m.PropagateCov(est.Cov())
	if err != nil {
		return nil, fmt.Errorf("covariance propagation failed: %w", err)
	}

	return estimate.NewBase(k.m.Partition(), a, r)
}

// Update corrects predictive estimate pred at step t using observation t-1 and returns filtered estimate.
// It returns ffbs.ErrNonPositiveVariance if the observation variance is negative
// or if the forecast variance is not strictly positive. Zero observation variance is allowed.
func (k *KF) Update(t int, pred ffbs.Augmented) (ffbs.Augmented, error) {
	if err := k.checkStep(t); err != nil {
		return nil, err
	}

	n, _, _ := k.m.Dims()

	a := pred.Val()
	r := pred.Cov()
	if a.Len() != n || r.SymmetricDim() != n {
		return nil, fmt.Errorf("%w: invalid predictive estimate", ffbs.ErrDimensionMismatch)
	}

	x := k.m.Row(t - 1)
	v := k.m.ObsVar(t - 1)
	if v < 0 || math.IsNaN(v) {
		return nil, fmt.Errorf("%w: observation variance %g", ffbs.ErrNonPositiveVariance, v)
	}

	// one step ahead forecast
	f, err := k.m.Observe(a, t-1)
	if err != nil {
		return nil, fmt.Errorf("failed to observe system output: %w", err)
	}

	// R*x
	rx := mat.NewVecDense(n, nil)
	rx.MulVec(r, x)

	// x'*R*x + V
	q := mat.Dot(x, rx) + v
	if !(q > 0) {
		return nil, fmt.Errorf("%w: forecast variance %g", ffbs.ErrNonPositiveVariance, q)
	}

	// K = R*x/Q
	gain := mat.NewVecDense(n, nil)
	gain.ScaleVec(1/q, rx)

	inn := k.m.Obs(t-1) - f

	// m = a + K*e
	m := mat.NewVecDense(n, nil)
	m.AddScaledVec(a, inn, gain)

	var c *mat.SymDense
	switch k.c.Stability {
	case Joseph:
		c, err = joseph(r, gain, x, v)
		if err != nil {
			return nil, err
		}
	default:
		// R - K*Q*K' == R - (R*x)(R*x)'/Q
		c = mat.NewSymDense(n, nil)
		c.SymRankOne(r, -1/q, rx)
	}

	k.q = q
	k.inn = inn
	k.k.CopyVec(gain)

	return estimate.NewBase(k.m.Partition(), m, c)
}

// joseph computes Joseph form covariance update (I-K*x')*R*(I-K*x')' + K*V*K'.
func joseph(r mat.Symmetric, gain, x mat.Vector, v float64) (*mat.SymDense, error) {
	n := r.SymmetricDim()

	eye, err := gomatrix.NewDenseValIdentity(n, 1.0)
	if err != nil {
		return nil, err
	}

	// I - K*x'
	a := &mat.Dense{}
	a.Outer(1.0, gain, x)
	a.Sub(eye, a)

	ar := &mat.Dense{}
	ar.Mul(a, r)
	ara := &mat.Dense{}
	ara.Mul(ar, a.T())

	// K*V*K'
	kvk := &mat.Dense{}
	kvk.Outer(v, gain, gain)
	ara.Add(ara, kvk)

	return matrix.Symmetrize(ara), nil
}

// Run runs the forward filter over all model observations and returns the filter trajectory.
// Context ctx is checked at the start of every step.
// It returns error if any of the filter steps fails; no partial trajectory is returned.
func (k *KF) Run(ctx context.Context) (ffbs.Trajectory, error) {
	tr, err := k.run(ctx)
	if err != nil {
		return nil, err
	}

	return tr, nil
}

// Trajectory runs the forward filter and returns the concrete filter trajectory.
func (k *KF) Trajectory(ctx context.Context) (*Trajectory, error) {
	return k.run(ctx)
}

func (k *KF) run(ctx context.Context) (*Trajectory, error) {
	_, _, steps := k.m.Dims()
	tr := newTrajectory(k.m.Partition(), steps)
	tr.filt[0] = k.init

	for t := 1; t <= steps; t++ {
		if err := ctx.Err(); err != nil {
			return nil, &ffbs.StepError{Phase: ffbs.Filtering, Step: t, Err: err}
		}

		pred, err := k.Predict(t, tr.filt[t-1])
		if err != nil {
			return nil, &ffbs.StepError{Phase: ffbs.Filtering, Step: t, Err: err}
		}

		est, err := k.Update(t, pred)
		if err != nil {
			return nil, &ffbs.StepError{Phase: ffbs.Filtering, Step: t, Err: err}
		}

		tr.pred[t] = pred.(*estimate.Base)
		tr.filt[t] = est.(*estimate.Base)
	}

	return tr, nil
}

func (k *KF) checkStep(t int) error {
	if _, _, steps := k.m.Dims(); t < 1 || t > steps {
		return fmt.Errorf("invalid step %d: must be in [1, %d]", t, steps)
	}

	return nil
}

// Model returns KF model
func (k *KF) Model() *model.DLM {
	return k.m
}

// Config returns KF configuration
func (k *KF) Config() Config {
	return k.c
}

// Gain returns Kalman gain of the last update
func (k *KF) Gain() mat.Vector {
	gain := &mat.VecDense{}
	gain.CloneFromVec(k.k)

	return gain
}

// Innovation returns forecast error of the last update
func (k *KF) Innovation() float64 {
	return k.inn
}

// ForecastVar returns forecast variance of the last update
func (k *KF) ForecastVar() float64 {
	return k.q
}
