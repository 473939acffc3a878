// Package posterior draws repeated latent paths and summarizes them.
package posterior

import (
	"context"
	"fmt"
	"sort"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/engine"
	"github.com/milosgajdos/go-ffbs/kalman/kf"
	"github.com/milosgajdos/go-ffbs/model"
	"github.com/milosgajdos/go-ffbs/smooth/bs"
	gomatrix "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Sample draws k latent paths of model m with initial condition ic.
// The forward filter runs once; every path is drawn by the backward sampler using noise n.
// It returns error if k is not positive or if the filter or any of the draws fails.
func Sample(ctx context.Context, m *model.DLM, ic ffbs.InitCond, n ffbs.Noise, k int, c *engine.Config) ([]*bs.Draw, error) {
	if k <= 0 {
		return nil, fmt.Errorf("invalid number of draws: %d", k)
	}

	if m == nil {
		return nil, fmt.Errorf("%w: missing model", ffbs.ErrDimensionMismatch)
	}

	if n == nil {
		return nil, fmt.Errorf("invalid noise: %v", n)
	}

	dim, _, steps := m.Dims()
	if err := engine.CheckBounds(steps, dim, c); err != nil {
		return nil, err
	}

	fc := &kf.Config{}
	if c != nil {
		fc.Stability = c.Stability
	}

	f, err := kf.New(m, ic, fc)
	if err != nil {
		return nil, err
	}

	tr, err := f.Trajectory(ctx)
	if err != nil {
		return nil, err
	}

	s, err := bs.New(m)
	if err != nil {
		return nil, err
	}

	draws := make([]*bs.Draw, k)
	for i := range draws {
		d, err := s.Draw(ctx, tr, n)
		if err != nil {
			return nil, fmt.Errorf("draw %d: %w", i, err)
		}
		draws[i] = d
	}

	return draws, nil
}

// Summary is a summary of latent path draws
type Summary struct {
	// Alpha is posterior mean of static state
	Alpha *mat.VecDense
	// Mean is posterior mean of dynamic state: column t holds the mean at time t
	Mean *mat.Dense
	// Cov stores posterior covariance of dynamic state at each time
	Cov []*mat.SymDense
}

// Summarize computes posterior mean and covariance of draws.
// It returns error if there are fewer than two draws or if the draws have different dimensions.
func Summarize(draws []*bs.Draw) (*Summary, error) {
	if len(draws) < 2 {
		return nil, fmt.Errorf("invalid number of draws: %d", len(draws))
	}

	k := len(draws)
	nb, cols := draws[0].Dynamic().Dims()
	na := draws[0].Static().Len()

	for i, d := range draws {
		r, c := d.Dynamic().Dims()
		if r != nb || c != cols || d.Static().Len() != na {
			return nil, fmt.Errorf("%w: draw %d dimensions", ffbs.ErrDimensionMismatch, i)
		}
	}

	alpha := mat.NewVecDense(na, nil)
	for _, d := range draws {
		alpha.AddVec(alpha, d.Static())
	}
	alpha.ScaleVec(1/float64(k), alpha)

	mean := mat.NewDense(nb, cols, nil)
	covs := make([]*mat.SymDense, cols)

	// x stores draws of a single time step in its columns
	x := mat.NewDense(nb, k, nil)
	for t := 0; t < cols; t++ {
		for i, d := range draws {
			x.ColView(i).(*mat.VecDense).CopyVec(d.Beta(t))
		}

		for j := 0; j < nb; j++ {
			mean.Set(j, t, floats.Sum(x.RawRowView(j))/float64(k))
		}

		cov, err := gomatrix.Cov(x, "cols")
		if err != nil {
			return nil, fmt.Errorf("failed to calculate covariance matrix: %v", err)
		}
		covs[t] = cov
	}

	return &Summary{
		Alpha: alpha,
		Mean:  mean,
		Cov:   covs,
	}, nil
}

// Quantile returns the q-th empirical quantile of dynamic coordinate j at time t across draws.
// It returns error if q is outside [0, 1] or if j or t are out of range.
func Quantile(draws []*bs.Draw, j, t int, q float64) (float64, error) {
	if len(draws) == 0 {
		return 0, fmt.Errorf("invalid number of draws: %d", len(draws))
	}

	if q < 0 || q > 1 {
		return 0, fmt.Errorf("invalid quantile: %f", q)
	}

	nb, cols := draws[0].Dynamic().Dims()
	if j < 0 || j >= nb || t < 0 || t >= cols {
		return 0, fmt.Errorf("%w: coordinate %d at time %d", ffbs.ErrDimensionMismatch, j, t)
	}

	vals := make([]float64, len(draws))
	for i, d := range draws {
		vals[i] = d.Beta(t).AtVec(j)
	}
	sort.Float64s(vals)

	return stat.Quantile(q, stat.Empirical, vals, nil), nil
}
