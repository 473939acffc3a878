// Package engine runs Forward-Filtering Backward-Sampling of a dynamic linear model.
//
// A single call to Run runs the forward Kalman filter over all observations
// and then draws one latent path from its joint posterior with the backward
// sampler. The two phases always run in this order; any failure aborts the
// call and no partial result is returned.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/kalman/kf"
	"github.com/milosgajdos/go-ffbs/model"
	"github.com/milosgajdos/go-ffbs/smooth/bs"
)

const (
	// DefaultMaxSteps is the default maximum number of observations
	DefaultMaxSteps = 10000
	// DefaultMaxDim is the default maximum augmented state dimension
	DefaultMaxDim = 1000
)

// Phase is pipeline phase carried by ffbs.StepError
type Phase = ffbs.Phase

const (
	// Uninitialized means nothing has run yet
	Uninitialized = ffbs.Uninitialized
	// Filtering means forward filter is running
	Filtering = ffbs.Filtering
	// Filtered means forward filter has finished
	Filtered = ffbs.Filtered
	// Sampling means backward sampler is running
	Sampling = ffbs.Sampling
	// Done means the path has been drawn
	Done = ffbs.Done
)

// Config is engine configuration
type Config struct {
	// MaxSteps is maximum number of observations; non-positive means DefaultMaxSteps
	MaxSteps int
	// MaxDim is maximum augmented state dimension; non-positive means DefaultMaxDim
	MaxDim int
	// Stability is forward filter covariance update policy
	Stability kf.Stability
	// Logger logs pipeline phases; nil discards the logs
	Logger *slog.Logger
}

func (c *Config) withDefaults() Config {
	var cfg Config
	if c != nil {
		cfg = *c
	}

	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}

	if cfg.MaxDim <= 0 {
		cfg.MaxDim = DefaultMaxDim
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return cfg
}

// CheckBounds checks if steps observations of an n-dimensional augmented state fit into bounds of config c.
// nil config checks default bounds.
// It returns ffbs.ErrOutOfRange if either of the bounds is exceeded.
func CheckBounds(steps, n int, c *Config) error {
	cfg := c.withDefaults()

	if steps > cfg.MaxSteps || n > cfg.MaxDim {
		return fmt.Errorf("%w: T=%d (max %d), N=%d (max %d)", ffbs.ErrOutOfRange, steps, cfg.MaxSteps, n, cfg.MaxDim)
	}

	return nil
}

// Result is FFBS result
type Result struct {
	// Draw is the sampled latent path
	Draw *bs.Draw
	// Trajectory is the forward filter trajectory the path was drawn from
	Trajectory *kf.Trajectory
}

// Run runs forward filter on model m with initial condition ic and draws a single latent path
// using standard normal noise n. Noise n is used by the backward sampler only.
// Context ctx is checked at every filter and sampler step.
// It returns error if any of the phases fails; it returns ffbs.ErrOutOfRange
// without running anything if the model exceeds the bounds of config c.
func Run(ctx context.Context, m *model.DLM, ic ffbs.InitCond, n ffbs.Noise, c *Config) (*Result, error) {
	cfg := c.withDefaults()
	log := cfg.Logger

	if m == nil {
		return nil, fmt.Errorf("%w: missing model", ffbs.ErrDimensionMismatch)
	}

	if n == nil {
		return nil, fmt.Errorf("invalid noise: %v", n)
	}

	dim, nb, steps := m.Dims()
	if err := CheckBounds(steps, dim, &cfg); err != nil {
		log.Warn("refusing to run", "steps", steps, "dim", dim, "err", err)
		return nil, err
	}

	phase := Uninitialized
	f, err := kf.New(m, ic, &kf.Config{Stability: cfg.Stability})
	if err != nil {
		log.Debug("filter setup failed", "phase", phase, "err", err)
		return nil, err
	}

	phase = Filtering
	log.Debug("phase", "phase", phase, "steps", steps, "dim", dim, "dynamic", nb, "stability", cfg.Stability)

	tr, err := f.Trajectory(ctx)
	if err != nil {
		log.Debug("phase failed", "phase", phase, "err", err)
		return nil, err
	}

	phase = Filtered
	log.Debug("phase", "phase", phase)

	s, err := bs.New(m)
	if err != nil {
		return nil, err
	}

	phase = Sampling
	log.Debug("phase", "phase", phase)

	d, err := s.Draw(ctx, tr, n)
	if err != nil {
		log.Debug("phase failed", "phase", phase, "err", err)
		return nil, err
	}

	phase = Done
	log.Debug("phase", "phase", phase)

	return &Result{
		Draw:       d,
		Trajectory: tr,
	}, nil
}
