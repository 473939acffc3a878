// Package flat runs FFBS on flat column-major buffers.
//
// It validates the buffers, re-presents them as matrices and vectors and
// delegates to the engine. Output buffers are allocated by the caller and are
// written only when the whole run succeeds.
package flat

import (
	"context"
	"fmt"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/engine"
	"github.com/milosgajdos/go-ffbs/matrix"
	"github.com/milosgajdos/go-ffbs/model"
	"github.com/milosgajdos/go-ffbs/state"
	"gonum.org/v1/gonum/mat"
)

// Input holds FFBS input buffers.
// Matrices are stored in column-major order.
type Input struct {
	// Z stores observations (T)
	Z []float64
	// X is design matrix (T*N): column j holds T values of covariate j
	X []float64
	// Mu stores dynamic state long-run mean (Nb)
	Mu []float64
	// Phi stores dynamic state persistence (Nb)
	Phi []float64
	// W is dynamic state innovation covariance (Nb*Nb); it must be symmetric
	W []float64
	// V stores observation noise variances (T)
	V []float64
	// M0 is prior mean (N)
	M0 []float64
	// C0 is prior covariance (N*N); it must be symmetric
	C0 []float64
	// Nb is dynamic state dimension
	Nb int
	// N is augmented state dimension
	N int
	// T is number of observations
	T int
}

// Output holds FFBS output buffers.
type Output struct {
	// Alpha stores static state draw (max(N-Nb, 1))
	Alpha []float64
	// Beta stores dynamic state draws (Nb*(T+1)): column t holds the dynamic state at time t
	Beta []float64
}

// FFBS draws a single latent path from the posterior of the model given by in and writes it to out.
// Noise n provides standard normal draws to the backward sampler; c configures the engine.
// It returns ffbs.ErrOutOfRange before touching any buffer if the dimensions exceed the engine bounds
// and ffbs.ErrDimensionMismatch if any of the buffers has invalid length.
// The output buffers are left untouched when FFBS returns error.
func FFBS(ctx context.Context, out Output, in Input, n ffbs.Noise, c *engine.Config) error {
	if err := engine.CheckBounds(in.T, in.N, c); err != nil {
		return err
	}

	if err := check(out, in); err != nil {
		return err
	}

	m, ic, err := Model(in)
	if err != nil {
		return err
	}

	res, err := engine.Run(ctx, m, ic, n, c)
	if err != nil {
		return err
	}

	if in.N > in.Nb {
		alpha := res.Draw.Static()
		for i := range out.Alpha {
			out.Alpha[i] = alpha.AtVec(i)
		}
	}
	matrix.ColMajor(out.Beta, res.Draw.Dynamic())

	return nil
}

// Model creates model and initial condition from input buffers.
func Model(in Input) (*model.DLM, *model.InitCond, error) {
	p, err := state.New(in.N, in.Nb)
	if err != nil {
		return nil, nil, err
	}

	w, err := matrix.SymColMajor(in.Nb, in.W)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: W: %v", ffbs.ErrDimensionMismatch, err)
	}

	ev, err := model.NewEvolution(p, vec(in.Mu), vec(in.Phi), w)
	if err != nil {
		return nil, nil, err
	}

	x, err := matrix.DenseColMajor(in.T, in.N, in.X)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: X: %v", ffbs.ErrDimensionMismatch, err)
	}

	m, err := model.NewDLM(vec(in.Z), x, vec(in.V), ev)
	if err != nil {
		return nil, nil, err
	}

	c0, err := matrix.SymColMajor(in.N, in.C0)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: C0: %v", ffbs.ErrDimensionMismatch, err)
	}

	ic := model.NewInitCond(vec(in.M0), c0)
	if err := m.CheckInitCond(ic); err != nil {
		return nil, nil, err
	}

	return m, ic, nil
}

func check(out Output, in Input) error {
	if in.T <= 0 || in.Nb <= 0 || in.N < in.Nb {
		return fmt.Errorf("%w: T=%d, N=%d, Nb=%d", ffbs.ErrDimensionMismatch, in.T, in.N, in.Nb)
	}

	na := in.N - in.Nb
	if na < 1 {
		na = 1
	}

	for _, b := range []struct {
		name string
		data []float64
		size int
	}{
		{"z", in.Z, in.T},
		{"X", in.X, in.T * in.N},
		{"mu", in.Mu, in.Nb},
		{"phi", in.Phi, in.Nb},
		{"W", in.W, in.Nb * in.Nb},
		{"V", in.V, in.T},
		{"m0", in.M0, in.N},
		{"C0", in.C0, in.N * in.N},
		{"alpha", out.Alpha, na},
		{"beta", out.Beta, in.Nb * (in.T + 1)},
	} {
		if len(b.data) != b.size {
			return fmt.Errorf("%w: %s buffer length %d != %d", ffbs.ErrDimensionMismatch, b.name, len(b.data), b.size)
		}
	}

	return nil
}

// vec wraps data in a vector; it returns an empty vector for empty data.
func vec(data []float64) *mat.VecDense {
	if len(data) == 0 {
		return &mat.VecDense{}
	}

	return mat.NewVecDense(len(data), data)
}
