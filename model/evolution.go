package model

import (
	"fmt"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/state"
	"gonum.org/v1/gonum/mat"
)

// Evolution holds state evolution parameters of the augmented state.
//
// The dynamic coefficients follow a stationary AR(1) process around mu:
//
//	beta_t = mu + phi*(beta_{t-1} - mu) + w_t,  w_t ~ N(0, W)
//
// whereas the static coefficients never change. Evolution embeds the
// dynamic parameters into the trailing coordinates of the augmented state;
// the leading static coordinates get persistence 1, mean 0 and no noise.
type Evolution struct {
	// p is state partition
	p state.Partition
	// phi is augmented persistence
	phi []float64
	// mu is augmented long run mean
	mu []float64
	// w is augmented innovation covariance
	w *mat.SymDense
}

// NewEvolution assembles augmented evolution parameters and returns them.
// It accepts the following parameters:
//   - p:   state partition
//   - mu:  long run mean of the dynamic state (N_b)
//   - phi: persistence of the dynamic state (N_b)
//   - w:   innovation covariance of the dynamic state (N_b x N_b)
//
// It returns ffbs.ErrDimensionMismatch if the partition is invalid or if
// any of the parameters does not have the dynamic state dimension.
func NewEvolution(p state.Partition, mu, phi mat.Vector, w mat.Symmetric) (*Evolution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if mu == nil || phi == nil || w == nil {
		return nil, fmt.Errorf("%w: missing evolution parameters", ffbs.ErrDimensionMismatch)
	}

	nb := p.Dynamic
	if mu.Len() != nb {
		return nil, fmt.Errorf("%w: mu length %d != %d", ffbs.ErrDimensionMismatch, mu.Len(), nb)
	}

	if phi.Len() != nb {
		return nil, fmt.Errorf("%w: phi length %d != %d", ffbs.ErrDimensionMismatch, phi.Len(), nb)
	}

	if w.SymmetricDim() != nb {
		return nil, fmt.Errorf("%w: W dimensions [%d x %d] != %d", ffbs.ErrDimensionMismatch, w.SymmetricDim(), w.SymmetricDim(), nb)
	}

	n := p.N()
	bigPhi := make([]float64, n)
	bigMu := make([]float64, n)
	bigW := mat.NewSymDense(n, nil)

	for i := 0; i < p.Static; i++ {
		bigPhi[i] = 1.0
	}

	for i := 0; i < nb; i++ {
		bigPhi[p.Static+i] = phi.AtVec(i)
		bigMu[p.Static+i] = mu.AtVec(i)
	}

	p.DynamicCov(bigW).CopySym(w)

	return &Evolution{
		p:   p,
		phi: bigPhi,
		mu:  bigMu,
		w:   bigW,
	}, nil
}

// Partition returns state partition
func (e *Evolution) Partition() state.Partition {
	return e.p
}

// Persistence returns augmented persistence vector
func (e *Evolution) Persistence() []float64 {
	phi := make([]float64, len(e.phi))
	copy(phi, e.phi)

	return phi
}

// Phi returns persistence of the dynamic state
func (e *Evolution) Phi() []float64 {
	phi := make([]float64, e.p.Dynamic)
	copy(phi, e.phi[e.p.Static:])

	return phi
}

// Mean returns augmented long run mean
func (e *Evolution) Mean() []float64 {
	mu := make([]float64, len(e.mu))
	copy(mu, e.mu)

	return mu
}

// Cov returns augmented innovation covariance
func (e *Evolution) Cov() mat.Symmetric {
	cov := mat.NewSymDense(e.w.SymmetricDim(), nil)
	cov.CopySym(e.w)

	return cov
}
