// Package sim simulates data from dynamic linear models and plots latent paths.
package sim

import (
	"fmt"
	"math"

	"github.com/milosgajdos/go-ffbs/model"
	"github.com/milosgajdos/go-ffbs/state"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultPriorVar is default variance of the simulated model prior
const DefaultPriorVar = 10.0

// Params are simulation parameters
type Params struct {
	// Static is number of static coefficients
	Static int
	// Dynamic is number of dynamic coefficients
	Dynamic int
	// Steps is number of observations
	Steps int
	// Mu is long run mean of the dynamic state
	Mu []float64
	// Phi is persistence of the dynamic state
	Phi []float64
	// W is innovation covariance of the dynamic state
	W mat.Symmetric
	// V is observation noise variance
	V float64
	// Alpha is static state; nil draws it from standard normal distribution
	Alpha []float64
	// Intercept sets the first design column to ones
	Intercept bool
	// PriorVar is variance of the model prior; non-positive means DefaultPriorVar
	PriorVar float64
}

// Data is simulated data
type Data struct {
	// Model is the simulated model
	Model *model.DLM
	// InitCond is diffuse prior centred at the long run mean
	InitCond *model.InitCond
	// Alpha is simulated static state
	Alpha *mat.VecDense
	// Beta stores simulated dynamic state: column t holds the state at time t
	Beta *mat.Dense
}

// Simulate draws static state, dynamic state path and observations from the model given by p.
// Design matrix entries are drawn from standard normal distribution.
// Dynamic state at time 0 is drawn from the stationary distribution when all |phi| < 1,
// otherwise it is set to the long run mean.
// It returns error if the parameters are invalid or W is not positive definite.
func Simulate(p Params, src rand.Source) (*Data, error) {
	part, err := state.New(p.Static+p.Dynamic, p.Dynamic)
	if err != nil {
		return nil, err
	}

	if p.Steps <= 0 {
		return nil, fmt.Errorf("invalid number of steps: %d", p.Steps)
	}

	if !(p.V > 0) {
		return nil, fmt.Errorf("invalid observation variance: %f", p.V)
	}

	if p.Alpha != nil && len(p.Alpha) != p.Static {
		return nil, fmt.Errorf("invalid static state length: %d", len(p.Alpha))
	}

	if p.Mu != nil && len(p.Mu) != p.Dynamic {
		return nil, fmt.Errorf("invalid long run mean length: %d", len(p.Mu))
	}

	// nil mean is zero mean
	muVec := mat.NewVecDense(p.Dynamic, nil)
	if p.Mu != nil {
		muVec.CopyVec(mat.NewVecDense(p.Dynamic, p.Mu))
	}

	var phiVec mat.Vector = &mat.VecDense{}
	if len(p.Phi) > 0 {
		phiVec = mat.NewVecDense(len(p.Phi), p.Phi)
	}

	ev, err := model.NewEvolution(part, muVec, phiVec, p.W)
	if err != nil {
		return nil, err
	}

	mu := muVec.RawVector().Data
	zeros := make([]float64, p.Dynamic)
	innov, ok := distmv.NewNormal(zeros, p.W, src)
	if !ok {
		return nil, fmt.Errorf("innovation covariance not positive definite")
	}

	std := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	obs := distuv.Normal{Mu: 0, Sigma: math.Sqrt(p.V), Src: src}

	alpha := mat.NewVecDense(max(p.Static, 1), nil)
	for i := 0; i < p.Static; i++ {
		if p.Alpha != nil {
			alpha.SetVec(i, p.Alpha[i])
			continue
		}
		alpha.SetVec(i, std.Rand())
	}

	beta := mat.NewDense(p.Dynamic, p.Steps+1, nil)
	beta0, err := initial(mu, p.Phi, p.W, src)
	if err != nil {
		return nil, err
	}
	beta.SetCol(0, beta0)

	w := make([]float64, p.Dynamic)
	for t := 1; t <= p.Steps; t++ {
		innov.Rand(w)
		for i := 0; i < p.Dynamic; i++ {
			prev := beta.At(i, t-1)
			beta.Set(i, t, mu[i]+p.Phi[i]*(prev-mu[i])+w[i])
		}
	}

	var static mat.Vector
	if part.HasStatic() {
		static = alpha.SliceVec(0, p.Static)
	}

	n := part.N()
	x := mat.NewDense(p.Steps, n, nil)
	z := mat.NewVecDense(p.Steps, nil)
	v := mat.NewVecDense(p.Steps, nil)
	for t := 0; t < p.Steps; t++ {
		for j := 0; j < n; j++ {
			x.Set(t, j, std.Rand())
		}
		if p.Intercept {
			x.Set(t, 0, 1.0)
		}

		theta, err := part.Join(static, beta.ColView(t+1))
		if err != nil {
			return nil, err
		}
		z.SetVec(t, mat.Dot(x.RowView(t), theta)+obs.Rand())
		v.SetVec(t, p.V)
	}

	m, err := model.NewDLM(z, x, v, ev)
	if err != nil {
		return nil, err
	}

	return &Data{
		Model:    m,
		InitCond: prior(part, mu, p.PriorVar),
		Alpha:    alpha,
		Beta:     beta,
	}, nil
}

// initial draws the initial dynamic state
func initial(mu, phi []float64, w mat.Symmetric, src rand.Source) ([]float64, error) {
	beta0 := append([]float64(nil), mu...)

	nb := len(mu)
	for i := 0; i < nb; i++ {
		if math.Abs(phi[i]) >= 1 {
			return beta0, nil
		}
	}

	// stationary covariance of the diagonal AR(1) system
	cov := mat.NewSymDense(nb, nil)
	for i := 0; i < nb; i++ {
		for j := i; j < nb; j++ {
			cov.SetSym(i, j, w.At(i, j)/(1-phi[i]*phi[j]))
		}
	}

	dist, ok := distmv.NewNormal(mu, cov, src)
	if !ok {
		return nil, fmt.Errorf("stationary covariance not positive definite")
	}

	return dist.Rand(nil), nil
}

func prior(p state.Partition, mu []float64, v float64) *model.InitCond {
	if v <= 0 {
		v = DefaultPriorVar
	}

	n := p.N()
	m0 := mat.NewVecDense(n, nil)
	p.DynamicVec(m0).CopyVec(mat.NewVecDense(len(mu), mu))

	c0 := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		c0.SetSym(i, i, v)
	}

	return model.NewInitCond(m0, c0)
}
