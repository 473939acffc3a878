package model

import (
	"fmt"

	ffbs "github.com/milosgajdos/go-ffbs"
	"github.com/milosgajdos/go-ffbs/matrix"
	"github.com/milosgajdos/go-ffbs/state"
	"gonum.org/v1/gonum/mat"
)

// DLM is a dynamic linear model with scalar observations:
//
//	z_t = x_t'*theta_t + eps_t,  eps_t ~ N(0, V_t)
//
// where theta_t is the augmented state evolving according to Evolution.
type DLM struct {
	// ev is state evolution
	ev *Evolution
	// z stores observations
	z *mat.VecDense
	// x is design matrix: row t maps augmented state to the mean of z[t]
	x *mat.Dense
	// v stores observation noise variances
	v *mat.VecDense
}

// NewDLM creates new DLM and returns it.
// It accepts the following parameters:
//   - z:  observations (T)
//   - x:  design matrix (T x N)
//   - v:  observation variances (T)
//   - ev: augmented state evolution
//
// It returns ffbs.ErrDimensionMismatch if the dimensions of the parameters are not consistent.
func NewDLM(z mat.Vector, x mat.Matrix, v mat.Vector, ev *Evolution) (*DLM, error) {
	if z == nil || x == nil || v == nil || ev == nil {
		return nil, fmt.Errorf("%w: missing model parameters", ffbs.ErrDimensionMismatch)
	}

	t := z.Len()
	if t <= 0 {
		return nil, fmt.Errorf("%w: no observations", ffbs.ErrDimensionMismatch)
	}

	rows, cols := x.Dims()
	if rows != t || cols != ev.Partition().N() {
		return nil, fmt.Errorf("%w: design matrix dimensions [%d x %d] != [%d x %d]",
			ffbs.ErrDimensionMismatch, rows, cols, t, ev.Partition().N())
	}

	if v.Len() != t {
		return nil, fmt.Errorf("%w: V length %d != %d", ffbs.ErrDimensionMismatch, v.Len(), t)
	}

	return &DLM{
		ev: ev,
		z:  mat.VecDenseCopyOf(z),
		x:  mat.DenseCopyOf(x),
		v:  mat.VecDenseCopyOf(v),
	}, nil
}

// Dims returns augmented state dimension n, dynamic state dimension nb and number of observations t.
func (m *DLM) Dims() (n, nb, t int) {
	p := m.ev.Partition()
	return p.N(), p.Dynamic, m.z.Len()
}

// Partition returns state partition
func (m *DLM) Partition() state.Partition {
	return m.ev.Partition()
}

// Evolution returns state evolution
func (m *DLM) Evolution() *Evolution {
	return m.ev
}

// Row returns design row of observation t.
func (m *DLM) Row(t int) mat.Vector {
	return m.x.RowView(t)
}

// Obs returns observation t.
func (m *DLM) Obs(t int) float64 {
	return m.z.AtVec(t)
}

// ObsVar returns observation noise variance of observation t.
func (m *DLM) ObsVar(t int) float64 {
	return m.v.AtVec(t)
}

// CheckInitCond checks if the initial condition matches model dimensions.
func (m *DLM) CheckInitCond(ic ffbs.InitCond) error {
	if ic == nil {
		return fmt.Errorf("%w: missing initial condition", ffbs.ErrDimensionMismatch)
	}

	n := m.Partition().N()
	if ic.State().Len() != n || ic.Cov().SymmetricDim() != n {
		return fmt.Errorf("%w: initial condition [%d, %d x %d] != %d", ffbs.ErrDimensionMismatch,
			ic.State().Len(), ic.Cov().SymmetricDim(), ic.Cov().SymmetricDim(), n)
	}

	return nil
}

// Propagate propagates augmented state mean x to the next step:
//
//	a = phi .* x + (1 - phi) .* mu
//
// It returns error if x has invalid dimension.
func (m *DLM) Propagate(x mat.Vector) (*mat.VecDense, error) {
	n := m.Partition().N()
	if x.Len() != n {
		return nil, fmt.Errorf("%w: invalid state vector length: %d", ffbs.ErrDimensionMismatch, x.Len())
	}

	phi, mu := m.ev.phi, m.ev.mu
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, phi[i]*x.AtVec(i)+(1-phi[i])*mu[i])
	}

	return out, nil
}

// PropagateCov propagates augmented state covariance c to the next step:
//
//	R = diag(phi)*c*diag(phi) + W
//
// It returns error if c has invalid dimensions.
func (m *DLM) PropagateCov(c mat.Symmetric) (*mat.SymDense, error) {
	n := m.Partition().N()
	if c.SymmetricDim() != n {
		return nil, fmt.Errorf("%w: invalid covariance dimension: %d", ffbs.ErrDimensionMismatch, c.SymmetricDim())
	}

	return matrix.DiagScaleSym(nil, m.ev.phi, c, m.ev.w), nil
}

// Observe returns the mean of observation t given augmented state x.
// It returns error if x has invalid dimension.
func (m *DLM) Observe(x mat.Vector, t int) (float64, error) {
	if x.Len() != m.Partition().N() {
		return 0, fmt.Errorf("%w: invalid state vector length: %d", ffbs.ErrDimensionMismatch, x.Len())
	}

	return mat.Dot(m.Row(t), x), nil
}
