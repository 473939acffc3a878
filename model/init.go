package model

import "gonum.org/v1/gonum/mat"

// InitCond implements ffbs.InitCond
type InitCond struct {
	state *mat.VecDense
	cov   *mat.SymDense
}

// NewInitCond creates new InitCond from prior mean m0 and prior covariance c0 and returns it
func NewInitCond(m0 mat.Vector, c0 mat.Symmetric) *InitCond {
	s := &mat.VecDense{}
	s.CloneFromVec(m0)

	c := mat.NewSymDense(c0.SymmetricDim(), nil)
	c.CopySym(c0)

	return &InitCond{
		state: s,
		cov:   c,
	}
}

// State returns initial state
func (c *InitCond) State() mat.Vector {
	state := mat.NewVecDense(c.state.Len(), nil)
	state.CopyVec(c.state)

	return state
}

// Cov returns initial covariance
func (c *InitCond) Cov() mat.Symmetric {
	cov := mat.NewSymDense(c.cov.SymmetricDim(), nil)
	cov.CopySym(c.cov)

	return cov
}
