package ffbs

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Noise is a source of independent standard normal draws
type Noise interface {
	// Sample returns n independent N(0,1) draws
	Sample(n int) mat.Vector
	// Reset resets the noise to its initial state
	Reset()
}

// InitCond is initial state condition of the filter
type InitCond interface {
	// State returns initial filter state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is dynamical system filter estimate
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Augmented is an estimate of the augmented (static, dynamic) state
type Augmented interface {
	// Estimate is augmented state estimate
	Estimate
	// Static returns the static part of the estimate value
	Static() mat.Vector
	// Dynamic returns the dynamic part of the estimate value
	Dynamic() mat.Vector
	// DynamicCov returns the dynamic block of the estimate covariance
	DynamicCov() mat.Symmetric
}

// Filter is a forward filter of a dynamic linear model.
// Time steps t are 1-based: step t consumes observation t-1.
type Filter interface {
	// Predict predicts the state at step t from the filtered estimate at t-1
	Predict(t int, est Augmented) (Augmented, error)
	// Update corrects the predicted estimate at step t with observation t-1
	Update(t int, pred Augmented) (Augmented, error)
}

// Trajectory is a forward filter trajectory of a dynamic linear model
type Trajectory interface {
	// Len returns the number of filtered steps
	Len() int
	// Predicted returns the predictive estimate at step t in 1..Len()
	Predicted(t int) Augmented
	// Filtered returns the filtered estimate at step t in 0..Len()
	Filtered(t int) Augmented
}

// Path is a sampled latent state path
type Path interface {
	// Static returns the static state draw
	Static() mat.Vector
	// Dynamic returns dynamic state draws stored in columns, one per time step
	Dynamic() mat.Matrix
}

// Sampler draws latent state paths from a filter trajectory
type Sampler interface {
	// Sample draws a single path from tr using the noise source n
	Sample(ctx context.Context, tr Trajectory, n Noise) (Path, error)
}
