package kalman

import (
	"context"

	ffbs "github.com/milosgajdos/go-ffbs"
	"gonum.org/v1/gonum/mat"
)

// Kalman is Kalman Filter of a dynamic linear model with scalar observations
type Kalman interface {
	// ffbs.Filter is dynamic linear model filter
	ffbs.Filter
	// Run runs the filter over all observations and returns the trajectory
	Run(context.Context) (ffbs.Trajectory, error)
	// Gain returns Kalman gain of the last update
	Gain() mat.Vector
}
