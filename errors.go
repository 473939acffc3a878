package ffbs

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when input shapes are inconsistent with the declared dimensions.
	ErrDimensionMismatch = errors.New("ffbs: dimension mismatch")
	// ErrNonPositiveVariance is returned when a forecast variance is not strictly positive.
	ErrNonPositiveVariance = errors.New("ffbs: non-positive variance")
	// ErrNotPositiveDefinite is returned when a Cholesky factorization fails.
	ErrNotPositiveDefinite = errors.New("ffbs: matrix not positive definite")
	// ErrOutOfRange is returned when the number of steps or the state dimension exceeds the configured bound.
	ErrOutOfRange = errors.New("ffbs: size out of range")
)

// Phase is a pipeline phase
type Phase int

const (
	// Uninitialized means nothing has run yet
	Uninitialized Phase = iota
	// Filtering means forward filter is running
	Filtering
	// Filtered means forward filter has finished
	Filtered
	// Sampling means backward sampler is running
	Sampling
	// Done means the path has been drawn
	Done
)

// String implements the Stringer interface.
func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Filtering:
		return "filtering"
	case Filtered:
		return "filtered"
	case Sampling:
		return "sampling"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// StepError is an error which occurred at a particular step of a pipeline phase.
type StepError struct {
	// Phase is the phase the error occurred in
	Phase Phase
	// Step is the time step
	Step int
	// Err is the underlying error
	Err error
}

// Error implements error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s step %d: %v", e.Phase, e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}
