package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for dynamics operations.
var (
	// ErrInvalidState indicates a dipole pose or velocity holds NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the dipoles were thrown out of any sensible range.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates a headless run was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// StepError wraps an error with the step and dipole it was detected at.
type StepError struct {
	Step    int
	Time    float64
	Dipole  int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) dipole %d: %v", e.Step, e.Time, e.Dipole, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
