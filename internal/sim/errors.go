package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNonFinite indicates the energetics left the finite range.
	ErrNonFinite = errors.New("sim: non-finite energy")

	ErrNoParticles = errors.New("sim: no particles to restart from")
)

// StepError wraps a failure with the index of the step that produced it.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
