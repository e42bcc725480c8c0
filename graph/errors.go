package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStep is returned when a topology state has no bound step.
	ErrNoStep = errors.New("no step bound to state")

	// ErrStepLimit is returned when a run executes more steps than allowed.
	ErrStepLimit = errors.New("step limit reached")

	// ErrInvalidTurn is returned when a step produces a malformed turn.
	ErrInvalidTurn = errors.New("step produced an invalid turn")
)

// StepError wraps the error of the step that ended a run.
type StepError struct {
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("error in step %s: %v", e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
