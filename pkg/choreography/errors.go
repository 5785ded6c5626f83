package choreography

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a routine is started while another one is still
// driving the robot.
var ErrBusy = errors.New("choreography: a routine is already running")

// AbortError reports a sequence that stopped before completion.
type AbortError struct {
	// State is the step that failed.
	State State
	// Partial is true when the robot had already acted, so it may be left
	// in an intermediate (possibly balancing) configuration.
	Partial bool
	Err     error
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	if e.Partial {
		return fmt.Sprintf("choreography: aborted at %s, robot in intermediate state: %v", e.State, e.Err)
	}
	return fmt.Sprintf("choreography: aborted at %s before any motion: %v", e.State, e.Err)
}

// Unwrap returns the underlying remote error.
func (e *AbortError) Unwrap() error {
	return e.Err
}
