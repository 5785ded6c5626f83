package behavior

import "errors"

var (
	// ErrNotFound is returned when a behavior is not installed on the robot.
	ErrNotFound = errors.New("behavior: not installed")

	// ErrNotRunning is returned when stopping a behavior that is not running.
	ErrNotRunning = errors.New("behavior: not running")

	// ErrNothingToStop is returned by StopAll when no behavior is running.
	ErrNothingToStop = errors.New("behavior: nothing to stop")

	// ErrInvalidName is returned for an empty behavior name.
	ErrInvalidName = errors.New("behavior: invalid name")
)
