package naoqi

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote failures. Callers classify with errors.Is.
var (
	// ErrConnection is returned when a capability cannot be opened because
	// the endpoint is unreachable or the module is not served.
	ErrConnection = errors.New("naoqi: connection failed")

	// ErrTransformUnavailable is returned when the current pose of an
	// effector cannot be read (sensor or model data not ready).
	ErrTransformUnavailable = errors.New("naoqi: transform unavailable")

	// ErrRemoteUnavailable is returned when an established connection drops
	// or times out mid-call. It is not retried.
	ErrRemoteUnavailable = errors.New("naoqi: remote unavailable")

	// ErrRemote is returned for application errors reported by a module.
	ErrRemote = errors.New("naoqi: remote error")
)

// Wire error codes reported by the proxy bridge.
const (
	CodeTransformUnavailable = "transform_unavailable"
	CodeUnavailable          = "unavailable"
	CodeUnknownMethod        = "unknown_method"
	CodeBadArgs              = "bad_args"
	CodePostureUnreachable   = "posture_unreachable"
)

// RemoteError is an error reported by a remote module.
type RemoteError struct {
	Module  string
	Method  string
	Code    string
	Message string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("naoqi [%s.%s]: %s: %s", e.Module, e.Method, e.Code, e.Message)
}

// Unwrap maps the wire code onto a sentinel.
func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case CodeTransformUnavailable:
		return ErrTransformUnavailable
	case CodeUnavailable:
		return ErrRemoteUnavailable
	default:
		return ErrRemote
	}
}
