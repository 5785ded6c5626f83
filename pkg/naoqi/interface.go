// Package naoqi is a client for the NAO robot middleware proxy bridge.
//
// Each remote subsystem is exposed as a small capability interface:
// Motion, Posture, BehaviorManager and Speech. Consumers should depend only
// on the capabilities they actually use. A Client opens and pools one
// connection per capability against a single multiplexed endpoint.
//
// Fire-and-forget commands (MoveTo, InterpolateTransforms, RunBehavior)
// return once the bridge has accepted them; physical completion happens
// later on the robot and is not observed.
package naoqi

import (
	"context"

	"github.com/teslashibe/go-nao/pkg/geometry"
)

// Motion controls locomotion, whole-body balance and effector trajectories.
type Motion interface {
	WakeUp(ctx context.Context) error
	Rest(ctx context.Context) error
	MoveInit(ctx context.Context) error
	MoveTo(ctx context.Context, dx, dy, dtheta float64) error
	GetTransform(ctx context.Context, effector Effector, frame Frame, useSensorValues bool) (geometry.Transform, error)
	SetWholeBodyBalance(ctx context.Context, enabled bool) error
	SetFootState(ctx context.Context, effector Effector, state FootState) error
	EnableBalanceConstraint(ctx context.Context, enabled bool, support Effector) error
	GoToBalance(ctx context.Context, support Effector, seconds float64) error
	InterpolateTransforms(ctx context.Context, effector Effector, frame Frame, waypoints []geometry.Transform, mask AxisMask, times []float64) error
	EnableEffectorOptimization(ctx context.Context, effector Effector, active bool) error
}

// Posture drives the robot into named, pre-calibrated configurations.
type Posture interface {
	GoToPosture(ctx context.Context, name string, speed float64) error
}

// BehaviorManager queries and controls behaviors installed on the robot.
type BehaviorManager interface {
	ListInstalled(ctx context.Context) ([]string, error)
	IsInstalled(ctx context.Context, name string) (bool, error)
	IsRunning(ctx context.Context, name string) (bool, error)
	ListRunning(ctx context.Context) ([]string, error)
	RunBehavior(ctx context.Context, name string) error
	StopBehavior(ctx context.Context, name string) error
	StopAll(ctx context.Context) error
}

// Speech speaks text aloud. Say blocks until the utterance completes.
type Speech interface {
	Say(ctx context.Context, text string) error
}

// Connector opens capabilities. Client implements it.
type Connector interface {
	ConnectMotion(ctx context.Context) (Motion, error)
	ConnectPosture(ctx context.Context) (Posture, error)
	ConnectBehaviorManager(ctx context.Context) (BehaviorManager, error)
	ConnectSpeech(ctx context.Context) (Speech, error)
}

// Ensure Client implements Connector
var _ Connector = (*Client)(nil)
