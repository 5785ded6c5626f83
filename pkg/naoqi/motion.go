package naoqi

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-nao/pkg/geometry"
)

// motionProxy implements Motion over ALMotion.
type motionProxy struct {
	p *proxy
}

func (m *motionProxy) WakeUp(ctx context.Context) error {
	return m.p.call(ctx, "wakeUp", nil)
}

func (m *motionProxy) Rest(ctx context.Context) error {
	return m.p.call(ctx, "rest", nil)
}

func (m *motionProxy) MoveInit(ctx context.Context) error {
	return m.p.call(ctx, "moveInit", nil)
}

// MoveTo walks by (dx, dy) metres and turns dtheta radians. Fire-and-forget.
func (m *motionProxy) MoveTo(ctx context.Context, dx, dy, dtheta float64) error {
	return m.p.post(ctx, "moveTo", dx, dy, dtheta)
}

// GetTransform reads the current pose of an effector. A reply that is not a
// finite 4x4 matrix is reported as ErrTransformUnavailable so callers never
// plan from garbage.
func (m *motionProxy) GetTransform(ctx context.Context, effector Effector, frame Frame, useSensorValues bool) (geometry.Transform, error) {
	var values []float64
	if err := m.p.call(ctx, "getTransform", &values, effector, frame, useSensorValues); err != nil {
		return geometry.Transform{}, err
	}

	tf, err := geometry.FromSlice(values)
	if err != nil {
		return geometry.Transform{}, fmt.Errorf("%w: %s in %s frame: %v", ErrTransformUnavailable, effector, frame, err)
	}
	if !tf.IsFinite() {
		return geometry.Transform{}, fmt.Errorf("%w: %s in %s frame: non-finite values", ErrTransformUnavailable, effector, frame)
	}
	return tf, nil
}

func (m *motionProxy) SetWholeBodyBalance(ctx context.Context, enabled bool) error {
	return m.p.call(ctx, "wbEnable", nil, enabled)
}

func (m *motionProxy) SetFootState(ctx context.Context, effector Effector, state FootState) error {
	return m.p.call(ctx, "wbFootState", nil, state, effector)
}

func (m *motionProxy) EnableBalanceConstraint(ctx context.Context, enabled bool, support Effector) error {
	return m.p.call(ctx, "wbEnableBalanceConstraint", nil, enabled, support)
}

// GoToBalance shifts the centre of mass over support in the given time.
func (m *motionProxy) GoToBalance(ctx context.Context, support Effector, seconds float64) error {
	return m.p.call(ctx, "wbGoToBalance", nil, support, seconds)
}

// InterpolateTransforms drives effector through waypoints at the given
// times. Fire-and-forget: the trajectory executes asynchronously.
func (m *motionProxy) InterpolateTransforms(ctx context.Context, effector Effector, frame Frame, waypoints []geometry.Transform, mask AxisMask, times []float64) error {
	if len(waypoints) == 0 || len(waypoints) != len(times) {
		return fmt.Errorf("naoqi: %d waypoints with %d times", len(waypoints), len(times))
	}
	return m.p.post(ctx, "transformInterpolations", effector, frame, waypoints, mask, times)
}

func (m *motionProxy) EnableEffectorOptimization(ctx context.Context, effector Effector, active bool) error {
	return m.p.call(ctx, "wbEnableEffectorOptimization", nil, effector, active)
}
