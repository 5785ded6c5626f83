package choreography

import (
	"context"
	"fmt"
	"sync"

	"github.com/teslashibe/go-nao/pkg/geometry"
	"github.com/teslashibe/go-nao/pkg/naoqi"
)

// interpolation is a recorded InterpolateTransforms call.
type interpolation struct {
	effector  naoqi.Effector
	frame     naoqi.Frame
	waypoints []geometry.Transform
	mask      naoqi.AxisMask
	times     []float64
}

// mockRobot records every Motion and Posture call in order.
type mockRobot struct {
	mu             sync.Mutex
	calls          []string
	interpolations []interpolation
	transforms     map[naoqi.Effector]geometry.Transform
	fail           map[string]error

	// block, when set, is waited on inside WakeUp.
	block chan struct{}
}

func newMockRobot() *mockRobot {
	return &mockRobot{
		transforms: map[naoqi.Effector]geometry.Transform{
			naoqi.EffectorLeftLeg:  geometry.FromTranslation(0, 0.05, 0),
			naoqi.EffectorRightLeg: geometry.FromTranslation(0, -0.05, 0),
		},
		fail: make(map[string]error),
	}
}

func (m *mockRobot) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return m.fail[call]
}

func (m *mockRobot) failOn(call string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[call] = err
}

func (m *mockRobot) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockRobot) WakeUp(ctx context.Context) error {
	if m.block != nil {
		<-m.block
	}
	return m.record("WakeUp")
}

func (m *mockRobot) Rest(ctx context.Context) error {
	return m.record("Rest")
}

func (m *mockRobot) MoveInit(ctx context.Context) error {
	return m.record("MoveInit")
}

func (m *mockRobot) MoveTo(ctx context.Context, dx, dy, dtheta float64) error {
	return m.record(fmt.Sprintf("MoveTo %v %v %v", dx, dy, dtheta))
}

func (m *mockRobot) GetTransform(ctx context.Context, effector naoqi.Effector, frame naoqi.Frame, useSensorValues bool) (geometry.Transform, error) {
	if err := m.record(fmt.Sprintf("GetTransform %s %s %v", effector, frame, useSensorValues)); err != nil {
		return geometry.Transform{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transforms[effector], nil
}

func (m *mockRobot) SetWholeBodyBalance(ctx context.Context, enabled bool) error {
	return m.record(fmt.Sprintf("SetWholeBodyBalance %v", enabled))
}

func (m *mockRobot) SetFootState(ctx context.Context, effector naoqi.Effector, state naoqi.FootState) error {
	return m.record(fmt.Sprintf("SetFootState %s %s", effector, state))
}

func (m *mockRobot) EnableBalanceConstraint(ctx context.Context, enabled bool, support naoqi.Effector) error {
	return m.record(fmt.Sprintf("EnableBalanceConstraint %v %s", enabled, support))
}

func (m *mockRobot) GoToBalance(ctx context.Context, support naoqi.Effector, seconds float64) error {
	return m.record(fmt.Sprintf("GoToBalance %s %v", support, seconds))
}

func (m *mockRobot) InterpolateTransforms(ctx context.Context, effector naoqi.Effector, frame naoqi.Frame, waypoints []geometry.Transform, mask naoqi.AxisMask, times []float64) error {
	if err := m.record(fmt.Sprintf("InterpolateTransforms %s", effector)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interpolations = append(m.interpolations, interpolation{effector, frame, waypoints, mask, times})
	return nil
}

func (m *mockRobot) EnableEffectorOptimization(ctx context.Context, effector naoqi.Effector, active bool) error {
	return m.record(fmt.Sprintf("EnableEffectorOptimization %s %v", effector, active))
}

func (m *mockRobot) GoToPosture(ctx context.Context, name string, speed float64) error {
	return m.record(fmt.Sprintf("GoToPosture %s %v", name, speed))
}

// settler records the settle point into the same call log.
func (m *mockRobot) settler() Settler {
	return SettlerFunc(func(ctx context.Context) error {
		return m.record("Settle")
	})
}
