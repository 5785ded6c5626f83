package naoqi_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-nao/internal/log"
	"github.com/teslashibe/go-nao/pkg/geometry"
	"github.com/teslashibe/go-nao/pkg/naoqi"
	"github.com/teslashibe/go-nao/pkg/naoqi/naoqitest"
)

func newClient(t *testing.T, bridge *naoqitest.Bridge) *naoqi.Client {
	t.Helper()
	host, port := bridge.HostPort()
	c := naoqi.NewClient(naoqi.Config{
		Host:           host,
		Port:           port,
		CallTimeout:    2 * time.Second,
		ConnectTimeout: time.Second,
		Logger:         log.Nop(),
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestConnect_Unreachable(t *testing.T) {
	// Port 1 on loopback is never served.
	c := naoqi.NewClient(naoqi.Config{Host: "127.0.0.1", Port: 1, ConnectTimeout: 200 * time.Millisecond, Logger: log.Nop()})

	_, err := c.ConnectMotion(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, naoqi.ErrConnection)
}

func TestConnect_MissingModule(t *testing.T) {
	bridge := naoqitest.NewBridge(t)
	bridge.RemoveModule(naoqi.ModuleSpeech)
	c := newClient(t, bridge)

	_, err := c.ConnectSpeech(context.Background())
	assert.ErrorIs(t, err, naoqi.ErrConnection)

	_, err = c.ConnectMotion(context.Background())
	assert.NoError(t, err)
}

func TestConnect_PooledPerCapability(t *testing.T) {
	bridge := naoqitest.NewBridge(t)
	c := newClient(t, bridge)
	ctx := context.Background()

	assert.False(t, c.Connected(naoqi.ModuleMotion))

	_, err := c.ConnectMotion(ctx)
	require.NoError(t, err)
	assert.True(t, c.Connected(naoqi.ModuleMotion))
	assert.False(t, c.Connected(naoqi.ModulePosture))
}

func TestRemoteDrop_EvictsOnlyThatCapability(t *testing.T) {
	bridge := naoqitest.NewBridge(t)
	c := newClient(t, bridge)
	ctx := context.Background()

	motion, err := c.ConnectMotion(ctx)
	require.NoError(t, err)
	speech, err := c.ConnectSpeech(ctx)
	require.NoError(t, err)

	bridge.SetDown(true)
	err = motion.WakeUp(ctx)
	assert.ErrorIs(t, err, naoqi.ErrRemoteUnavailable)
	assert.False(t, c.Connected(naoqi.ModuleMotion))
	assert.True(t, c.Connected(naoqi.ModuleSpeech))

	bridge.SetDown(false)
	require.NoError(t, speech.Say(ctx, "still here"))

	motion, err = c.ConnectMotion(ctx)
	require.NoError(t, err)
	assert.NoError(t, motion.WakeUp(ctx))
}

func TestGetTransform(t *testing.T) {
	bridge := naoqitest.NewBridge(t)
	c := newClient(t, bridge)
	ctx := context.Background()

	want := geometry.FromTranslation(0.02, -0.05, 0.01)
	bridge.SetTransform("RLeg", want.Slice())

	motion, err := c.ConnectMotion(ctx)
	require.NoError(t, err)

	got, err := motion.GetTransform(ctx, naoqi.EffectorRightLeg, naoqi.FrameWorld, false)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	calls := bridge.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "getTransform", last.Method)
	require.Len(t, last.Args, 3)
	assert.JSONEq(t, `"RLeg"`, string(last.Args[0]))
	assert.JSONEq(t, `1`, string(last.Args[1]))
	assert.JSONEq(t, `false`, string(last.Args[2]))
}

func TestGetTransform_Unavailable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *naoqitest.Bridge)
	}{
		{"remote reports not ready", func(b *naoqitest.Bridge) {
			b.Fail(naoqi.ModuleMotion, "getTransform", naoqi.CodeTransformUnavailable, "sensors not ready")
		}},
		{"malformed matrix", func(b *naoqitest.Bridge) {
			b.SetTransform("RLeg", []float64{1, 2, 3})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := naoqitest.NewBridge(t)
			tt.setup(bridge)
			c := newClient(t, bridge)
			ctx := context.Background()

			motion, err := c.ConnectMotion(ctx)
			require.NoError(t, err)

			_, err = motion.GetTransform(ctx, naoqi.EffectorRightLeg, naoqi.FrameWorld, false)
			assert.ErrorIs(t, err, naoqi.ErrTransformUnavailable)
			assert.NotErrorIs(t, err, naoqi.ErrRemoteUnavailable)
			assert.True(t, c.Connected(naoqi.ModuleMotion), "a pose read failure must not drop the connection")
		})
	}
}

func TestInterpolateTransforms_IsPosted(t *testing.T) {
	bridge := naoqitest.NewBridge(t)
	c := newClient(t, bridge)
	ctx := context.Background()

	motion, err := c.ConnectMotion(ctx)
	require.NoError(t, err)

	path := []geometry.Transform{geometry.Identity(), geometry.FromTranslation(0.05, 0, 0.05)}
	require.NoError(t, motion.InterpolateTransforms(ctx, naoqi.EffectorLeftLeg, naoqi.FrameWorld, path, naoqi.AxisMaskAll, []float64{1, 2}))

	calls := bridge.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "transformInterpolations", last.Method)
	assert.True(t, last.Post)
	require.Len(t, last.Args, 5)
	assert.JSONEq(t, `63`, string(last.Args[3]))

	var waypoints [][]float64
	require.NoError(t, json.Unmarshal(last.Args[2], &waypoints))
	require.Len(t, waypoints, 2)
	assert.Len(t, waypoints[1], geometry.Size)

	err = motion.InterpolateTransforms(ctx, naoqi.EffectorLeftLeg, naoqi.FrameWorld, path, naoqi.AxisMaskAll, []float64{1})
	assert.Error(t, err)
}

func TestGoToPosture(t *testing.T) {
	bridge := naoqitest.NewBridge(t)
	c := newClient(t, bridge)
	ctx := context.Background()

	posture, err := c.ConnectPosture(ctx)
	require.NoError(t, err)

	assert.NoError(t, posture.GoToPosture(ctx, "StandInit", 0.5))

	err = posture.GoToPosture(ctx, "Handstand", 0.5)
	var remoteErr *naoqi.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, naoqi.CodePostureUnreachable, remoteErr.Code)
	assert.ErrorIs(t, err, naoqi.ErrRemote)

	assert.Error(t, posture.GoToPosture(ctx, "StandInit", 0))
}

func TestBehaviorManager(t *testing.T) {
	bridge := naoqitest.NewBridge(t)
	bridge.SetInstalled("dance", "wave")
	c := newClient(t, bridge)
	ctx := context.Background()

	bm, err := c.ConnectBehaviorManager(ctx)
	require.NoError(t, err)

	installed, err := bm.ListInstalled(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"dance", "wave"}, installed)

	ok, err := bm.IsInstalled(ctx, "dance")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, bm.RunBehavior(ctx, "dance"))
	running, err := bm.IsRunning(ctx, "dance")
	require.NoError(t, err)
	assert.True(t, running)

	require.NoError(t, bm.StopBehavior(ctx, "dance"))
	names, err := bm.ListRunning(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRemoteError_Unknown(t *testing.T) {
	bridge := naoqitest.NewBridge(t)
	bridge.Fail(naoqi.ModuleSpeech, "say", naoqi.CodeUnknownMethod, "no such method")
	c := newClient(t, bridge)
	ctx := context.Background()

	speech, err := c.ConnectSpeech(ctx)
	require.NoError(t, err)

	err = speech.Say(ctx, "hello")
	assert.ErrorIs(t, err, naoqi.ErrRemote)
	assert.NotErrorIs(t, err, naoqi.ErrRemoteUnavailable)
	assert.Contains(t, err.Error(), "ALTextToSpeech.say")
}
