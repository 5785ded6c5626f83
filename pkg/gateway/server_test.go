package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-nao/internal/log"
	"github.com/teslashibe/go-nao/pkg/behavior"
	"github.com/teslashibe/go-nao/pkg/catalog"
	"github.com/teslashibe/go-nao/pkg/choreography"
	"github.com/teslashibe/go-nao/pkg/naoqi"
	"github.com/teslashibe/go-nao/pkg/naoqi/naoqitest"
	"github.com/teslashibe/go-nao/pkg/runlog"
)

func newTestServer(t *testing.T) (*Server, *naoqitest.Bridge) {
	t.Helper()
	bridge := naoqitest.NewBridge(t)
	host, port := bridge.HostPort()

	client := naoqi.NewClient(naoqi.Config{Host: host, Port: port, Logger: log.Nop()})
	t.Cleanup(func() { client.Close() })

	s := NewServer(Config{
		Robot:         client,
		Logger:        log.Nop(),
		EngineOptions: []choreography.Option{choreography.WithSettleDelay(0)},
	})
	return s, bridge
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t)
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello, To The Point!", string(body))
}

func TestRobots(t *testing.T) {
	s, _ := newTestServer(t)

	status, body := do(t, s, http.MethodGet, "/robots", "")
	assert.Equal(t, http.StatusOK, status)
	robots := body["robots"].([]any)
	require.Len(t, robots, 2)
	assert.Equal(t, "Nao", robots[0].(map[string]any)["title"])

	status, body = do(t, s, http.MethodGet, "/robots/2", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Zora", body["robot"].(map[string]any)["title"])

	status, body = do(t, s, http.MethodGet, "/robots/3", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, body["code"])

	status, body = do(t, s, http.MethodGet, "/robots/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeInvalidRequest, body["code"])
}

func TestBehaviors_List(t *testing.T) {
	s, bridge := newTestServer(t)
	bridge.SetInstalled("wave", "dance")

	status, body := do(t, s, http.MethodGet, "/behaviors", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"dance", "wave"}, body["behaviors"])
}

func TestBehaviors_StartAndStop(t *testing.T) {
	s, bridge := newTestServer(t)
	bridge.SetInstalled("dance")

	status, body := do(t, s, http.MethodPost, "/behaviors/start", `{"behavior":"dance"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "dance", body["behavior"])
	assert.Equal(t, "started", body["status"])
	assert.Equal(t, []string{"dance"}, bridge.Running())

	status, body = do(t, s, http.MethodPost, "/behaviors/stop", `{"behavior":"dance"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "stopped", body["status"])
	assert.Empty(t, bridge.Running())

	status, body = do(t, s, http.MethodPost, "/behaviors/stop", `{"behavior":"dance"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotRunning, body["code"])
	assert.Equal(t, 1, bridge.Count(naoqi.ModuleBehaviorManager, "stopBehavior"))
}

func TestBehaviors_StartUnknown(t *testing.T) {
	s, bridge := newTestServer(t)
	bridge.SetInstalled("dance")

	status, body := do(t, s, http.MethodPost, "/behaviors/start", `{"behavior":"moonwalk"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, body["code"])
	assert.Zero(t, bridge.Count(naoqi.ModuleBehaviorManager, "runBehavior"))
}

func TestBehaviors_BadBody(t *testing.T) {
	s, bridge := newTestServer(t)

	for _, body := range []string{`{}`, `{"behavior":""}`, `not json`} {
		status, resp := do(t, s, http.MethodPost, "/behaviors/start", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, CodeInvalidRequest, resp["code"], body)
	}

	// no body at all
	status, _ := do(t, s, http.MethodPost, "/behaviors/stop", "")
	assert.Equal(t, http.StatusBadRequest, status)

	assert.Empty(t, bridge.Calls())
}

func TestBehaviors_StopAll(t *testing.T) {
	s, bridge := newTestServer(t)
	bridge.SetInstalled("dance", "wave")

	status, body := do(t, s, http.MethodGet, "/behaviors/stop/all", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNothingToStop, body["code"])
	assert.Zero(t, bridge.Count(naoqi.ModuleBehaviorManager, "stopAllBehaviors"))

	bridge.SetRunning("dance", "wave")
	status, body = do(t, s, http.MethodGet, "/behaviors/stop/all", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"dance", "wave"}, body["stopped"])
	assert.Empty(t, bridge.Running())
}

func TestGreet(t *testing.T) {
	s, bridge := newTestServer(t)

	status, body := do(t, s, http.MethodGet, "/greet/Bob", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hello Bob", body["said"])

	calls := bridge.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "say", calls[0].Method)
	assert.JSONEq(t, `"Hello Bob"`, string(calls[0].Args[0]))
}

func TestMove(t *testing.T) {
	s, bridge := newTestServer(t)

	status, body := do(t, s, http.MethodGet, "/move", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "moving", body["status"])

	assert.Equal(t, []string{"ALMotion.wakeUp", "ALMotion.moveInit", "ALMotion.moveTo"}, bridge.Methods())
	calls := bridge.Calls()
	assert.True(t, calls[2].Post)
	assert.JSONEq(t, `0.2`, string(calls[2].Args[0]))
}

var kickWire = []string{
	"ALMotion.wakeUp",
	"ALRobotPosture.goToPosture",
	"ALMotion.wbEnable",
	"ALMotion.wbFootState",
	"ALMotion.wbEnableBalanceConstraint",
	"ALMotion.wbGoToBalance",
	"ALMotion.wbFootState",
	"ALMotion.getTransform",
	"ALMotion.transformInterpolations",
	"ALMotion.wbEnableEffectorOptimization",
	"ALMotion.wbGoToBalance",
	"ALMotion.wbFootState",
	"ALMotion.getTransform",
	"ALMotion.transformInterpolations",
	"ALMotion.wbEnable",
	"ALRobotPosture.goToPosture",
	"ALMotion.rest",
}

func TestKick(t *testing.T) {
	s, bridge := newTestServer(t)

	status, body := do(t, s, http.MethodGet, "/kick", "")
	require.Equal(t, http.StatusOK, status, body)

	run := body["run"].(map[string]any)
	assert.Equal(t, "completed", run["outcome"])
	assert.Equal(t, "terminal", run["final_state"])
	assert.Equal(t, false, run["partial"])
	assert.Equal(t, kickWire, bridge.Methods())

	// journaled
	status, body = do(t, s, http.MethodGet, "/runs", "")
	assert.Equal(t, http.StatusOK, status)
	runs := body["runs"].([]any)
	require.Len(t, runs, 1)
	id := runs[0].(map[string]any)["id"].(string)
	assert.Equal(t, run["id"], id)

	status, body = do(t, s, http.MethodGet, "/runs/"+id, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "kick", body["run"].(map[string]any)["routine"])
}

func TestKick_TransformUnavailable(t *testing.T) {
	s, bridge := newTestServer(t)
	bridge.Fail(naoqi.ModuleMotion, "getTransform", naoqi.CodeTransformUnavailable, "no pose")

	status, body := do(t, s, http.MethodGet, "/kick", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, CodeTransformUnavailable, body["code"])
	assert.Equal(t, true, body["partial"])
	assert.Equal(t, "right_leg_moving", body["failed_state"])

	assert.Zero(t, bridge.Count(naoqi.ModuleMotion, "transformInterpolations"))
	assert.Equal(t, kickWire[:8], bridge.Methods())

	_, body = do(t, s, http.MethodGet, "/runs", "")
	runs := body["runs"].([]any)
	require.Len(t, runs, 1)
	rec := runs[0].(map[string]any)
	assert.Equal(t, "failed", rec["outcome"])
	assert.Equal(t, true, rec["partial"])
}

func TestKick_ModuleMissing(t *testing.T) {
	s, bridge := newTestServer(t)
	bridge.RemoveModule(naoqi.ModulePosture)

	status, body := do(t, s, http.MethodGet, "/kick", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, CodeConnection, body["code"])
	assert.Empty(t, bridge.Calls(), "no command before every capability is open")
}

func TestKick_RemoteDrop(t *testing.T) {
	s, bridge := newTestServer(t)

	// open the capabilities, then lose the robot behind the bridge
	status, _ := do(t, s, http.MethodGet, "/move", "")
	require.Equal(t, http.StatusOK, status)
	bridge.Fail(naoqi.ModuleMotion, "wakeUp", naoqi.CodeUnavailable, "robot went away")

	status, body := do(t, s, http.MethodGet, "/kick", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, CodeRemoteUnavailable, body["code"])
	assert.Equal(t, false, body["partial"])
}

func TestRuns_BadID(t *testing.T) {
	s, _ := newTestServer(t)

	status, body := do(t, s, http.MethodGet, "/runs/nope", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeInvalidRequest, body["code"])

	status, body = do(t, s, http.MethodGet, "/runs/6f1c1a52-5b44-4d5e-9d39-7b1a1c7f2f11", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, body["code"])

	status, _ = do(t, s, http.MethodGet, "/runs?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	status, body := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["busy"])

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "go_goroutines")
}

func TestUnknownRouteAndUpgrade(t *testing.T) {
	s, _ := newTestServer(t)

	status, body := do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, body["code"])

	status, body = do(t, s, http.MethodGet, "/ws/events", "")
	assert.Equal(t, http.StatusUpgradeRequired, status)
	assert.Equal(t, CodeUpgradeRequired, body["code"])
}

func TestCustomCatalog(t *testing.T) {
	s := NewServer(Config{
		Robot:   naoqi.NewClient(naoqi.DefaultConfig()),
		Catalog: catalog.New(catalog.Robot{ID: 9, Title: "Pepper"}),
		Runs:    runlog.NewMemoryStore(5),
		Logger:  log.Nop(),
	})

	status, body := do(t, s, http.MethodGet, "/robots/9", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Pepper", body["robot"].(map[string]any)["title"])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{ErrInvalidRequest, 400, CodeInvalidRequest},
		{behavior.ErrInvalidName, 400, CodeInvalidRequest},
		{catalog.ErrNotFound, 404, CodeNotFound},
		{fmt.Errorf("x: %w", behavior.ErrNotFound), 404, CodeNotFound},
		{runlog.ErrNotFound, 404, CodeNotFound},
		{behavior.ErrNotRunning, 404, CodeNotRunning},
		{behavior.ErrNothingToStop, 404, CodeNothingToStop},
		{choreography.ErrBusy, 409, CodeBusy},
		{&choreography.AbortError{Err: naoqi.ErrTransformUnavailable}, 500, CodeTransformUnavailable},
		{naoqi.ErrConnection, 503, CodeConnection},
		{naoqi.ErrRemoteUnavailable, 502, CodeRemoteUnavailable},
		{&naoqi.RemoteError{Code: naoqi.CodeBadArgs}, 502, CodeRemote},
		{errors.New("other"), 500, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.err.Error(), func(t *testing.T) {
			status, code := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
