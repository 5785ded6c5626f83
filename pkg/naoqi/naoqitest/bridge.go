// Package naoqitest provides an in-process fake of the robot proxy bridge.
//
// The fake speaks the same JSON wire protocol as the real bridge, keeps a
// minimal behavior/pose state, records every call, and supports fault
// injection per method.
package naoqitest

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/teslashibe/go-nao/pkg/geometry"
)

// Call is one recorded proxy call.
type Call struct {
	Module string
	Method string
	Args   []json.RawMessage
	Post   bool
}

// Fault is an error the bridge replies with instead of executing a method.
type Fault struct {
	Code    string
	Message string
}

// Bridge is a fake proxy bridge backed by httptest.Server.
type Bridge struct {
	server *httptest.Server

	mu         sync.Mutex
	modules    map[string]bool
	installed  []string
	running    []string
	postures   map[string]bool
	transforms map[string][]float64
	faults     map[string]Fault // key: module.method
	down       bool
	calls      []Call
	nextTask   int64
}

// NewBridge starts a fake bridge serving every module. It is closed when
// the test ends.
func NewBridge(t testing.TB) *Bridge {
	t.Helper()

	b := &Bridge{
		modules: map[string]bool{
			"ALMotion":          true,
			"ALRobotPosture":    true,
			"ALBehaviorManager": true,
			"ALTextToSpeech":    true,
		},
		postures: map[string]bool{
			"StandInit": true,
			"Stand":     true,
			"StandZero": true,
			"Sit":       true,
			"Crouch":    true,
		},
		transforms: map[string][]float64{
			"LLeg": geometry.FromTranslation(0, 0.05, 0.0).Slice(),
			"RLeg": geometry.FromTranslation(0, -0.05, 0.0).Slice(),
		},
		faults: make(map[string]Fault),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /proxy/{module}", b.handleHandshake)
	mux.HandleFunc("POST /proxy/{module}/call", b.handleCall)

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the base URL of the bridge.
func (b *Bridge) URL() string {
	return b.server.URL
}

// HostPort splits the listener address for naoqi.Config.
func (b *Bridge) HostPort() (string, int) {
	host, portStr, _ := net.SplitHostPort(b.server.Listener.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// SetInstalled replaces the set of installed behaviors.
func (b *Bridge) SetInstalled(names ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.installed = slices.Clone(names)
}

// SetRunning replaces the set of running behaviors.
func (b *Bridge) SetRunning(names ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = slices.Clone(names)
}

// Running returns the running behaviors.
func (b *Bridge) Running() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.running)
}

// SetTransform sets the pose returned by getTransform for an effector.
// A slice of the wrong length simulates a malformed reply.
func (b *Bridge) SetTransform(effector string, values []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transforms[effector] = slices.Clone(values)
}

// RemoveModule makes the handshake for module fail with 404.
func (b *Bridge) RemoveModule(module string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.modules, module)
}

// Fail makes module.method reply with the given wire error.
func (b *Bridge) Fail(module, method, code, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[module+"."+method] = Fault{Code: code, Message: message}
}

// SetDown makes every call reply 503 (connection lost behind the bridge).
func (b *Bridge) SetDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

// Calls returns the recorded calls in order.
func (b *Bridge) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// Methods returns "module.method" for every recorded call.
func (b *Bridge) Methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.calls))
	for _, c := range b.calls {
		out = append(out, c.Module+"."+c.Method)
	}
	return out
}

// Count returns how many times module.method was called.
func (b *Bridge) Count(module, method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Module == module && c.Method == method {
			n++
		}
	}
	return n
}

func (b *Bridge) handleHandshake(w http.ResponseWriter, r *http.Request) {
	module := r.PathValue("module")

	b.mu.Lock()
	ok := b.modules[module] && !b.down
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"module": module, "version": "2.8.6"})
}

type callRequest struct {
	Method string            `json:"method"`
	Args   []json.RawMessage `json:"args"`
	Post   bool              `json:"post"`
}

func (b *Bridge) handleCall(w http.ResponseWriter, r *http.Request) {
	module := r.PathValue("module")

	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_args", err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.down {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	b.calls = append(b.calls, Call{Module: module, Method: req.Method, Args: req.Args, Post: req.Post})

	if f, ok := b.faults[module+"."+req.Method]; ok {
		writeError(w, http.StatusOK, f.Code, f.Message)
		return
	}

	result, fault := b.execute(module, req.Method, req.Args)
	if fault != nil {
		writeError(w, http.StatusOK, fault.Code, fault.Message)
		return
	}

	if req.Post {
		b.nextTask++
		writeJSON(w, http.StatusOK, map[string]any{"task_id": b.nextTask})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

// execute applies a call to the fake state. Caller holds b.mu.
func (b *Bridge) execute(module, method string, args []json.RawMessage) (any, *Fault) {
	str := func(i int) string {
		var s string
		if i < len(args) {
			_ = json.Unmarshal(args[i], &s)
		}
		return s
	}

	switch module + "." + method {
	case "ALMotion.getTransform":
		tf, ok := b.transforms[str(0)]
		if !ok {
			return nil, &Fault{Code: "transform_unavailable", Message: "no pose for " + str(0)}
		}
		return tf, nil
	case "ALRobotPosture.goToPosture":
		return b.postures[str(0)], nil
	case "ALBehaviorManager.getInstalledBehaviors":
		return nonNil(b.installed), nil
	case "ALBehaviorManager.getRunningBehaviors":
		return nonNil(b.running), nil
	case "ALBehaviorManager.isBehaviorInstalled":
		return slices.Contains(b.installed, str(0)), nil
	case "ALBehaviorManager.isBehaviorRunning":
		return slices.Contains(b.running, str(0)), nil
	case "ALBehaviorManager.runBehavior":
		if !slices.Contains(b.running, str(0)) {
			b.running = append(b.running, str(0))
		}
		return nil, nil
	case "ALBehaviorManager.stopBehavior":
		b.running = slices.DeleteFunc(b.running, func(s string) bool { return s == str(0) })
		return nil, nil
	case "ALBehaviorManager.stopAllBehaviors":
		b.running = nil
		return nil, nil
	}
	return nil, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"code": code, "message": message}})
}
