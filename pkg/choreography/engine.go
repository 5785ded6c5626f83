// Package choreography sequences compound physical actions on the robot.
//
// The kick routine balances the robot on one leg at a time and swings the
// free leg through a planned path. The sequence is strictly ordered, runs to
// completion once started, and aborts on the first remote failure without
// issuing any further command. An aborted kick leaves the robot wherever it
// was; the returned AbortError says whether it had already moved.
package choreography

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-nao/pkg/naoqi"
)

// KickPolicy holds every tunable of the kick sequence.
type KickPolicy struct {
	StartPosture   string
	StartSpeed     float64
	EndPosture     string
	EndSpeed       float64
	BalanceSeconds float64

	// Times are the waypoint timestamps, in seconds from trajectory start.
	Times           []float64
	Frame           naoqi.Frame
	AxisMask        naoqi.AxisMask
	UseSensorValues bool
	Path            PathPolicy
}

// DefaultKickPolicy returns the reference kick.
func DefaultKickPolicy() KickPolicy {
	return KickPolicy{
		StartPosture:    "StandInit",
		StartSpeed:      0.5,
		EndPosture:      "StandInit",
		EndSpeed:        0.3,
		BalanceSeconds:  2.0,
		Times:           []float64{2.0, 2.7, 4.5},
		Frame:           naoqi.FrameWorld,
		AxisMask:        naoqi.AxisMaskAll,
		UseSensorValues: false,
		Path:            DefaultPathPolicy(),
	}
}

// Engine runs routines against the robot, one at a time.
type Engine struct {
	policy   KickPolicy
	settler  Settler
	observer Observer
	logger   *slog.Logger
	now      func() time.Time

	busy atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy overrides the kick policy.
func WithPolicy(p KickPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithSettler overrides how the engine waits for trajectories to finish.
func WithSettler(s Settler) Option {
	return func(e *Engine) {
		e.settler = s
	}
}

// WithSettleDelay uses a TimerSettler with the given delay.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.settler = TimerSettler{Delay: d}
	}
}

// WithObserver registers a transition callback.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an engine with the default kick policy and a 1 second
// settle delay.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		policy:  DefaultKickPolicy(),
		settler: TimerSettler{Delay: time.Second},
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the kick policy in use.
func (e *Engine) Policy() KickPolicy {
	return e.policy
}

// Busy reports whether a routine is in progress.
func (e *Engine) Busy() bool {
	return e.busy.Load()
}

func (e *Engine) acquire() bool {
	return e.busy.CompareAndSwap(false, true)
}

func (e *Engine) release() {
	e.busy.Store(false)
}

// Result describes a finished or aborted routine.
type Result struct {
	RunID       uuid.UUID    `json:"run_id"`
	Routine     string       `json:"routine"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Final       State        `json:"final_state"`
	Transitions []Transition `json:"transitions"`
}

// run tracks one execution of a sequence.
type run struct {
	e      *Engine
	result *Result
	state  State
	issued int
}

func (e *Engine) newRun(routine string) *run {
	return &run{
		e: e,
		result: &Result{
			RunID:     uuid.New(),
			Routine:   routine,
			StartedAt: e.now(),
		},
		state: StateIdle,
	}
}

// enter records a transition into next.
func (r *run) enter(next State, cause error) {
	t := Transition{
		RunID: r.result.RunID,
		From:  r.state,
		To:    next,
		At:    r.e.now(),
	}
	if cause != nil {
		t.Err = cause.Error()
	}
	r.state = next
	r.result.Transitions = append(r.result.Transitions, t)
	if r.e.observer != nil {
		r.e.observer(t)
	}
}

// cmd counts an acknowledged actuator command.
func (r *run) cmd(err error) error {
	if err == nil {
		r.issued++
	}
	return err
}

// abort moves straight to StateTerminal and wraps err. Partial reflects
// whether any actuator command had been acknowledged.
func (r *run) abort(failed State, err error) *AbortError {
	r.enter(StateTerminal, err)
	r.finish()
	return &AbortError{State: failed, Partial: r.issued > 0, Err: err}
}

func (r *run) finish() {
	r.result.Final = r.state
	r.result.FinishedAt = r.e.now()
}

// step is one state of a sequence and the commands it issues on entry.
type step struct {
	state State
	do    func(ctx context.Context) error
}

// execute walks steps in order. Every step must succeed before the next
// one is entered.
func (r *run) execute(ctx context.Context, steps []step) error {
	for _, s := range steps {
		r.enter(s.state, nil)
		r.e.logger.Debug("choreography step", "run_id", r.result.RunID, "routine", r.result.Routine, "state", s.state)
		if err := s.do(ctx); err != nil {
			return r.abort(s.state, err)
		}
	}
	r.enter(StateTerminal, nil)
	r.finish()
	return nil
}
