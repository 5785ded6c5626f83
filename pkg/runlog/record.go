// Package runlog journals choreography runs so their outcome can be
// inspected after the request that started them has returned.
package runlog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-nao/pkg/choreography"
)

// ErrNotFound is returned for an unknown run id.
var ErrNotFound = errors.New("runlog: run not found")

// DefaultLimit is how many runs a store keeps when no limit is given.
const DefaultLimit = 100

// Outcome of a run.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Record is one journaled run.
type Record struct {
	ID         uuid.UUID `json:"id"`
	Routine    string    `json:"routine"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    Outcome   `json:"outcome"`
	FinalState string    `json:"final_state"`
	// FailedState is the step that aborted the run.
	FailedState string `json:"failed_state,omitempty"`
	// Partial is set when the robot had already moved before the abort.
	Partial bool   `json:"partial"`
	Error   string `json:"error,omitempty"`
	// Transitions lists every state entered, in order.
	Transitions []string `json:"transitions"`
}

// Store persists run records. Implementations are safe for concurrent use.
type Store interface {
	Save(ctx context.Context, r Record) error
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	// List returns at most limit records, newest first. limit <= 0 means
	// everything the store holds.
	List(ctx context.Context, limit int) ([]Record, error)
}

// FromResult builds a record from a routine result and the error it
// returned, if any.
func FromResult(res *choreography.Result, err error) Record {
	r := Record{
		ID:          res.RunID,
		Routine:     res.Routine,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
		Outcome:     OutcomeCompleted,
		FinalState:  res.Final.String(),
		Transitions: make([]string, 0, len(res.Transitions)),
	}
	for _, t := range res.Transitions {
		r.Transitions = append(r.Transitions, t.To.String())
	}

	if err != nil {
		r.Outcome = OutcomeFailed
		r.Error = err.Error()
		var abort *choreography.AbortError
		if errors.As(err, &abort) {
			r.Partial = abort.Partial
			r.FailedState = abort.State.String()
		}
	}
	return r
}
