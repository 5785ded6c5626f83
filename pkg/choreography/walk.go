package choreography

import (
	"context"

	"github.com/teslashibe/go-nao/pkg/naoqi"
)

// RoutineWalk names the walk routine in results and run records.
const RoutineWalk = "walk"

// WalkParams is a relative walk target.
type WalkParams struct {
	DX     float64 `json:"dx"`     // metres forward
	DY     float64 `json:"dy"`     // metres left
	DTheta float64 `json:"dtheta"` // radians counter-clockwise
}

// DefaultWalk steps 20 cm forward.
func DefaultWalk() WalkParams {
	return WalkParams{DX: 0.2}
}

// Walk wakes the robot, prepares locomotion and submits the walk. The walk
// itself is fire-and-forget: Walk returns once the robot accepted it, not
// when it arrives.
func (e *Engine) Walk(ctx context.Context, motion naoqi.Motion, w WalkParams) (*Result, error) {
	if !e.acquire() {
		return nil, ErrBusy
	}
	defer e.release()

	r := e.newRun(RoutineWalk)
	steps := []step{
		{StateWakingUp, func(ctx context.Context) error {
			return r.cmd(motion.WakeUp(ctx))
		}},
		{StateMoveInit, func(ctx context.Context) error {
			return r.cmd(motion.MoveInit(ctx))
		}},
		{StateWalking, func(ctx context.Context) error {
			return r.cmd(motion.MoveTo(ctx, w.DX, w.DY, w.DTheta))
		}},
	}

	if err := r.execute(ctx, steps); err != nil {
		e.logger.Error("walk aborted", "run_id", r.result.RunID, "error", err)
		return r.result, err
	}
	e.logger.Info("walk submitted", "run_id", r.result.RunID, "dx", w.DX, "dy", w.DY, "dtheta", w.DTheta)
	return r.result, nil
}
