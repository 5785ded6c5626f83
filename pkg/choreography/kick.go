package choreography

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-nao/pkg/naoqi"
)

// RoutineKick names the kick routine in results and run records.
const RoutineKick = "kick"

// Kick runs the whole-body balance kick:
//
//  1. wake up and stand
//  2. enable whole-body balance with both legs fixed as support
//  3. shift the centre of mass over the left leg
//  4. free the right leg and swing it through its planned path
//  5. shift back over the right leg, free the left leg, swing it
//  6. wait for the trajectories to settle
//  7. disable balance, stand, rest
//
// The sequence is not cancelable once started: ctx cancellation is ignored
// and only per-call timeouts bound it. If reading a leg's current transform
// fails, no trajectory is issued for it and the run aborts.
//
// The returned Result is non-nil whenever the routine was started, including
// on abort, so callers can journal partial runs.
func (e *Engine) Kick(ctx context.Context, motion naoqi.Motion, posture naoqi.Posture) (*Result, error) {
	if !e.acquire() {
		return nil, ErrBusy
	}
	defer e.release()

	ctx = context.WithoutCancel(ctx)
	r := e.newRun(RoutineKick)
	p := e.policy

	e.logger.Info("kick started", "run_id", r.result.RunID)

	steps := []step{
		{StateWakingUp, func(ctx context.Context) error {
			return r.cmd(motion.WakeUp(ctx))
		}},
		{StateStanding, func(ctx context.Context) error {
			return r.cmd(posture.GoToPosture(ctx, p.StartPosture, p.StartSpeed))
		}},
		{StateBalancingEnabled, func(ctx context.Context) error {
			if err := r.cmd(motion.SetWholeBodyBalance(ctx, true)); err != nil {
				return err
			}
			if err := r.cmd(motion.SetFootState(ctx, naoqi.EffectorLegs, naoqi.FootFixed)); err != nil {
				return err
			}
			return r.cmd(motion.EnableBalanceConstraint(ctx, true, naoqi.EffectorLegs))
		}},
		{StateLegFixedRightSupport, func(ctx context.Context) error {
			return r.cmd(motion.GoToBalance(ctx, naoqi.EffectorLeftLeg, p.BalanceSeconds))
		}},
		{StateRightLegFree, func(ctx context.Context) error {
			return r.cmd(motion.SetFootState(ctx, naoqi.EffectorRightLeg, naoqi.FootFree))
		}},
		{StateRightLegMoving, func(ctx context.Context) error {
			return r.swing(ctx, motion, naoqi.EffectorRightLeg)
		}},
		{StateOptimizationDisabled, func(ctx context.Context) error {
			return r.cmd(motion.EnableEffectorOptimization(ctx, naoqi.EffectorRightLeg, false))
		}},
		{StateLegFixedLeftTransfer, func(ctx context.Context) error {
			return r.cmd(motion.GoToBalance(ctx, naoqi.EffectorRightLeg, p.BalanceSeconds))
		}},
		{StateLeftLegFree, func(ctx context.Context) error {
			return r.cmd(motion.SetFootState(ctx, naoqi.EffectorLeftLeg, naoqi.FootFree))
		}},
		{StateLeftLegMoving, func(ctx context.Context) error {
			return r.swing(ctx, motion, naoqi.EffectorLeftLeg)
		}},
		{StateSettling, func(ctx context.Context) error {
			return e.settler.Settle(ctx)
		}},
		{StateBalancingDisabled, func(ctx context.Context) error {
			return r.cmd(motion.SetWholeBodyBalance(ctx, false))
		}},
		{StateRestPosture, func(ctx context.Context) error {
			return r.cmd(posture.GoToPosture(ctx, p.EndPosture, p.EndSpeed))
		}},
		{StateResting, func(ctx context.Context) error {
			return r.cmd(motion.Rest(ctx))
		}},
	}

	if err := r.execute(ctx, steps); err != nil {
		e.logger.Error("kick aborted", "run_id", r.result.RunID, "error", err)
		return r.result, err
	}

	e.logger.Info("kick completed", "run_id", r.result.RunID, "duration", r.result.FinishedAt.Sub(r.result.StartedAt))
	return r.result, nil
}

// swing reads the current pose of effector, plans its path and issues the
// trajectory. Nothing is issued if the read fails.
func (r *run) swing(ctx context.Context, motion naoqi.Motion, effector naoqi.Effector) error {
	p := r.e.policy

	current, err := motion.GetTransform(ctx, effector, p.Frame, p.UseSensorValues)
	if err != nil {
		return fmt.Errorf("read %s transform: %w", effector, err)
	}

	path := ComputePath(current, p.Path)
	return r.cmd(motion.InterpolateTransforms(ctx, effector, p.Frame, path, p.AxisMask, p.Times))
}
