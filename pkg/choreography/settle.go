package choreography

import (
	"context"
	"time"
)

// Settler waits for issued trajectories to finish before the robot is
// brought back to rest. The proxy protocol has no "trajectory complete"
// signal, so the default waits a fixed delay.
type Settler interface {
	Settle(ctx context.Context) error
}

// TimerSettler waits for a fixed duration.
type TimerSettler struct {
	Delay time.Duration
}

// Settle waits Delay or until ctx is done, without holding a thread.
func (s TimerSettler) Settle(ctx context.Context) error {
	if s.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SettlerFunc adapts a function to Settler.
type SettlerFunc func(ctx context.Context) error

// Settle calls f(ctx).
func (f SettlerFunc) Settle(ctx context.Context) error {
	return f(ctx)
}
