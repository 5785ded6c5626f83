package naoqi

import (
	"context"
	"fmt"
)

// postureProxy implements Posture over ALRobotPosture.
type postureProxy struct {
	p *proxy
}

// GoToPosture blocks until the posture is reached. The remote answers false
// when the posture cannot be reached from the current configuration.
func (r *postureProxy) GoToPosture(ctx context.Context, name string, speed float64) error {
	if speed <= 0 || speed > 1 {
		return fmt.Errorf("naoqi: posture speed %.2f outside (0, 1]", speed)
	}

	var reached bool
	if err := r.p.call(ctx, "goToPosture", &reached, name, speed); err != nil {
		return err
	}
	if !reached {
		return &RemoteError{
			Module:  r.p.module,
			Method:  "goToPosture",
			Code:    CodePostureUnreachable,
			Message: fmt.Sprintf("posture %q not reached", name),
		}
	}
	return nil
}
