// Package behavior starts and stops behaviors installed on the robot after
// checking their current status.
package behavior

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/teslashibe/go-nao/pkg/naoqi"
)

// Outcome is the result of a successful start or stop.
type Outcome string

const (
	Started Outcome = "started"
	Stopped Outcome = "stopped"
)

// Controller wraps a BehaviorManager with existence and status checks.
// Commands are only issued once the check passes.
type Controller struct {
	manager naoqi.BehaviorManager
	logger  *slog.Logger
}

// New creates a controller. A nil logger uses slog.Default().
func New(manager naoqi.BehaviorManager, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{manager: manager, logger: logger}
}

// List returns the installed behaviors, sorted.
func (c *Controller) List(ctx context.Context) ([]string, error) {
	names, err := c.manager.ListInstalled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installed behaviors: %w", err)
	}
	names = slices.Clone(names)
	slices.Sort(names)
	return names, nil
}

// Start launches name if it is installed. The launch is fire-and-forget:
// Started means the robot accepted it.
func (c *Controller) Start(ctx context.Context, name string) (Outcome, error) {
	if err := validate(name); err != nil {
		return "", err
	}

	installed, err := c.manager.IsInstalled(ctx, name)
	if err != nil {
		return "", fmt.Errorf("check behavior %q: %w", name, err)
	}
	if !installed {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if err := c.manager.RunBehavior(ctx, name); err != nil {
		return "", fmt.Errorf("run behavior %q: %w", name, err)
	}

	c.logger.Info("behavior started", "behavior", name)
	return Started, nil
}

// Stop halts name if it is running and waits for it to finish stopping.
func (c *Controller) Stop(ctx context.Context, name string) (Outcome, error) {
	if err := validate(name); err != nil {
		return "", err
	}

	running, err := c.manager.IsRunning(ctx, name)
	if err != nil {
		return "", fmt.Errorf("check behavior %q: %w", name, err)
	}
	if !running {
		return "", fmt.Errorf("%w: %q", ErrNotRunning, name)
	}

	if err := c.manager.StopBehavior(ctx, name); err != nil {
		return "", fmt.Errorf("stop behavior %q: %w", name, err)
	}

	c.logger.Info("behavior stopped", "behavior", name)
	return Stopped, nil
}

// StopAll stops every running behavior and returns the names that were
// running just before the stop.
func (c *Controller) StopAll(ctx context.Context) ([]string, error) {
	running, err := c.manager.ListRunning(ctx)
	if err != nil {
		return nil, fmt.Errorf("list running behaviors: %w", err)
	}
	if len(running) == 0 {
		return nil, ErrNothingToStop
	}

	if err := c.manager.StopAll(ctx); err != nil {
		return nil, fmt.Errorf("stop all behaviors: %w", err)
	}

	c.logger.Info("all behaviors stopped", "count", len(running))
	return slices.Clone(running), nil
}

func validate(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return nil
}
