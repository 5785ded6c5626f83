package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-nao/pkg/behavior"
	"github.com/teslashibe/go-nao/pkg/choreography"
	"github.com/teslashibe/go-nao/pkg/hub"
	"github.com/teslashibe/go-nao/pkg/runlog"
)

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.SendString("Hello, To The Point!")
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"busy":    s.engine.Busy(),
		"clients": s.events.ClientCount(),
	})
}

// handleListRobots returns the whole catalog
func (s *Server) handleListRobots(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"robots": s.robots.List()})
}

// handleGetRobot returns one catalog entry
func (s *Server) handleGetRobot(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: robot id must be an integer", ErrInvalidRequest))
	}
	robot, err := s.robots.Get(id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"robot": robot})
}

// BehaviorRequest is the body of the behavior start and stop routes.
type BehaviorRequest struct {
	Behavior string `json:"behavior"`
}

func (s *Server) parseBehavior(c *fiber.Ctx) (string, error) {
	var req BehaviorRequest
	if err := c.BodyParser(&req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if strings.TrimSpace(req.Behavior) == "" {
		return "", fmt.Errorf("%w: missing behavior", ErrInvalidRequest)
	}
	return req.Behavior, nil
}

func (s *Server) behaviors(ctx context.Context) (*behavior.Controller, error) {
	bm, err := s.robot.ConnectBehaviorManager(ctx)
	if err != nil {
		return nil, err
	}
	return behavior.New(bm, s.logger), nil
}

// handleListBehaviors lists installed behaviors
func (s *Server) handleListBehaviors(c *fiber.Ctx) error {
	ctrl, err := s.behaviors(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	names, err := ctrl.List(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"behaviors": names})
}

// handleStartBehavior starts an installed behavior
func (s *Server) handleStartBehavior(c *fiber.Ctx) error {
	name, err := s.parseBehavior(c)
	if err != nil {
		return s.fail(c, err)
	}
	ctrl, err := s.behaviors(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	outcome, err := ctrl.Start(c.UserContext(), name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"behavior": name, "status": outcome})
}

// handleStopBehavior stops a running behavior
func (s *Server) handleStopBehavior(c *fiber.Ctx) error {
	name, err := s.parseBehavior(c)
	if err != nil {
		return s.fail(c, err)
	}
	ctrl, err := s.behaviors(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	outcome, err := ctrl.Stop(c.UserContext(), name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"behavior": name, "status": outcome})
}

// handleStopAllBehaviors stops everything that is running
func (s *Server) handleStopAllBehaviors(c *fiber.Ctx) error {
	ctrl, err := s.behaviors(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	stopped, err := ctrl.StopAll(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"stopped": stopped})
}

// handleGreet says hello to name
func (s *Server) handleGreet(c *fiber.Ctx) error {
	ctx := c.UserContext()
	speech, err := s.robot.ConnectSpeech(ctx)
	if err != nil {
		return s.fail(c, err)
	}
	text := "Hello " + c.Params("name")
	if err := speech.Say(ctx, text); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"said": text})
}

// handleMove submits the default walk
func (s *Server) handleMove(c *fiber.Ctx) error {
	ctx := c.UserContext()
	motion, err := s.robot.ConnectMotion(ctx)
	if err != nil {
		return s.fail(c, err)
	}
	res, err := s.engine.Walk(ctx, motion, s.walk)
	s.record(ctx, res, err)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "moving", "run_id": res.RunID})
}

// handleKick runs the kick routine to completion
func (s *Server) handleKick(c *fiber.Ctx) error {
	ctx := c.UserContext()
	motion, err := s.robot.ConnectMotion(ctx)
	if err != nil {
		return s.fail(c, err)
	}
	posture, err := s.robot.ConnectPosture(ctx)
	if err != nil {
		return s.fail(c, err)
	}

	res, err := s.engine.Kick(ctx, motion, posture)
	rec := s.record(ctx, res, err)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"run": rec})
}

// record journals a routine result, updates metrics and publishes the
// record. The robot already acted, so a journal failure is only logged.
func (s *Server) record(ctx context.Context, res *choreography.Result, runErr error) runlog.Record {
	if res == nil {
		return runlog.Record{}
	}
	rec := runlog.FromResult(res, runErr)

	routinesTotal.WithLabelValues(rec.Routine, string(rec.Outcome)).Inc()
	routineDuration.WithLabelValues(rec.Routine).Observe(rec.FinishedAt.Sub(rec.StartedAt).Seconds())
	if rec.Partial {
		partialAborts.Inc()
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.runs.Save(saveCtx, rec); err != nil {
		s.logger.Error("journal run", "run_id", rec.ID, "error", err)
	}
	if err := s.events.Publish(hub.EventRun, rec); err != nil {
		s.logger.Warn("publish run", "error", err)
	}
	return rec
}

// handleListRuns returns recent runs, newest first
func (s *Server) handleListRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 0 {
		return s.fail(c, fmt.Errorf("%w: limit must not be negative", ErrInvalidRequest))
	}
	runs, err := s.runs.List(c.UserContext(), limit)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"runs": runs})
}

// handleGetRun returns one journaled run
func (s *Server) handleGetRun(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: run id must be a uuid", ErrInvalidRequest))
	}
	rec, err := s.runs.Get(c.UserContext(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"run": rec})
}
