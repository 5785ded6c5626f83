// Package gateway serves the robot over HTTP: the robot catalog, behavior
// control, speech, walking and the kick routine, plus a websocket stream of
// choreography events.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-nao/pkg/catalog"
	"github.com/teslashibe/go-nao/pkg/choreography"
	"github.com/teslashibe/go-nao/pkg/hub"
	"github.com/teslashibe/go-nao/pkg/naoqi"
	"github.com/teslashibe/go-nao/pkg/runlog"
)

// Config wires the server to its collaborators. Robot is required; every
// other field has a default.
type Config struct {
	Port  string
	Robot naoqi.Connector

	Catalog *catalog.Catalog
	Runs    runlog.Store
	Events  *hub.Hub
	Logger  *slog.Logger

	// EngineOptions configure the choreography engine. The server adds
	// its own observer to forward transitions to Events.
	EngineOptions []choreography.Option

	// Walk is the target of GET /move.
	Walk choreography.WalkParams
}

// Server is the HTTP gateway.
type Server struct {
	app    *fiber.App
	port   string
	robot  naoqi.Connector
	robots *catalog.Catalog
	runs   runlog.Store
	events *hub.Hub
	engine *choreography.Engine
	walk   choreography.WalkParams
	logger *slog.Logger
}

// NewServer creates the gateway and registers its routes.
func NewServer(cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Runs == nil {
		cfg.Runs = runlog.NewMemoryStore(runlog.DefaultLimit)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Events == nil {
		cfg.Events = hub.New("events", hub.WithLogger(cfg.Logger))
	}
	if cfg.Walk == (choreography.WalkParams{}) {
		cfg.Walk = choreography.DefaultWalk()
	}

	s := &Server{
		port:   cfg.Port,
		robot:  cfg.Robot,
		robots: cfg.Catalog,
		runs:   cfg.Runs,
		events: cfg.Events,
		walk:   cfg.Walk,
		logger: cfg.Logger,
	}

	opts := append([]choreography.Option{choreography.WithLogger(cfg.Logger)}, cfg.EngineOptions...)
	opts = append(opts, choreography.WithObserver(s.onTransition))
	s.engine = choreography.NewEngine(opts...)

	app := fiber.New(fiber.Config{
		AppName:               "NAO Gateway",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/", s.handleIndex)
	app.Get("/health", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/robots", s.handleListRobots)
	app.Get("/robots/:id", s.handleGetRobot)

	app.Get("/behaviors", s.handleListBehaviors)
	app.Post("/behaviors/start", s.handleStartBehavior)
	app.Post("/behaviors/stop", s.handleStopBehavior)
	app.Get("/behaviors/stop/all", s.handleStopAllBehaviors)

	app.Get("/greet/:name", s.handleGreet)
	app.Get("/move", s.handleMove)
	app.Get("/kick", s.handleKick)

	app.Get("/runs", s.handleListRuns)
	app.Get("/runs/:id", s.handleGetRun)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(func(c *websocket.Conn) {
		s.events.Serve(c)
	}))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Events returns the hub choreography events are published on.
func (s *Server) Events() *hub.Hub {
	return s.events
}

// Engine returns the choreography engine.
func (s *Server) Engine() *choreography.Engine {
	return s.engine
}

// Start runs the event hub and serves HTTP until ctx is done, then shuts
// down gracefully within shutdownTimeout.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.events.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "port", s.port)
		errCh <- s.app.Listen(":" + s.port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("gateway shutting down")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// onTransition forwards engine transitions to websocket clients.
func (s *Server) onTransition(t choreography.Transition) {
	if err := s.events.Publish(hub.EventTransition, t); err != nil {
		s.logger.Warn("publish transition", "error", err)
	}
}
