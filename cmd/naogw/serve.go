package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-nao/internal/log"
	"github.com/teslashibe/go-nao/pkg/gateway"
	"github.com/teslashibe/go-nao/pkg/hub"
	"github.com/teslashibe/go-nao/pkg/runlog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("listen") {
			cfg.Server.Port, _ = cmd.Flags().GetString("listen")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := log.L()
		robot := newRobot()
		defer robot.Close()

		runs, closeRuns, err := openRunLog(ctx)
		if err != nil {
			return err
		}
		defer closeRuns()

		srv := gateway.NewServer(gateway.Config{
			Port:          cfg.Server.Port,
			Robot:         robot,
			Catalog:       cfg.Catalog(),
			Runs:          runs,
			Events:        hub.New("events", hub.WithLogger(logger.With("component", "hub"))),
			Logger:        logger.With("component", "gateway"),
			EngineOptions: engineOptions(),
		})

		logger.Info("starting gateway",
			"port", cfg.Server.Port,
			"robot", robot.Addr(),
			"runlog", cfg.RunLog.Backend,
		)
		if err := srv.Start(ctx, cfg.Server.ShutdownTimeout); err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		logger.Info("gateway stopped")
		return nil
	},
}

// openRunLog builds the configured run journal.
func openRunLog(ctx context.Context) (runlog.Store, func(), error) {
	switch cfg.RunLog.Backend {
	case "redis":
		store := runlog.NewRedisStore(cfg.RunLog.RedisAddr, os.Getenv("REDIS_PASSWORD"), cfg.RunLog.RedisDB,
			runlog.WithPrefix(cfg.RunLog.Prefix),
			runlog.WithLimit(cfg.RunLog.Limit),
			runlog.WithTTL(cfg.RunLog.TTL),
		)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("runlog: redis at %s: %w", cfg.RunLog.RedisAddr, err)
		}
		return store, func() { store.Close() }, nil
	default:
		return runlog.NewMemoryStore(cfg.RunLog.Limit), func() {}, nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "5000", "HTTP port to listen on (overrides GATEWAY_PORT)")
}
