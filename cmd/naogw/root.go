package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-nao/internal/config"
	"github.com/teslashibe/go-nao/internal/log"
	"github.com/teslashibe/go-nao/pkg/choreography"
	"github.com/teslashibe/go-nao/pkg/naoqi"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "naogw",
	Short: "REST gateway and command line for NAO robots",
	Long: `naogw exposes a NAO robot over HTTP (catalog, behaviors, speech,
walking and a whole-body balance kick) and runs the same actions directly
from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("host") {
			loaded.Remote.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			loaded.Remote.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}

		log.InitWithOptions(log.Options{
			Level:      loaded.Log.Level,
			File:       loaded.Log.File,
			MaxSizeMB:  loaded.Log.MaxSizeMB,
			MaxBackups: loaded.Log.MaxBackups,
		})
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("host", config.DefaultNaoHost, "Robot middleware host (overrides NAO_HOST)")
	rootCmd.PersistentFlags().Int("port", config.DefaultNaoPort, "Robot middleware port (overrides NAO_PORT)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}

// newRobot builds the middleware client from the loaded configuration.
func newRobot() *naoqi.Client {
	return naoqi.NewClient(naoqi.Config{
		Host:           cfg.Remote.Host,
		Port:           cfg.Remote.Port,
		CallTimeout:    cfg.Remote.CallTimeout,
		ConnectTimeout: cfg.Remote.ConnectTimeout,
		Logger:         log.L().With("component", "naoqi"),
	})
}

// engineOptions applies the configured kick tuning.
func engineOptions() []choreography.Option {
	return []choreography.Option{
		choreography.WithSettleDelay(cfg.Kick.SettleDelay),
		choreography.WithLogger(log.L().With("component", "choreography")),
	}
}
