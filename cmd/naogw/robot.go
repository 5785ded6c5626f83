package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-nao/internal/log"
	"github.com/teslashibe/go-nao/pkg/behavior"
	"github.com/teslashibe/go-nao/pkg/choreography"
	"github.com/teslashibe/go-nao/pkg/runlog"
)

var kickCmd = &cobra.Command{
	Use:   "kick",
	Short: "Run the balance kick on the robot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		robot := newRobot()
		defer robot.Close()

		motion, err := robot.ConnectMotion(ctx)
		if err != nil {
			return err
		}
		posture, err := robot.ConnectPosture(ctx)
		if err != nil {
			return err
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		opts := engineOptions()
		if verbose {
			opts = append(opts, choreography.WithObserver(func(t choreography.Transition) {
				fmt.Printf("  %-26s -> %s\n", t.From, t.To)
			}))
		}
		engine := choreography.NewEngine(opts...)

		res, err := engine.Kick(ctx, motion, posture)
		if res != nil {
			printJSON(runlog.FromResult(res, err))
		}
		var abort *choreography.AbortError
		if errors.As(err, &abort) && abort.Partial {
			log.Warn("robot left in an intermediate posture", "failed_state", abort.State)
		}
		return err
	},
}

var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Walk a relative distance",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		robot := newRobot()
		defer robot.Close()

		motion, err := robot.ConnectMotion(ctx)
		if err != nil {
			return err
		}

		var w choreography.WalkParams
		w.DX, _ = cmd.Flags().GetFloat64("x")
		w.DY, _ = cmd.Flags().GetFloat64("y")
		w.DTheta, _ = cmd.Flags().GetFloat64("theta")

		_, err = choreography.NewEngine(engineOptions()...).Walk(ctx, motion, w)
		return err
	},
}

var sayCmd = &cobra.Command{
	Use:   "say TEXT...",
	Short: "Speak text through the robot",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		robot := newRobot()
		defer robot.Close()

		speech, err := robot.ConnectSpeech(ctx)
		if err != nil {
			return err
		}
		return speech.Say(ctx, strings.Join(args, " "))
	},
}

var behaviorsCmd = &cobra.Command{
	Use:   "behaviors",
	Short: "List installed behaviors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBehaviors(cmd, func(ctx context.Context, c *behavior.Controller) error {
			names, err := c.List(ctx)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		})
	},
}

var behaviorStartCmd = &cobra.Command{
	Use:   "start NAME",
	Short: "Start an installed behavior",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBehaviors(cmd, func(ctx context.Context, c *behavior.Controller) error {
			out, err := c.Start(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", args[0], out)
			return nil
		})
	},
}

var behaviorStopCmd = &cobra.Command{
	Use:   "stop [NAME]",
	Short: "Stop a running behavior, or all of them with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return errors.New("a behavior name or --all is required")
		}
		return withBehaviors(cmd, func(ctx context.Context, c *behavior.Controller) error {
			if all {
				stopped, err := c.StopAll(ctx)
				if err != nil {
					return err
				}
				for _, n := range stopped {
					fmt.Printf("%s: %s\n", n, behavior.Stopped)
				}
				return nil
			}
			out, err := c.Stop(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", args[0], out)
			return nil
		})
	},
}

func withBehaviors(cmd *cobra.Command, fn func(context.Context, *behavior.Controller) error) error {
	ctx := cmd.Context()
	robot := newRobot()
	defer robot.Close()

	bm, err := robot.ConnectBehaviorManager(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, behavior.New(bm, log.L()))
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// signalContext cancels on SIGINT/SIGTERM. The kick ignores it once
// started; other commands stop waiting.
func signalContext(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cobra.OnFinalize(stop)
	cmd.SetContext(ctx)
}

func init() {
	for _, c := range []*cobra.Command{kickCmd, walkCmd, sayCmd, behaviorsCmd} {
		c.PreRun = signalContext
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{behaviorStartCmd, behaviorStopCmd} {
		c.PreRun = signalContext
		behaviorsCmd.AddCommand(c)
	}

	kickCmd.Flags().BoolP("verbose", "v", false, "Print every state transition")

	walkCmd.Flags().Float64("x", 0.2, "Metres forward")
	walkCmd.Flags().Float64("y", 0, "Metres left")
	walkCmd.Flags().Float64("theta", 0, "Radians counter-clockwise")

	behaviorStopCmd.Flags().Bool("all", false, "Stop every running behavior")
}
