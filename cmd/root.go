package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cube2222/relvar/config"
	"github.com/cube2222/relvar/execution"
	"github.com/cube2222/relvar/logs"
	"github.com/cube2222/relvar/outputs/stream"
	"github.com/cube2222/relvar/scenario"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "relvar",
	Short: "Build relational views over in-memory relvars and watch them update.",
	Long: `relvar reads a scenario file describing base relvars, views derived from them
and a list of mutations. The views are maintained incrementally while the
mutations are applied.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var runCmd = &cobra.Command{
	Use:   "run <scenario.yml>",
	Args:  cobra.ExactArgs(1),
	Short: "Play a scenario, printing relvars at its print steps.",
	Example: `relvar run shop.yml
relvar run shop.yml --output diff
relvar run shop.yml --watch --scheduling topological`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := setupLogger(cfg)
		if err != nil {
			return err
		}
		defer logs.CloseLogger()

		scheduling, err := execution.ParseScheduling(cfg.Scheduling)
		if err != nil {
			return err
		}
		loop := execution.NewLoop(
			execution.WithScheduling(scheduling),
			execution.WithLogger(logger),
		)

		s, err := scenario.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "couldn't read scenario")
		}
		env, err := scenario.Build(loop, s)
		if err != nil {
			return errors.Wrap(err, "couldn't build scenario")
		}
		defer env.Close()

		if watch {
			changes := stream.NewChangePrinter(cmd.OutOrStdout())
			for _, name := range env.Names {
				if view, ok := env.Views[name]; ok {
					changes.Watch(view)
				}
			}
		}

		logger.Debug("playing scenario",
			slog.String("path", args[0]),
			slog.Int("steps", len(s.Steps)),
			slog.String("scheduling", scheduling.String()),
		)
		printer := stream.NewSnapshotPrinter(cmd.OutOrStdout(), cfg.Output)
		if err := scenario.Play(env, s.Steps, printer); err != nil {
			return err
		}
		return nil
	},
}

var describeCmd = &cobra.Command{
	Use:     "describe <scenario.yml>",
	Args:    cobra.ExactArgs(1),
	Short:   "Print the derivation graph of a scenario in the DOT format.",
	Example: `relvar describe shop.yml | dot -Tpng > shop.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := scenario.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "couldn't read scenario")
		}
		// Steps aren't played, only the initial rows are inserted.
		env, err := scenario.Build(execution.NewLoop(), s)
		if err != nil {
			return errors.Wrap(err, "couldn't build scenario")
		}
		defer env.Close()

		out, err := describe(env)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func Execute(ctx context.Context) {
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

var output string
var scheduling string
var logLevel string
var watch bool

func init() {
	runCmd.Flags().StringVar(&output, "output", config.DefaultOutput, "Output format, one of table, json, csv and diff.")
	runCmd.Flags().StringVar(&scheduling, "scheduling", config.DefaultScheduling, "Order of change propagation, fifo or topological.")
	runCmd.Flags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level, one of debug, info, warn and error.")
	runCmd.Flags().BoolVar(&watch, "watch", false, "Print every change of every view as it's delivered.")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(describeCmd)
}

// loadConfig reads the config file, flags set explicitly take precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read config")
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = output
	}
	if cmd.Flags().Changed("scheduling") {
		cfg.Scheduling = scheduling
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logs.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if !cfg.Logging.File {
		return logs.New(os.Stderr, level), nil
	}
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return logs.InitializeFileLogger(dir, level)
}
