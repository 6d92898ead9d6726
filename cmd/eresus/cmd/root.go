package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/eresus/internal/config"
	"github.com/oshokin/eresus/internal/logger"
	"github.com/oshokin/eresus/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd is the eresus entry point; it only hosts subcommands.
	rootCmd = &cobra.Command{
		Use:   "eresus",
		Short: "Cardiac arrest resuscitation tracker.",
		Long: `eresus tracks a cardiac arrest in real time: CPR cycles, rhythm checks,
shocks, drug timing and eligibility, with a full event log and undo.

Finished sessions are archived to a logbook that can be listed, exported and pruned.
Settings are read from a YAML file; ERESUS_CONFIG and ERESUS_LOG_LEVEL (also from a .env file)
override the defaults when the matching flags are not given.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			env := config.LoadEnv()

			if !cmd.Flags().Changed("config") && env.ConfigPath != "" {
				configPath = env.ConfigPath
			}

			if !cmd.Flags().Changed("log-level") && env.LogLevel != "" {
				logLevel = env.LogLevel
			}

			if level, ok := logger.ParseLogLevel(logLevel); ok && logLevel != "" {
				logger.SetLevel(level)
			}
		},
	}
)

// Execute runs the eresus CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn or error")
}
