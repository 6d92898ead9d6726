package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/eresus/internal/service/tracker"
)

var (
	// logFile overrides the configured tracker log file.
	logFile string

	trackCmd = &cobra.Command{
		Use:   "track",
		Short: "Open the full-screen arrest tracker.",
		Long: `Opens the interactive tracker. Press s to start an arrest; the key help at
the bottom of the screen changes with the current phase.

Logs go to the configured log file while the tracker owns the terminal.
Timer settings are reloaded when the configuration file changes and apply
from the next CPR cycle. A session still running on exit is archived as incomplete.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return tracker.Run(ctx, &tracker.Options{
				ConfigPath: configPath,
				LogLevel:   logLevel,
				LogFile:    logFile,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	trackCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of the configured one")
	rootCmd.AddCommand(trackCmd)
}
