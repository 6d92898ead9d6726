package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/eresus/internal/service/logbook"
)

var (
	logbookCmd = &cobra.Command{
		Use:     "logbook",
		Aliases: []string{"logs"},
		Short:   "Browse archived arrest logs.",
	}

	logbookListCmd = &cobra.Command{
		Use:   "list",
		Short: "List archived arrest logs, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return logbook.RunList(ctx, logbookOptions(cmd))
		},
	}

	logbookShowCmd = &cobra.Command{
		Use:   "show <id>",
		Short: "Print the event summary of an archived log.",
		Long:  "Prints the export text of one log. Any unique prefix of the log ID is accepted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return logbook.RunShow(ctx, logbookOptions(cmd), args[0])
		},
	}

	logbookDeleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived log.",
		Long:  "Deletes one log. Any unique prefix of the log ID is accepted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return logbook.RunDelete(ctx, logbookOptions(cmd), args[0])
		},
	}
)

func logbookOptions(cmd *cobra.Command) *logbook.Options {
	return &logbook.Options{
		ConfigPath: configPath,
		Out:        cmd.OutOrStdout(),
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	logbookCmd.AddCommand(logbookListCmd, logbookShowCmd, logbookDeleteCmd)
	rootCmd.AddCommand(logbookCmd)
}
