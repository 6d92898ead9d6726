package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/eresus/internal/config"
)

// errConfigExists prevents config init from overwriting settings.
var errConfigExists = errors.New("configuration file already exists, use --force to overwrite")

var (
	// force allows config init to overwrite an existing file.
	force bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage tracker settings.",
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%w: %s", errConfigExists, configPath)
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", configPath)

			return err
		},
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings.",
		Long:  "Prints the settings file with defaults applied, or the defaults when the file does not exist.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}

			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)

			if err = encoder.Encode(settings); err != nil {
				return fmt.Errorf("encode settings: %w", err)
			}

			return encoder.Close()
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	configInitCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing settings file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
