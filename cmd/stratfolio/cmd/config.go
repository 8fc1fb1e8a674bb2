package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratfolio/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  stratfolio config init -o stratfolio.yaml
  stratfolio config validate -f stratfolio.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "stratfolio.yaml", "output config file path")

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  Library: %s\n", cfg.Library.DBPath)
			fmt.Fprintf(out, "  Export:  %s\n", cfg.Export.OutputDir)
			fmt.Fprintf(out, "  Server:  %s\n", cfg.Server.Addr)
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	validateCmd.MarkFlagRequired("file")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
