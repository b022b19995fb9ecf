package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/marquee/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigCmd,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	cfg, path, err := config.LoadAuto(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	redacted := cfg.Redacted()
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), redacted)
	}

	if path == "" {
		path = "built-in defaults"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n", path)
	return redacted.Encode(cmd.OutOrStdout())
}
