package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/sitepass/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/settings.yaml
var settingsTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a settings file",
		Long: `Init creates a commented settings file.

The file is written to $XDG_CONFIG_HOME/sitepass/settings.yaml unless
--output is given. It documents every setting with its default value.

Examples:
  # Create the default settings file
  sitepass init

  # Create a settings file at a specific path
  sitepass init -o ./settings.yaml

  # Force overwrite existing file
  sitepass init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Output file path (default: $XDG_CONFIG_HOME/sitepass/settings.yaml)")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing settings file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = config.DefaultSettingsPath()
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("settings file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := settingsTemplate.ReadFile("templates/settings.yaml")
	if err != nil {
		return fmt.Errorf("failed to read settings template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created settings file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file or use \"sitepass settings set\" to change:")
	fmt.Fprintln(out, "  - Master secret fingerprints and keylogger protection")
	fmt.Fprintln(out, "  - How the domain of a site is resolved")

	return nil
}
