package main

import (
	"fmt"
	"strings"

	"github.com/nao1215/sitepass/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewSettingsCmd creates the settings command.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the settings",
		Long: `Settings prints the settings in effect and the file they come from.

Keys: ` + strings.Join(config.SettingKeys(), ", ") + `

Examples:
  sitepass settings
  sitepass settings set store-hash false
  sitepass settings set resolver publicsuffix`,
		Args: cobra.NoArgs,
		RunE: runSettingsShowCmd,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE:  runSettingsSetCmd,
	})

	return cmd
}

// settingsLocation returns the settings file used by cmd.
func settingsLocation(cmd *cobra.Command) string {
	if path := getStringFlag(cmd, "settings"); path != "" {
		return path
	}
	return config.DefaultSettingsPath()
}

// runSettingsShowCmd prints the settings as YAML.
func runSettingsShowCmd(cmd *cobra.Command, _ []string) error {
	settings, err := config.LoadSettingsOrDefault(getStringFlag(cmd, "settings"))
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n", settingsLocation(cmd))
	_, err = out.Write(data)
	return err
}

// runSettingsSetCmd updates one setting and saves the file.
func runSettingsSetCmd(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettingsOrDefault(getStringFlag(cmd, "settings"))
	if err != nil {
		return err
	}
	if err := settings.Set(args[0], args[1]); err != nil {
		return err
	}

	path := settingsLocation(cmd)
	if err := config.SaveSettings(path, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", args[0], args[1], path)
	return nil
}
