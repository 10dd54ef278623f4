package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitepass.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitepass",
		Short: "Deterministic per-site password generator",
		Long: `sitepass derives a different password for every site from one master secret.

The same master secret and site always give the same passwords, so there is
no vault to sync or back up. Only a SHA3-512 fingerprint of the master secret
may be stored, to warn you when you mistype it.

Run "sitepass ui" for the interactive terminal UI, or "sitepass derive" to
print passwords from scripts.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().String("settings", "",
		"Settings file path (default: $XDG_CONFIG_HOME/sitepass/settings.yaml)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the master fingerprint database (default: $XDG_DATA_HOME/sitepass)")

	// Add subcommands
	cmd.AddCommand(NewDeriveCmd())
	cmd.AddCommand(NewDomainCmd())
	cmd.AddCommand(NewUICmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewSettingsCmd())
	cmd.AddCommand(NewForgetCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
