package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/sitepass/internal/generator"
	"github.com/spf13/cobra"
)

// NewForgetCmd creates the forget command.
func NewForgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete the stored fingerprint of a master secret",
		Long: `Forget removes the fingerprint of a master secret from the database, so
that it is reported as never used again. The master secret is read like in
derive.

Examples:
  sitepass forget
  sitepass forget --master-env OLD_MASTER`,
		Args: cobra.NoArgs,
		RunE: runForgetCmd,
	}

	cmd.Flags().String("master-env", "",
		"Read the master secret from this environment variable")

	return cmd
}

// runForgetCmd executes the forget command.
func runForgetCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.MasterEnv, err = cmd.Flags().GetString("master-env"); err != nil {
		return err
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	master, err := readMaster(cmd, cfg.MasterEnv)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	store := openStore(cfg, false, logger)
	if store == nil {
		fmt.Fprintln(out, "No master secret is stored.")
		return nil
	}
	defer store.Close()

	fp := generator.MasterHash(master)
	stored, err := store.Get(ctx, fp)
	if err != nil {
		return err
	}
	if stored == nil {
		fmt.Fprintln(out, "This master secret was not stored.")
		return nil
	}

	if _, err := store.Forget(ctx, fp); err != nil {
		return err
	}
	fmt.Fprintf(out, "Master secret forgotten (used %d times, first on %s, last on %s).\n",
		stored.UseCount, formatDay(stored.FirstSeen), formatDay(stored.LastUsed))

	remaining, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d master secrets remain stored.\n", remaining)
	return nil
}

// formatDay prints t as a date, or "unknown" for the zero time.
func formatDay(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(time.DateOnly)
}
