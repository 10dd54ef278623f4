package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/nao1215/sitepass/internal/config"
	"github.com/nao1215/sitepass/internal/database"
	"github.com/nao1215/sitepass/internal/domain"
	"github.com/nao1215/sitepass/internal/generator"
	"github.com/nao1215/sitepass/internal/report"
	"github.com/spf13/cobra"
)

// errNoSites is returned when derive or domain get nothing to work on.
var errNoSites = errors.New("no sites provided (specify one or more URLs as arguments or use --list)")

// NewDeriveCmd creates the derive command.
func NewDeriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive [url...]",
		Short: "Print the passwords of one or more sites",
		Long: `Derive prints the passwords of each site for your master secret.

The master secret is read from a hidden prompt when stdin is a terminal,
from the first line of stdin otherwise, or from an environment variable
with --master-env. Six variants are printed per site; the first one is the
recommended password and the others exist for sites with password rules.

Examples:
  # Prompt for the master secret
  sitepass derive https://github.com/login

  # Several sites, only the recommended password, values only
  sitepass derive -q --variant long-special github.com gitlab.com

  # Read the master secret from the environment
  SITEPASS_MASTER=... sitepass derive --master-env SITEPASS_MASTER example.com

  # Use the public suffix list over DNS, through Tor
  sitepass derive --resolver dns --tor www.example.co.uk

  # Markdown report written to a file
  sitepass derive --markdown -o passwords.md --list sites.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: runDeriveCmd,
	}

	cmd.Flags().String("master-env", "",
		"Read the master secret from this environment variable")
	cmd.Flags().StringSliceP("variant", "V", nil,
		"Only print these variants (default: all six)")
	cmd.Flags().StringP("list", "l", "",
		"Read sites from a file, one per line")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sites resolved concurrently")

	addResolverFlags(cmd)
	addTorFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runDeriveCmd executes the derive command.
func runDeriveCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if cfg.MasterEnv, err = cmd.Flags().GetString("master-env"); err != nil {
		return err
	}
	if cfg.Variants, err = cmd.Flags().GetStringSlice("variant"); err != nil {
		return err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return err
	}
	listFile, err := cmd.Flags().GetString("list")
	if err != nil {
		return err
	}
	if listFile != "" {
		sites, err := readSiteList(listFile)
		if err != nil {
			return err
		}
		cfg.Sites = append(cfg.Sites, sites...)
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if len(cfg.Sites) == 0 {
		return errNoSites
	}
	variants, err := generator.ParseVariants(cfg.Variants)
	if err != nil {
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

	network, err := setupNetwork(ctx, cfg, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}
	defer network.Close()

	resolver, err := resolverFactory(network.client, logger)(cfg.Settings)
	if err != nil {
		return err
	}

	r := newReport()
	if store := openStore(cfg, cfg.Settings.StoreHash, logger); store != nil {
		defer store.Close()
		r.MasterCheck = checkMaster(ctx, store, master, cfg.Settings.StoreHash, logger).String()
	}

	if err := deriveSites(ctx, cfg, resolver, master, variants, r, logger); err != nil {
		return err
	}

	if err := outputReport(cmd, cfg, r, quiet); err != nil {
		return err
	}
	if n := r.Failures(); n > 0 {
		return fmt.Errorf("%d of %d sites failed", n, len(r.Entries))
	}
	return nil
}

// checkMaster looks up the master fingerprint and records it when storeHash
// is set. Failures leave the secret unchecked.
func checkMaster(ctx context.Context, store *database.Store, master string, storeHash bool, logger *slog.Logger) database.MasterCheck {
	fp := generator.MasterHash(master)
	check, err := store.Check(ctx, fp, storeHash)
	if err != nil {
		logger.Warn("failed to check master secret", "error", err)
		return database.Unchecked
	}
	if storeHash {
		if err := store.Remember(ctx, fp); err != nil {
			logger.Warn("failed to remember master secret", "error", err)
		}
	}
	return check
}

// deriveSites resolves every site and appends its passwords to r, in input order.
func deriveSites(ctx context.Context, cfg *config.Config, resolver domain.Resolver, master string, variants []generator.Variant, r *report.Report, logger *slog.Logger) error {
	var (
		mu          sync.Mutex
		resolutions = make(map[string]domain.Resolution, len(cfg.Sites))
	)
	domainFunc := func(ctx context.Context, site string) (string, error) {
		res, err := resolveSite(ctx, resolver, cfg.Settings, site)
		if err != nil {
			return "", err
		}
		mu.Lock()
		resolutions[site] = res
		mu.Unlock()
		return res.Domain, nil
	}

	batch := generator.NewBatch(domainFunc,
		generator.WithConcurrency(cfg.BatchSize),
		generator.WithVariants(variants),
		generator.WithBatchLogger(logger),
	)
	results, err := batch.Run(ctx, master, cfg.Sites)
	if err != nil {
		return err
	}

	for _, result := range results {
		r.AddSiteResult(result, resolutions[result.Site])
	}
	return nil
}

// readSiteList reads one site per line. Blank lines and lines starting
// with # are skipped.
func readSiteList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to open site list: %w", err)
	}
	defer f.Close()

	var sites []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sites = append(sites, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read site list: %w", err)
	}
	return sites, nil
}
