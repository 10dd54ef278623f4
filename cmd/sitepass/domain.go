package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewDomainCmd creates the domain command.
func NewDomainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain [url...]",
		Short: "Print the domain passwords are derived from",
		Long: `Domain prints the site identifier that derive would use for each URL,
together with how it was found:

  heuristic    last two labels of the host, no lookup attempted
  checked      confirmed by the public suffix list, or a two-label host
  uncheckable  the lookup failed and the two-label guess is kept

No master secret is needed.

Examples:
  sitepass domain https://accounts.google.com/signin
  sitepass domain --resolver publicsuffix www.example.co.uk
  sitepass domain --resolver dns --json www.example.co.uk`,
		Args: cobra.ArbitraryArgs,
		RunE: runDomainCmd,
	}

	addResolverFlags(cmd)
	addTorFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runDomainCmd executes the domain command.
func runDomainCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
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

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

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
	for _, site := range cfg.Sites {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := resolveSite(ctx, resolver, cfg.Settings, site)
		r.AddResolution(site, res, err)
	}

	if err := outputReport(cmd, cfg, r, quiet); err != nil {
		return err
	}
	if n := r.Failures(); n > 0 {
		return fmt.Errorf("%d of %d sites failed", n, len(r.Entries))
	}
	return nil
}
