package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/sitepass/internal/config"
	"github.com/nao1215/sitepass/internal/database"
	"github.com/nao1215/sitepass/internal/domain"
	"github.com/nao1215/sitepass/internal/flow"
	"github.com/nao1215/sitepass/internal/log"
	"github.com/nao1215/sitepass/internal/report"
	"github.com/nao1215/sitepass/internal/tor"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errEmptyMaster is returned when no master secret was entered.
var errEmptyMaster = errors.New("empty master secret")

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getBoolFlag retrieves a bool flag from the command or its parent.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// getStringFlag retrieves a string flag from the command or its parent.
func getStringFlag(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return value
}

// setupLogger creates a structured logger on stderr that redacts secrets.
func setupLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stderr, cfg)
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return log.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return log.NewSecureLogger(w, cfg.Verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// buildConfig creates a Config from the settings file and the flags shared
// by the commands. Flags the command does not define are left at their
// defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogJSON = getBoolFlag(cmd, "log-json")
	cfg.SettingsPath = getStringFlag(cmd, "settings")
	if dir := getStringFlag(cmd, "db-dir"); dir != "" {
		cfg.DBDir = dir
	}
	cfg.Sites = args

	settings, err := config.LoadSettingsOrDefault(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings

	flags := cmd.Flags()
	if flags.Changed("resolver") {
		if cfg.Settings.Resolver, err = flags.GetString("resolver"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("doh-endpoint") {
		if cfg.Settings.DoHEndpoint, err = flags.GetString("doh-endpoint"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("lookup-timeout") {
		if cfg.Settings.LookupTimeout, err = flags.GetDuration("lookup-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("allow-invalid") {
		allow, err := flags.GetBool("allow-invalid")
		if err != nil {
			return nil, err
		}
		cfg.Settings.DisallowInvalidDomains = !allow
	}

	if flags.Lookup("tor") != nil {
		if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
			return nil, err
		}
		if cfg.TorProxyAddress, err = flags.GetString("tor-proxy"); err != nil {
			return nil, err
		}
		if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
			return nil, err
		}
	}

	if flags.Lookup("json") != nil {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
		if cfg.ReportFile, err = flags.GetString("output"); err != nil {
			return nil, err
		}
		if cfg.TeeReport, err = flags.GetBool("tee"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// addResolverFlags registers the flags overriding the resolver settings.
func addResolverFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("resolver", "r", "",
		"Domain resolver: "+strings.Join(domain.Strategies(), ", ")+" (default: from settings)")
	cmd.Flags().String("doh-endpoint", "",
		"DNS-over-HTTPS endpoint used by the dns resolver")
	cmd.Flags().Duration("lookup-timeout", 0,
		"Timeout of a single domain lookup")
	cmd.Flags().Bool("allow-invalid", false,
		"Derive from "+flow.PlaceholderDomain+" for inputs without a domain instead of failing")
}

// addTorFlags registers the flags routing DNS lookups through Tor.
func addTorFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("tor", false,
		"Route dns resolver lookups through an embedded Tor daemon")
	cmd.Flags().StringP("tor-proxy", "e", "",
		"Route dns resolver lookups through an existing Tor proxy (e.g., 127.0.0.1:9050)")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
}

// addReportFlags registers the output format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
	cmd.Flags().Bool("tee", false,
		"With --output, also print the plain text output to stdout")
	cmd.Flags().BoolP("quiet", "q", false,
		"Print values only, one per line")
}

// lookupNetwork holds the HTTP client used by the dns resolver and the
// resources to release afterwards.
type lookupNetwork struct {
	client      domain.HTTPDoer
	embeddedTor *tor.EmbeddedTor
	logger      *slog.Logger
}

// Close stops the embedded Tor daemon, if any.
func (n *lookupNetwork) Close() {
	if n.embeddedTor == nil {
		return
	}
	n.logger.Info("stopping embedded Tor daemon...")
	if err := n.embeddedTor.Stop(); err != nil {
		n.logger.Error("failed to stop embedded Tor", "error", err)
	}
}

// setupNetwork prepares the HTTP client for network lookups. Without Tor
// options the resolver uses its default client.
func setupNetwork(ctx context.Context, cfg *config.Config, stderr io.Writer, logger *slog.Logger) (*lookupNetwork, error) {
	n := &lookupNetwork{logger: logger}
	timeout := cfg.Settings.LookupTimeout

	switch {
	case cfg.TorProxyAddress != "":
		client, err := tor.NewClient(cfg.TorProxyAddress, timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if err := client.CheckConnection(ctx).Error(); err != nil {
			return nil, fmt.Errorf("tor proxy check failed (make sure Tor is running at %s): %w",
				client.ProxyAddress(), err)
		}
		logger.Info("Tor proxy connection verified", "address", client.ProxyAddress())
		n.client = client.NewHTTPClient()

	case cfg.UseTor:
		fmt.Fprintln(stderr, "Starting embedded Tor daemon...")
		fmt.Fprintf(stderr, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

		embeddedTor := tor.NewEmbeddedTor(
			tor.WithStartupTimeout(cfg.TorStartupTimeout),
			tor.WithLogger(logger),
		)
		if err := embeddedTor.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		n.embeddedTor = embeddedTor

		client, err := embeddedTor.NewClient(timeout)
		if err != nil {
			n.Close()
			return nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if err := client.CheckConnection(ctx).Error(); err != nil {
			n.Close()
			return nil, fmt.Errorf("embedded Tor proxy check failed: %w", err)
		}
		logger.Info("embedded Tor proxy ready", "address", client.ProxyAddress())
		n.client = client.NewHTTPClient()
	}

	return n, nil
}

// resolverFactory builds resolvers that share the lookup client.
func resolverFactory(client domain.HTTPDoer, logger *slog.Logger) func(config.Settings) (domain.Resolver, error) {
	return func(s config.Settings) (domain.Resolver, error) {
		opts := []domain.Option{
			domain.WithEndpoint(s.DoHEndpoint),
			domain.WithTimeout(s.LookupTimeout),
			domain.WithLogger(logger),
		}
		if client != nil {
			opts = append(opts, domain.WithHTTPClient(client))
		}
		return domain.NewResolver(s.Resolver, opts...)
	}
}

// resolveSite resolves one site, applying the invalid domain policy.
func resolveSite(ctx context.Context, resolver domain.Resolver, settings config.Settings, site string) (domain.Resolution, error) {
	res, err := resolver.Resolve(ctx, site)
	if errors.Is(err, domain.ErrNoDomain) && !settings.DisallowInvalidDomains {
		return domain.Resolution{
			Host:   res.Host,
			Domain: flow.PlaceholderDomain,
			Status: domain.StatusHeuristic,
			Reason: "no domain name, using the placeholder",
		}, nil
	}
	return res, err
}

// openStore opens the master fingerprint database. With create unset a
// missing database is not created. A database that cannot be opened only
// disables the check, so nil is returned.
func openStore(cfg *config.Config, create bool, logger *slog.Logger) *database.Store {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create

	store, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		if create {
			logger.Warn("master secret check disabled", "dir", cfg.DBDir, "error", err)
		} else {
			logger.Debug("no master fingerprint database", "dir", cfg.DBDir, "error", err)
		}
		return nil
	}
	logger.Debug("database opened", "path", store.Path())
	return store
}

// readMaster reads the master secret from the environment variable envName,
// from a hidden terminal prompt, or from the first line of stdin.
func readMaster(cmd *cobra.Command, envName string) (string, error) {
	if envName != "" {
		master, ok := os.LookupEnv(envName)
		if !ok {
			return "", fmt.Errorf("environment variable %s is not set", envName)
		}
		if master == "" {
			return "", errEmptyMaster
		}
		return master, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Master secret: ")
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read master secret: %w", err)
		}
		if len(secret) == 0 {
			return "", errEmptyMaster
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read master secret: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errEmptyMaster
	}
	return line, nil
}

// outputReport writes r in the requested format to stdout or cfg.ReportFile.
// With cfg.TeeReport a file report is also printed to stdout as plain text.
func outputReport(cmd *cobra.Command, cfg *config.Config, r *report.Report, quiet bool) error {
	stdout := cmd.OutOrStdout()
	output := stdout
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Passwords are written, so the file is only readable by the owner.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewTextWriter(output,
			report.WithQuiet(quiet),
			report.WithVerbose(cfg.Verbose),
		)
	}
	if cfg.TeeReport && cfg.ReportFile != "" {
		w = report.NewMultiWriter(w, report.NewTextWriter(stdout,
			report.WithQuiet(quiet),
			report.WithVerbose(cfg.Verbose),
		))
	}
	_, err := w.Write(r)
	return err
}

// newReport creates a report stamped with the build version.
func newReport() *report.Report {
	return report.New(getVersion(), time.Now())
}
