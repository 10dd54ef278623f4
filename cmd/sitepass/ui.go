package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/nao1215/sitepass/internal/config"
	"github.com/nao1215/sitepass/internal/database"
	"github.com/nao1215/sitepass/internal/domain"
	"github.com/nao1215/sitepass/internal/log"
	"github.com/nao1215/sitepass/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errNotTerminal is returned when the UI is started without a terminal.
var errNotTerminal = errors.New("the ui command requires a terminal (use derive in scripts)")

// errStoreUnavailable is returned when the fingerprint database cannot be opened.
var errStoreUnavailable = errors.New("master fingerprint database unavailable")

// NewUICmd creates the ui command.
func NewUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the interactive terminal UI",
		Long: `UI starts the interactive terminal UI.

Type your master secret, then a site. The recommended password is shown
first; press m to reveal the variants for sites with password rules and
1-6 to copy a password to the clipboard. Passwords must be copied in
order, so that a wrong one is never used by mistake.

F2 opens the settings, which are saved to the settings file.

Logs go to ui.log in the data directory when --verbose is set.`,
		Args: cobra.NoArgs,
		RunE: runUICmd,
	}

	addTorFlags(cmd)

	return cmd
}

// runUICmd executes the ui command.
func runUICmd(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}

	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.UseTor || cfg.TorProxyAddress != "" {
		// Tor only carries dns lookups.
		cfg.Settings.Resolver = domain.StrategyDNS
	}
	if err := cfg.Settings.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// stderr would garble the UI, so logs go to a file or nowhere.
	logger := log.Discard()
	if cfg.Verbose {
		f, err := openUILog(cfg.DBDir)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = newLogger(f, cfg)
	}
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	network, err := setupNetwork(ctx, cfg, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}
	defer network.Close()

	appCfg := tui.AppConfig{
		Settings:    cfg.Settings,
		NewResolver: resolverFactory(network.client, logger),
		SaveSettings: func(s config.Settings) error {
			return saveSettings(cfg.SettingsPath, s)
		},
		Logger: logger,
	}
	store := newLazyStore(cfg, logger)
	defer store.Close()
	appCfg.Store = store

	return tui.Run(ctx, appCfg)
}

// lazyStore opens the fingerprint database on first use. The file is only
// created once a fingerprint has to be remembered, so store_hash turned on
// from the settings panel still works.
type lazyStore struct {
	cfg    *config.Config
	logger *slog.Logger

	mu    sync.Mutex
	store *database.Store
}

func newLazyStore(cfg *config.Config, logger *slog.Logger) *lazyStore {
	return &lazyStore{cfg: cfg, logger: logger}
}

func (l *lazyStore) open(create bool) *database.Store {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		l.store = openStore(l.cfg, create, l.logger)
	}
	return l.store
}

// Check looks up fingerprint. Without a database nothing is known.
func (l *lazyStore) Check(ctx context.Context, fingerprint string, storeHash bool) (database.MasterCheck, error) {
	store := l.open(storeHash)
	if store == nil {
		return database.Unchecked, nil
	}
	return store.Check(ctx, fingerprint, storeHash)
}

// Remember records fingerprint, creating the database if needed.
func (l *lazyStore) Remember(ctx context.Context, fingerprint string) error {
	store := l.open(true)
	if store == nil {
		return errStoreUnavailable
	}
	return store.Remember(ctx, fingerprint)
}

// Close closes the database if it was opened.
func (l *lazyStore) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return
	}
	if err := l.store.Close(); err != nil {
		l.logger.Warn("failed to close database", "error", err)
	}
	l.store = nil
}

// saveSettings writes s to path, or to the default location when path is empty.
func saveSettings(path string, s config.Settings) error {
	if path == "" {
		path = config.DefaultSettingsPath()
	}
	return config.SaveSettings(path, s)
}

// openUILog opens ui.log in dir for appending.
func openUILog(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, "ui.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // fixed file name
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
