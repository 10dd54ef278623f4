package config

import (
	"net/url"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/sitepass/internal/domain"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitepass"

	// DefaultResolver keeps the two-label heuristic. It works offline and
	// matches the domains used by older releases.
	DefaultResolver = domain.StrategySyntactic

	// DefaultLookupTimeout bounds a single public suffix lookup.
	// Derivation falls back to the two-label guess when it expires.
	DefaultLookupTimeout = domain.DefaultLookupTimeout

	// DefaultDoHEndpoint is the DNS-over-HTTPS JSON endpoint used by the dns resolver.
	DefaultDoHEndpoint = domain.DefaultDoHEndpoint

	// DefaultBatchSize is the number of sites resolved concurrently by derive.
	DefaultBatchSize = 4

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Settings are the user preferences persisted between runs.
type Settings struct {
	// StoreHash keeps a SHA3-512 fingerprint of each master secret used, so
	// that a mistyped master secret can be detected the next time.
	StoreHash bool `yaml:"store_hash"`

	// KeyloggerProtection interleaves decoy keystrokes when typing the
	// master secret in the terminal UI.
	KeyloggerProtection bool `yaml:"keylogger_protection"`

	// DisallowInvalidDomains refuses to derive passwords for inputs without
	// a two-label domain. When false the placeholder domain is used instead.
	DisallowInvalidDomains bool `yaml:"disallow_invalid_domains"`

	// Resolver is the domain resolution strategy: syntactic, publicsuffix or dns.
	Resolver string `yaml:"resolver"`

	// DoHEndpoint is the DNS-over-HTTPS endpoint for the dns resolver.
	DoHEndpoint string `yaml:"doh_endpoint,omitempty"`

	// LookupTimeout bounds a single network lookup.
	LookupTimeout time.Duration `yaml:"lookup_timeout,omitempty"`
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		StoreHash:              true,
		KeyloggerProtection:    false,
		DisallowInvalidDomains: true,
		Resolver:               DefaultResolver,
		DoHEndpoint:            DefaultDoHEndpoint,
		LookupTimeout:          DefaultLookupTimeout,
	}
}

// Validate checks the settings and returns the first problem found.
func (s Settings) Validate() error {
	if !slices.Contains(domain.Strategies(), s.Resolver) {
		return ErrInvalidResolver
	}
	if s.LookupTimeout < 0 {
		return ErrInvalidTimeout
	}
	if s.DoHEndpoint != "" {
		u, err := url.Parse(s.DoHEndpoint)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return ErrInvalidEndpoint
		}
	}
	return nil
}

// Config holds the options of a single command invocation. It is built from
// the settings file and CLI flags and passed down explicitly; nothing reads
// configuration from global state.
type Config struct {
	// Settings are the persisted preferences, possibly overridden by flags.
	Settings Settings

	// SettingsPath is the settings file in use. Empty means the XDG default.
	SettingsPath string

	// DBDir is the directory holding the master fingerprint database.
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON writes logs as JSON lines instead of text.
	LogJSON bool

	// Sites are the URLs or host names to derive passwords for.
	Sites []string

	// Variants restricts output to the named variants. Empty means all six.
	Variants []string

	// MasterEnv names an environment variable holding the master secret.
	// When empty the secret is read from the terminal or stdin.
	MasterEnv string

	// BatchSize is the number of sites resolved concurrently.
	BatchSize int

	// JSONReport selects JSON output.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile writes the output to a file instead of stdout.
	ReportFile string

	// TeeReport also prints the output to stdout when ReportFile is set.
	TeeReport bool

	// UseTor routes public suffix lookups through an embedded Tor daemon.
	UseTor bool

	// TorProxyAddress routes public suffix lookups through an external
	// Tor SOCKS5 proxy ("host:port").
	TorProxyAddress string

	// TorStartupTimeout is the maximum time to wait for the embedded Tor daemon.
	TorStartupTimeout time.Duration
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Settings:          DefaultSettings(),
		DBDir:             XDGDataDir(),
		BatchSize:         DefaultBatchSize,
		TorStartupTimeout: DefaultTorStartupTimeout,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.TeeReport && c.ReportFile == "" {
		return ErrTeeRequiresOutput
	}
	if c.UseTor && c.TorProxyAddress != "" {
		return ErrConflictingTorOptions
	}
	if (c.UseTor || c.TorProxyAddress != "") && c.Settings.Resolver != domain.StrategyDNS {
		return ErrTorRequiresDNS
	}
	return nil
}

// XDGDataDir returns the XDG data directory for sitepass.
// On Linux: ~/.local/share/sitepass
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitepass.
// On Linux: ~/.config/sitepass
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
