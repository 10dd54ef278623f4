package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Settings.Validate() and
// can be matched with errors.Is().
var (
	// ErrInvalidResolver is returned when the resolver strategy is not supported.
	ErrInvalidResolver = errors.New("invalid resolver: must be one of syntactic, publicsuffix, dns")

	// ErrInvalidTimeout is returned when the lookup timeout is negative.
	ErrInvalidTimeout = errors.New("invalid lookup timeout: must be non-negative")

	// ErrInvalidEndpoint is returned when the DNS-over-HTTPS endpoint is not an https URL.
	ErrInvalidEndpoint = errors.New("invalid DNS-over-HTTPS endpoint: must be an https URL")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrTeeRequiresOutput is returned when --tee is given without --output.
	ErrTeeRequiresOutput = errors.New("--tee requires --output")

	// ErrConflictingTorOptions is returned when both the embedded Tor daemon
	// and an external Tor proxy are requested.
	ErrConflictingTorOptions = errors.New("conflicting Tor options: --tor and --tor-proxy cannot be used together")

	// ErrTorRequiresDNS is returned when Tor is requested with a resolver
	// that never touches the network.
	ErrTorRequiresDNS = errors.New("tor is only used by the dns resolver: add --resolver dns")

	// ErrUnknownSetting is returned by Settings.Set for unknown keys.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrInvalidSettingValue is returned by Settings.Set when the value cannot be parsed.
	ErrInvalidSettingValue = errors.New("invalid setting value")
)
