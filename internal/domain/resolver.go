package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Strategy names accepted by NewResolver.
const (
	// StrategySyntactic keeps the two-label heuristic.
	StrategySyntactic = "syntactic"
	// StrategyPublicSuffix uses the compiled-in public suffix list.
	StrategyPublicSuffix = "publicsuffix"
	// StrategyDNS queries publicsuffix.zone over DNS-over-HTTPS.
	StrategyDNS = "dns"
)

// Strategies returns the supported strategy names.
func Strategies() []string {
	return []string{StrategySyntactic, StrategyPublicSuffix, StrategyDNS}
}

// Status describes how much a Resolution can be trusted.
type Status int

const (
	// StatusHeuristic is the two-label guess with no refinement attempted.
	StatusHeuristic Status = iota
	// StatusChecking is a provisional two-label guess while a lookup is pending.
	StatusChecking
	// StatusChecked is a domain confirmed by the public suffix list or by
	// a host that has no more than two labels.
	StatusChecked
	// StatusUncheckable is the two-label guess kept after a failed lookup.
	StatusUncheckable
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusHeuristic:
		return "heuristic"
	case StatusChecking:
		return "checking"
	case StatusChecked:
		return "checked"
	case StatusUncheckable:
		return "uncheckable"
	default:
		return "unknown"
	}
}

// Resolution is the domain chosen for a host.
type Resolution struct {
	// Host is the host name the domain was extracted from.
	Host string `json:"host"`
	// Domain is the site identifier passed to the password generator.
	Domain string `json:"domain"`
	// Status tells whether Domain was confirmed.
	Status Status `json:"-"`
	// Reason explains why a lookup failed. Only set for StatusUncheckable.
	Reason string `json:"reason,omitempty"`
}

// Resolver turns a URL or host name into a Resolution.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (Resolution, error)
}

// hostOf returns the normalized host of rawURL, or rawURL itself when it
// does not parse. Resolution must not fail on odd input.
func hostOf(rawURL string) string {
	host, err := HostFromURL(rawURL)
	if err != nil {
		return rawURL
	}
	return host
}

// ProvisionalResolution returns the resolution shown while a lookup runs.
// Hosts with one or two labels need no lookup and are returned as checked.
func ProvisionalResolution(host string) Resolution {
	if labelCount(host) <= 2 {
		return Resolution{Host: host, Domain: host, Status: StatusChecked}
	}
	guess, _ := Canonicalize(host)
	return Resolution{Host: host, Domain: guess, Status: StatusChecking}
}

// SyntacticResolver applies Canonicalize to the normalized host.
type SyntacticResolver struct{}

// Resolve implements Resolver. It never touches the network.
func (SyntacticResolver) Resolve(_ context.Context, rawURL string) (Resolution, error) {
	host := hostOf(rawURL)
	d, ok := Canonicalize(host)
	if !ok {
		return Resolution{Host: host}, ErrNoDomain
	}
	status := StatusHeuristic
	if labelCount(host) <= 2 {
		status = StatusChecked
	}
	return Resolution{Host: host, Domain: d, Status: status}, nil
}

// PublicSuffixResolver finds the registrable domain with the public suffix
// list compiled into golang.org/x/net/publicsuffix. It works offline but
// only knows the suffixes that existed when the binary was built.
type PublicSuffixResolver struct{}

// Resolve implements Resolver. Like DNSResolver, hosts with one or two
// labels are returned as they are.
func (PublicSuffixResolver) Resolve(_ context.Context, rawURL string) (Resolution, error) {
	host := hostOf(rawURL)
	if _, ok := Canonicalize(host); !ok {
		return Resolution{Host: host}, ErrNoDomain
	}
	if labelCount(host) <= 2 {
		return Resolution{Host: host, Domain: host, Status: StatusChecked}, nil
	}

	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return Resolution{Host: host}, errorf(ErrLookupFailed, err)
	}
	return Resolution{Host: host, Domain: d, Status: StatusChecked}, nil
}

// FallbackResolver asks Primary and falls back to the syntactic guess when
// Primary fails. The fallback is marked StatusUncheckable.
type FallbackResolver struct {
	Primary Resolver
	Logger  *slog.Logger
}

// Resolve implements Resolver. It only fails with ErrNoDomain.
func (r FallbackResolver) Resolve(ctx context.Context, rawURL string) (Resolution, error) {
	res, err := r.Primary.Resolve(ctx, rawURL)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, ErrNoDomain) {
		return res, err
	}

	guess, guessErr := SyntacticResolver{}.Resolve(ctx, rawURL)
	if guessErr != nil {
		return guess, guessErr
	}
	if r.Logger != nil {
		r.Logger.Warn("domain lookup failed, using two-label guess",
			"host", guess.Host,
			"domain", guess.Domain,
			"error", err,
		)
	}
	guess.Status = StatusUncheckable
	guess.Reason = err.Error()
	return guess, nil
}

// Options configures the resolvers created by NewResolver.
type Options struct {
	// HTTPClient performs DNS-over-HTTPS requests. Defaults to a plain
	// http.Client with Timeout.
	HTTPClient HTTPDoer
	// Endpoint is the DNS-over-HTTPS JSON API endpoint.
	Endpoint string
	// Timeout bounds a single network lookup.
	Timeout time.Duration
	// Logger receives lookup diagnostics.
	Logger *slog.Logger
}

// Option configures Options.
type Option func(*Options)

// WithHTTPClient sets the client used for network lookups.
func WithHTTPClient(c HTTPDoer) Option {
	return func(o *Options) {
		o.HTTPClient = c
	}
}

// WithEndpoint sets the DNS-over-HTTPS endpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *Options) {
		if endpoint != "" {
			o.Endpoint = endpoint
		}
	}
}

// WithTimeout sets the lookup timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// NewResolver creates the resolver for strategy. Refining strategies are
// wrapped in a FallbackResolver.
func NewResolver(strategy string, opts ...Option) (Resolver, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case StrategySyntactic, "":
		return SyntacticResolver{}, nil
	case StrategyPublicSuffix:
		return FallbackResolver{Primary: PublicSuffixResolver{}, Logger: o.Logger}, nil
	case StrategyDNS:
		return FallbackResolver{Primary: NewDNSResolver(opts...), Logger: o.Logger}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownStrategy, strategy, strings.Join(Strategies(), ", "))
	}
}
