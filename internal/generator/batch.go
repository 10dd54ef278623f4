package generator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of sites processed at the same time by a Batch.
const DefaultConcurrency = 4

// DomainFunc maps a user supplied site (usually a URL) to the domain used
// for derivation. It may perform network lookups.
type DomainFunc func(ctx context.Context, site string) (string, error)

// SiteResult holds the passwords derived for one site of a batch.
type SiteResult struct {
	// Site is the input as given by the caller.
	Site string `json:"site"`
	// Domain is the domain that was fed to Derive.
	Domain string `json:"domain"`
	// Passwords is empty when Err is set.
	Passwords []Password `json:"passwords"`
	// Err is the domain lookup error, if any.
	Err error `json:"-"`
}

// Batch derives passwords for several sites concurrently.
//
// Derivation itself is pure and cheap; the concurrency exists for the
// domain lookups, which may go over the network.
type Batch struct {
	domainFunc  DomainFunc
	variants    []Variant
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithConcurrency sets the maximum number of sites processed at once.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithVariants sets the variants derived for every site.
func WithVariants(variants []Variant) BatchOption {
	return func(b *Batch) {
		if len(variants) > 0 {
			b.variants = variants
		}
	}
}

// WithBatchLogger sets the logger used for progress messages.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// NewBatch creates a Batch that maps sites to domains with domainFunc.
func NewBatch(domainFunc DomainFunc, opts ...BatchOption) *Batch {
	b := &Batch{
		domainFunc:  domainFunc,
		variants:    DefaultVariants(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Run derives the passwords of every site. Results keep the order of sites.
// A failed domain lookup is recorded in its SiteResult and does not stop the
// other sites; only context cancellation makes Run return an error.
func (b *Batch) Run(ctx context.Context, masterSecret string, sites []string) ([]SiteResult, error) {
	b.logger.Debug("starting batch derivation",
		"sites", len(sites),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	results := make([]SiteResult, len(sites))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, site := range sites {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result := SiteResult{Site: site}
			domain, err := b.domainFunc(ctx, site)
			if err != nil {
				b.logger.Warn("domain lookup failed", "site", site, "error", err)
				result.Err = err
				results[i] = result
				return nil
			}

			result.Domain = domain
			result.Passwords = DeriveVariants(masterSecret, domain, b.variants)
			results[i] = result
			return nil
		})
	}

	err := g.Wait()

	b.logger.Debug("batch derivation complete",
		"sites", len(sites),
		"elapsed", time.Since(start),
	)

	return results, err
}
