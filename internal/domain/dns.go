package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultDoHEndpoint is the Google Public DNS JSON API.
	DefaultDoHEndpoint = "https://dns.google/resolve"

	// DefaultLookupTimeout bounds a single public suffix lookup.
	DefaultLookupTimeout = 5 * time.Second

	// publicSuffixZone answers PTR queries for <host>.query.publicsuffix.zone
	// with the public suffix of host.
	publicSuffixZone = "query.publicsuffix.zone"

	// maxResponseSize limits the DNS JSON body read into memory.
	maxResponseSize = 64 * 1024
)

// HTTPDoer sends HTTP requests. *http.Client implements it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DNSResolver finds the registrable domain by asking the publicsuffix.zone
// DNS service through a DNS-over-HTTPS JSON API. Only DNSSEC authenticated
// answers (AD flag) are accepted.
type DNSResolver struct {
	client   HTTPDoer
	endpoint string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewDNSResolver creates a DNSResolver. Use NewResolver to get one wrapped
// with the syntactic fallback.
func NewDNSResolver(opts ...Option) *DNSResolver {
	o := Options{
		Endpoint: DefaultDoHEndpoint,
		Timeout:  DefaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &DNSResolver{
		client:   o.HTTPClient,
		endpoint: o.Endpoint,
		timeout:  o.Timeout,
		logger:   o.Logger,
	}
}

// dohResponse is the subset of the DNS JSON API response we use.
type dohResponse struct {
	Status int         `json:"Status"`
	AD     bool        `json:"AD"`
	Answer []dohAnswer `json:"Answer"`
}

type dohAnswer struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	Data string `json:"data"`
}

// Resolve implements Resolver. Hosts with one or two labels are returned
// without a lookup.
func (r *DNSResolver) Resolve(ctx context.Context, rawURL string) (Resolution, error) {
	host := hostOf(rawURL)
	if _, ok := Canonicalize(host); !ok {
		return Resolution{Host: host}, ErrNoDomain
	}
	if labelCount(host) <= 2 {
		return Resolution{Host: host, Domain: host, Status: StatusChecked}, nil
	}

	suffix, err := r.lookupSuffix(ctx, host)
	if err != nil {
		return Resolution{Host: host}, err
	}

	d, err := registrableDomain(host, suffix)
	if err != nil {
		return Resolution{Host: host}, err
	}
	return Resolution{Host: host, Domain: d, Status: StatusChecked}, nil
}

// lookupSuffix returns the public suffix of host, without trailing dot.
func (r *DNSResolver) lookupSuffix(ctx context.Context, host string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	query := url.Values{}
	query.Set("name", host+"."+publicSuffixZone)
	query.Set("type", "PTR")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", errorf(ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/dns-json")

	r.logger.Debug("querying public suffix", "host", host, "endpoint", r.endpoint)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", errorf(ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP status %d", ErrLookupFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", errorf(ErrLookupFailed, err)
	}

	var doh dohResponse
	if err := json.Unmarshal(body, &doh); err != nil {
		return "", errorf(ErrMalformedResponse, err)
	}
	return parseSuffix(doh)
}

// parseSuffix validates a DNS JSON answer and extracts the suffix.
func parseSuffix(doh dohResponse) (string, error) {
	if doh.Status != 0 {
		return "", fmt.Errorf("%w: DNS status %d", ErrLookupFailed, doh.Status)
	}
	if !doh.AD {
		return "", ErrUntrusted
	}
	// The zone answers with a CNAME to the suffix record followed by the PTR.
	if len(doh.Answer) != 2 {
		return "", fmt.Errorf("%w: expected 2 answers, got %d", ErrMalformedResponse, len(doh.Answer))
	}

	data := doh.Answer[1].Data
	if len(data) <= 1 || !strings.HasSuffix(data, ".") {
		return "", fmt.Errorf("%w: invalid answer data %q", ErrMalformedResponse, data)
	}
	return strings.ToLower(strings.TrimSuffix(data, ".")), nil
}

// registrableDomain returns the label of host right before suffix, joined
// with suffix.
func registrableDomain(host, suffix string) (string, error) {
	rest, ok := strings.CutSuffix(host, "."+suffix)
	if !ok || rest == "" {
		return "", fmt.Errorf("%w: %q is not a suffix of %q", ErrSuffixMismatch, suffix, host)
	}
	_, label := cutLastLabel(rest)
	if label == "" {
		return "", fmt.Errorf("%w: empty label before %q", ErrSuffixMismatch, suffix)
	}
	return label + "." + suffix, nil
}
