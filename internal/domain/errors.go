package domain

import (
	"errors"
	"fmt"
)

// Resolution errors.
var (
	// ErrNoDomain is returned when the input has fewer than two labels
	// (for example "localhost") and no site identifier can be extracted.
	ErrNoDomain = errors.New("no domain in input")

	// ErrInvalidURL is returned when the input cannot be parsed as a URL or host.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrLookupFailed is returned when the public suffix lookup could not be performed.
	ErrLookupFailed = errors.New("public suffix lookup failed")

	// ErrUntrusted is returned when the DNS answer is not DNSSEC authenticated.
	ErrUntrusted = errors.New("response cannot be trusted")

	// ErrMalformedResponse is returned when the DNS answer does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed public suffix response")

	// ErrSuffixMismatch is returned when the returned suffix does not belong to the host.
	ErrSuffixMismatch = errors.New("public suffix does not match host")

	// ErrUnknownStrategy is returned by NewResolver for unsupported strategy names.
	ErrUnknownStrategy = errors.New("unknown resolver strategy")
)

// errorf wraps cause with a sentinel so that both match errors.Is.
func errorf(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
