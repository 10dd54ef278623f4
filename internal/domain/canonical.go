package domain

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const schemeSeparator = "://"

// Canonicalize extracts the last two labels of the host in rawURL.
//
// The scheme and everything from the first "/" on are dropped. The result
// is "second.last", for example "mubelotix.dev" for
// "https://test.mubelotix.dev/index.html". It reports false when the host
// has a single label or the input is empty.
//
// Canonicalize is purely syntactic and does not normalize case.
func Canonicalize(rawURL string) (string, bool) {
	host := rawURL
	if _, after, found := strings.Cut(host, schemeSeparator); found {
		host = after
	}
	host, _, _ = strings.Cut(host, "/")

	rest, last := cutLastLabel(host)
	if rest == "" || last == "" {
		return "", false
	}

	// rest ends with the dot separating the two labels.
	_, second := cutLastLabel(rest[:len(rest)-1])
	return second + "." + last, true
}

// cutLastLabel splits s after its last dot. rest keeps the dot.
func cutLastLabel(s string) (rest, label string) {
	i := strings.LastIndexByte(s, '.')
	return s[:i+1], s[i+1:]
}

// HostFromURL returns the host name of rawURL the way a browser reports it:
// without scheme, userinfo, port or path, lower case, and with
// internationalized labels converted to their ASCII (punycode) form.
//
// Input without a scheme is treated as a bare host. A host that is not a
// valid IDNA name is returned lower-cased rather than rejected.
func HostFromURL(rawURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(raw, schemeSeparator) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", errorf(ErrInvalidURL, err)
	}

	host := strings.TrimSuffix(u.Hostname(), ".")
	if host == "" {
		return "", ErrInvalidURL
	}

	host = cases.Lower(language.Und).String(host)
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return host, nil
}

// labelCount returns the number of dot separated labels in host.
func labelCount(host string) int {
	return strings.Count(host, ".") + 1
}
