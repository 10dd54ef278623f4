// Package domain maps URLs and host names to the site identifier used for
// password derivation.
//
// The identifier must be stable: "https://www.example.com/login" and
// "example.com" have to yield the same password. Canonicalize implements the
// historical two-label heuristic, which is pure and works offline but is
// wrong for multi-part public suffixes such as "co.uk".
//
// Resolver implementations refine that heuristic:
//
//   - SyntacticResolver keeps the two-label heuristic.
//   - PublicSuffixResolver uses the public suffix list compiled into
//     golang.org/x/net/publicsuffix.
//   - DNSResolver queries the publicsuffix.zone DNS service over HTTPS and
//     only trusts DNSSEC-authenticated answers.
//
// FallbackResolver wraps a refining resolver so that any lookup failure
// falls back to the syntactic guess. Derivation never blocks on the network.
package domain
