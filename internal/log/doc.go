// Package log provides the slog setup of sitepass.
//
// SecureHandler wraps any slog.Handler and redacts, even in verbose mode:
//   - attributes whose key names a secret (master, password, secret, seed)
//   - master fingerprints (128 hex characters)
//   - values shaped like derived passwords
//   - credentials embedded in SOCKS5 proxy URLs
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("resolved", "host", host, "domain", d) // kept
//	logger.Debug("derived", "password", p)             // redacted
//
// The same logger is handed to tornago when the embedded Tor daemon is used.
package log
