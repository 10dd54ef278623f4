// Package tor lets the dns resolver reach its DNS-over-HTTPS endpoint
// through Tor.
//
// Client wraps a SOCKS5 dialer from golang.org/x/net/proxy and hands out
// HTTP clients for the resolver. EmbeddedTor starts a private Tor daemon
// with github.com/nao1215/tornago for users without a running Tor.
package tor
