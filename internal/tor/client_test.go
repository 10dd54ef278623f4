package tor

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/sitepass/internal/domain"
)

// TestNewClient tests client creation and address validation.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("valid address", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:9050", 30*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("unexpected proxy address %q", client.ProxyAddress())
		}
		if client.timeout != 30*time.Second {
			t.Errorf("expected timeout 30s, got %v", client.timeout)
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()

		if _, err := NewClient("not-an-address", time.Second); !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}

// TestIsValidProxyAddress tests proxy address validation.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		valid   bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:9150", true},
		{"[::1]:9050", true},
		{"127.0.0.1:65535", true},
		{"127.0.0.1", false},
		{":9050", false},
		{"127.0.0.1:", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:65536", false},
		{"127.0.0.1:abc", false},
		{"socks5://127.0.0.1:9050", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()
			if got := isValidProxyAddress(tt.address); got != tt.valid {
				t.Errorf("isValidProxyAddress(%q) = %v, want %v", tt.address, got, tt.valid)
			}
		})
	}
}

// TestNewHTTPClient tests the HTTP client configuration.
func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:9050", 7*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	httpClient := client.NewHTTPClient()
	if httpClient.Timeout != 7*time.Second {
		t.Errorf("expected timeout 7s, got %v", httpClient.Timeout)
	}

	transport, ok := httpClient.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", httpClient.Transport)
	}
	if transport.TLSClientConfig != nil && transport.TLSClientConfig.InsecureSkipVerify {
		t.Error("certificate verification must stay enabled")
	}
	if !transport.DisableCompression {
		t.Error("expected compression to be disabled")
	}
	if httpClient.Jar != nil {
		t.Error("expected no cookie jar")
	}
	if err := httpClient.CheckRedirect(nil, nil); !errors.Is(err, http.ErrUseLastResponse) {
		t.Errorf("expected redirects to be refused, got %v", err)
	}
}

// TestProxyStatus tests status strings and errors.
func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  ProxyStatus
		str     string
		wantErr error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not Tor)", ErrProxyNotTor},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			t.Parallel()
			if tt.status.String() != tt.str {
				t.Errorf("String() = %q, want %q", tt.status.String(), tt.str)
			}
			if err := tt.status.Error(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Error() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if ProxyStatus(99).String() != "unknown" {
		t.Error("expected unknown status string")
	}
	if ProxyStatus(99).Error() == nil {
		t.Error("expected error for unknown status")
	}
}

// serveOnce starts a listener whose first connection is handled by fn.
func serveOnce(t *testing.T, fn func(net.Conn)) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fn(conn)
	}()
	return listener.Addr().String()
}

// TestCheckConnection tests the SOCKS5 handshake probe.
func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("returns CannotConnect for closed port", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatal(err)
		}
		addr := listener.Addr().String()
		_ = listener.Close()

		client, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", status)
		}
	})

	t.Run("returns WrongType for non-SOCKS5 server", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = io.ReadFull(conn, buf)
			_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n"))
		})

		client, _ := NewClient(addr, time.Second)
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns WrongType for SOCKS5 requiring auth", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = io.ReadFull(conn, buf)
			_, _ = conn.Write([]byte{0x05, 0xFF})
		})

		client, _ := NewClient(addr, time.Second)
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns OK and probes the DoH host", func(t *testing.T) {
		t.Parallel()

		target := make(chan string, 1)
		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = io.ReadFull(conn, buf)
			_, _ = conn.Write([]byte{0x05, 0x00})

			hdr := make([]byte, 5)
			_, _ = io.ReadFull(conn, hdr)
			name := make([]byte, int(hdr[4])+2)
			_, _ = io.ReadFull(conn, name)
			target <- string(name[:len(name)-2])

			// Host unreachable still proves the proxy works.
			_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		})

		client, _ := NewClient(addr, time.Second)
		if status := client.CheckConnection(context.Background()); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
		if got := <-target; got != probeHost {
			t.Errorf("expected CONNECT to %q, got %q", probeHost, got)
		}
	})

	t.Run("returns WrongType for wrong version in CONNECT response", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = io.ReadFull(conn, buf)
			_, _ = conn.Write([]byte{0x05, 0x00})
			req := make([]byte, 256)
			_, _ = conn.Read(req)
			_, _ = conn.Write([]byte{0x04, 0x00, 0x00, 0x01})
		})

		client, _ := NewClient(addr, time.Second)
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		client, _ := NewClient("127.0.0.1:59998", time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		status := client.CheckConnection(ctx)
		if status != ProxyStatusCannotConnect && status != ProxyStatusTimeout {
			t.Errorf("expected ProxyStatusCannotConnect or ProxyStatusTimeout, got %v", status)
		}
	})
}

// startSOCKSRelay runs a minimal SOCKS5 proxy that relays CONNECT
// requests to their real destination.
func startSOCKSRelay(t *testing.T) (string, *atomic.Int32) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start relay: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	var connects atomic.Int32
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go relay(conn, &connects)
		}
	}()
	return listener.Addr().String(), &connects
}

func relay(conn net.Conn, connects *atomic.Int32) {
	defer conn.Close()

	greeting := make([]byte, 3)
	if _, err := io.ReadFull(conn, greeting); err != nil {
		return
	}
	if _, err := conn.Write([]byte{0x05, 0x00}); err != nil {
		return
	}

	hdr := make([]byte, 4)
	if _, err := io.ReadFull(conn, hdr); err != nil {
		return
	}

	var host string
	switch hdr[3] {
	case 0x01:
		ip := make([]byte, 4)
		if _, err := io.ReadFull(conn, ip); err != nil {
			return
		}
		host = net.IP(ip).String()
	case 0x03:
		l := make([]byte, 1)
		if _, err := io.ReadFull(conn, l); err != nil {
			return
		}
		name := make([]byte, int(l[0]))
		if _, err := io.ReadFull(conn, name); err != nil {
			return
		}
		host = string(name)
	default:
		return
	}

	port := make([]byte, 2)
	if _, err := io.ReadFull(conn, port); err != nil {
		return
	}
	target := net.JoinHostPort(host, strconv.Itoa(int(binary.BigEndian.Uint16(port))))

	upstream, err := net.Dial("tcp", target) //nolint:noctx // test code
	if err != nil {
		_, _ = conn.Write([]byte{0x05, 0x05, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		return
	}
	defer upstream.Close()
	connects.Add(1)

	if _, err := conn.Write([]byte{0x05, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0}); err != nil {
		return
	}

	go func() {
		_, _ = io.Copy(upstream, conn)
		_ = upstream.Close()
	}()
	_, _ = io.Copy(conn, upstream)
}

// TestHTTPClientThroughProxy resolves a domain with the dns resolver
// whose lookups travel through a SOCKS5 relay.
func TestHTTPClientThroughProxy(t *testing.T) {
	t.Parallel()

	doh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "login.example.co.uk.query.publicsuffix.zone" {
			http.Error(w, "unexpected query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/dns-json")
		_, _ = io.WriteString(w, `{"Status":0,"AD":true,"Answer":[`+
			`{"data":"co.uk.suffix.publicsuffix.zone."},{"data":"co.uk."}]}`)
	}))
	t.Cleanup(doh.Close)

	proxyAddr, connects := startSOCKSRelay(t)
	client, err := NewClient(proxyAddr, 5*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	resolver := domain.NewDNSResolver(
		domain.WithHTTPClient(client.NewHTTPClient()),
		domain.WithEndpoint(doh.URL),
	)

	res, err := resolver.Resolve(context.Background(), "https://login.example.co.uk/account")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Domain != "example.co.uk" || res.Status != domain.StatusChecked {
		t.Errorf("unexpected resolution %+v", res)
	}
	if connects.Load() == 0 {
		t.Error("expected the lookup to go through the proxy")
	}
}

// TestDialContext tests dialing through an unreachable proxy.
func TestDialContext(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatal(err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	client, err := NewClient(addr, time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := client.DialContext(ctx, "tcp", "dns.google:443"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})

	t.Run("proxy down", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if _, err := client.DialContext(ctx, "tcp", "dns.google:443"); err == nil {
			t.Error("expected error when the proxy is down")
		}
	})
}
