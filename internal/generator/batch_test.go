package generator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBatch_Run(t *testing.T) {
	t.Parallel()

	errLookup := errors.New("lookup failed")
	domainFunc := func(_ context.Context, site string) (string, error) {
		if strings.HasPrefix(site, "bad") {
			return "", errLookup
		}
		return strings.TrimPrefix(site, "https://"), nil
	}

	t.Run("keeps order and records errors", func(t *testing.T) {
		t.Parallel()

		b := NewBatch(domainFunc, WithConcurrency(2), WithBatchLogger(discardLogger()))
		sites := []string{"https://a.com", "bad", "https://b.com"}

		results, err := b.Run(context.Background(), "test", sites)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != len(sites) {
			t.Fatalf("expected %d results, got %d", len(sites), len(results))
		}
		for i, r := range results {
			if r.Site != sites[i] {
				t.Errorf("result %d: site = %q, want %q", i, r.Site, sites[i])
			}
		}
		if results[0].Domain != "a.com" || len(results[0].Passwords) != 6 {
			t.Errorf("unexpected first result: %+v", results[0])
		}
		if !errors.Is(results[1].Err, errLookup) {
			t.Errorf("expected lookup error, got %v", results[1].Err)
		}
		if len(results[1].Passwords) != 0 {
			t.Error("expected no passwords for failed site")
		}
		want := Derive("test", "b.com", true, false, true)
		if results[2].Passwords[0].Value != want {
			t.Errorf("got %q, want %q", results[2].Passwords[0].Value, want)
		}
	})

	t.Run("selected variants only", func(t *testing.T) {
		t.Parallel()

		short, err := ParseVariant("short")
		if err != nil {
			t.Fatal(err)
		}
		b := NewBatch(domainFunc, WithVariants([]Variant{short}), WithBatchLogger(discardLogger()))
		results, err := b.Run(context.Background(), "test", []string{"unknown.unknown"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results[0].Passwords) != 1 || results[0].Passwords[0].Value != "2a9d1e0453943SOD" {
			t.Errorf("unexpected passwords: %+v", results[0].Passwords)
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32
		slow := func(_ context.Context, site string) (string, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return site, nil
		}

		b := NewBatch(slow, WithConcurrency(2), WithBatchLogger(discardLogger()))
		sites := []string{"a.a", "b.b", "c.c", "d.d", "e.e"}
		if _, err := b.Run(context.Background(), "m", sites); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("expected at most 2 concurrent lookups, saw %d", peak.Load())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		b := NewBatch(domainFunc, WithBatchLogger(discardLogger()))
		_, err := b.Run(ctx, "test", []string{"a.com", "b.com"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
