package domain

import (
	"context"
	"errors"
	"testing"
)

func TestStatusString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status Status
		want   string
	}{
		{StatusHeuristic, "heuristic"},
		{StatusChecking, "checking"},
		{StatusChecked, "checked"},
		{StatusUncheckable, "uncheckable"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestProvisionalResolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host       string
		wantDomain string
		wantStatus Status
	}{
		{"localhost", "localhost", StatusChecked},
		{"example.com", "example.com", StatusChecked},
		{"www.example.com", "example.com", StatusChecking},
		{"shop.example.co.uk", "co.uk", StatusChecking},
	}
	for _, tt := range tests {
		got := ProvisionalResolution(tt.host)
		if got.Domain != tt.wantDomain || got.Status != tt.wantStatus || got.Host != tt.host {
			t.Errorf("ProvisionalResolution(%q) = %+v, want domain %q status %s", tt.host, got, tt.wantDomain, tt.wantStatus)
		}
	}
}

func TestSyntacticResolver(t *testing.T) {
	t.Parallel()

	r := SyntacticResolver{}

	t.Run("normalizes host first", func(t *testing.T) {
		t.Parallel()
		res, err := r.Resolve(context.Background(), "HTTPS://Test.Mubelotix.DEV/index.html")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Domain != "mubelotix.dev" || res.Status != StatusHeuristic {
			t.Errorf("unexpected resolution: %+v", res)
		}
	})

	t.Run("two labels are checked", func(t *testing.T) {
		t.Parallel()
		res, err := r.Resolve(context.Background(), "google.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Domain != "google.com" || res.Status != StatusChecked {
			t.Errorf("unexpected resolution: %+v", res)
		}
	})

	t.Run("single label fails", func(t *testing.T) {
		t.Parallel()
		_, err := r.Resolve(context.Background(), "localhost")
		if !errors.Is(err, ErrNoDomain) {
			t.Errorf("expected ErrNoDomain, got %v", err)
		}
	})
}

func TestPublicSuffixResolver(t *testing.T) {
	t.Parallel()

	r := PublicSuffixResolver{}

	tests := []struct {
		input string
		want  string
	}{
		{"https://sub.example.co.uk/path", "example.co.uk"},
		{"https://test.mubelotix.dev", "mubelotix.dev"},
		{"www.amazon.fr", "amazon.fr"},
		{"unknown.unknown", "unknown.unknown"},
	}
	for _, tt := range tests {
		res, err := r.Resolve(context.Background(), tt.input)
		if err != nil {
			t.Errorf("Resolve(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if res.Domain != tt.want || res.Status != StatusChecked {
			t.Errorf("Resolve(%q) = %+v, want %q", tt.input, res, tt.want)
		}
	}

	t.Run("two labels are kept as they are", func(t *testing.T) {
		t.Parallel()
		for _, host := range []string{"github.io", "co.uk", "example.com"} {
			res, err := r.Resolve(context.Background(), host)
			if err != nil {
				t.Errorf("Resolve(%q): unexpected error: %v", host, err)
				continue
			}
			if res.Domain != host || res.Status != StatusChecked {
				t.Errorf("Resolve(%q) = %+v, want %q checked", host, res, host)
			}
		}
	})

	t.Run("agrees with the fallback wrapper", func(t *testing.T) {
		t.Parallel()
		res, err := FallbackResolver{Primary: r}.Resolve(context.Background(), "https://github.io")
		if err != nil || res.Domain != "github.io" || res.Status != StatusChecked {
			t.Errorf("Resolve() = %+v, %v, want github.io checked", res, err)
		}
	})
}

// failingResolver always returns err.
type failingResolver struct{ err error }

func (f failingResolver) Resolve(_ context.Context, _ string) (Resolution, error) {
	return Resolution{}, f.err
}

func TestFallbackResolver(t *testing.T) {
	t.Parallel()

	t.Run("keeps primary result", func(t *testing.T) {
		t.Parallel()
		r := FallbackResolver{Primary: PublicSuffixResolver{}}
		res, err := r.Resolve(context.Background(), "a.example.co.uk")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Domain != "example.co.uk" || res.Status != StatusChecked {
			t.Errorf("unexpected resolution: %+v", res)
		}
	})

	t.Run("falls back to syntactic guess", func(t *testing.T) {
		t.Parallel()
		r := FallbackResolver{Primary: failingResolver{err: ErrUntrusted}}
		res, err := r.Resolve(context.Background(), "https://a.example.co.uk")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Domain != "co.uk" || res.Status != StatusUncheckable {
			t.Errorf("unexpected resolution: %+v", res)
		}
		if res.Reason != ErrUntrusted.Error() {
			t.Errorf("expected reason %q, got %q", ErrUntrusted.Error(), res.Reason)
		}
	})

	t.Run("no domain is not hidden", func(t *testing.T) {
		t.Parallel()
		r := FallbackResolver{Primary: failingResolver{err: ErrNoDomain}}
		_, err := r.Resolve(context.Background(), "localhost")
		if !errors.Is(err, ErrNoDomain) {
			t.Errorf("expected ErrNoDomain, got %v", err)
		}
	})
}

func TestNewResolver(t *testing.T) {
	t.Parallel()

	t.Run("known strategies", func(t *testing.T) {
		t.Parallel()
		for _, s := range append(Strategies(), "", " DNS ") {
			if _, err := NewResolver(s); err != nil {
				t.Errorf("NewResolver(%q): unexpected error: %v", s, err)
			}
		}
	})

	t.Run("syntactic is not wrapped", func(t *testing.T) {
		t.Parallel()
		r, err := NewResolver(StrategySyntactic)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := r.(SyntacticResolver); !ok {
			t.Errorf("expected SyntacticResolver, got %T", r)
		}
	})

	t.Run("unknown strategy", func(t *testing.T) {
		t.Parallel()
		_, err := NewResolver("whois")
		if !errors.Is(err, ErrUnknownStrategy) {
			t.Errorf("expected ErrUnknownStrategy, got %v", err)
		}
	})
}
