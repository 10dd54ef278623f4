package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/sitepass/internal/report"
)

func TestDomainCmd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags []string
		site  string
		want  string
	}{
		{"syntactic", nil, "https://accounts.google.com/signin", "google.com"},
		{"syntactic keeps the last two labels", nil, "www.example.co.uk", "co.uk"},
		{"public suffix list", []string{"--resolver", "publicsuffix"}, "www.example.co.uk", "example.co.uk"},
		{"short flag", []string{"-r", "publicsuffix"}, "https://test.mubelotix.dev/index.html", "mubelotix.dev"},
		{"placeholder", []string{"--allow-invalid"}, "localhost", "unknown.unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append(isolatedFlags(t), "domain", "-q")
			args = append(args, tt.flags...)
			args = append(args, tt.site)

			out, err := runRoot(t, "", args...)
			if err != nil {
				t.Fatalf("domain error = %v", err)
			}
			if out != tt.want+"\n" {
				t.Errorf("output = %q, want %q", out, tt.want+"\n")
			}
		})
	}
}

func TestDomainCmd_JSON(t *testing.T) {
	t.Parallel()

	args := append(isolatedFlags(t), "domain", "--json", "www.example.com", "localhost")
	out, err := runRoot(t, "", args...)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 sites failed") {
		t.Fatalf("expected one failure, got %v", err)
	}

	var r report.Report
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(r.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(r.Entries))
	}
	first := r.Entries[0]
	if first.Host != "www.example.com" || first.Domain != "example.com" || first.Status != "heuristic" {
		t.Errorf("unexpected first entry %+v", first)
	}
	if len(first.Passwords) != 0 {
		t.Error("domain must not print passwords")
	}
	if !r.Entries[1].Failed() {
		t.Errorf("expected localhost to fail, got %+v", r.Entries[1])
	}
	if r.MasterCheck != "" {
		t.Errorf("MasterCheck = %q, domain never reads a master secret", r.MasterCheck)
	}
}

func TestDomainCmd_NoSites(t *testing.T) {
	t.Parallel()

	_, err := runRoot(t, "", append(isolatedFlags(t), "domain")...)
	if !errors.Is(err, errNoSites) {
		t.Errorf("error = %v, want %v", err, errNoSites)
	}
}
