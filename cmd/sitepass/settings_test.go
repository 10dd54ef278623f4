package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/sitepass/internal/config"
)

func TestSettingsCmd_Show(t *testing.T) {
	t.Parallel()

	flags := isolatedFlags(t)
	out, err := runRoot(t, "", append(flags, "settings")...)
	if err != nil {
		t.Fatalf("settings error = %v", err)
	}

	for _, want := range []string{"# " + flags[1], "store_hash: true", "resolver: syntactic", "lookup_timeout: 5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSettingsCmd_Set(t *testing.T) {
	t.Parallel()

	flags := isolatedFlags(t)
	path := flags[1]

	steps := []struct {
		key, value string
	}{
		{"store-hash", "false"},
		{"keylogger_protection", "true"},
		{"resolver", "publicsuffix"},
		{"lookup-timeout", "2s"},
	}
	for _, s := range steps {
		out, err := runRoot(t, "", append(append([]string{}, flags...), "settings", "set", s.key, s.value)...)
		if err != nil {
			t.Fatalf("settings set %s error = %v", s.key, err)
		}
		if !strings.Contains(out, s.key+" = "+s.value) {
			t.Errorf("unexpected output %q", out)
		}
	}

	got, err := config.LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.StoreHash || !got.KeyloggerProtection || got.Resolver != "publicsuffix" || got.LookupTimeout.String() != "2s" {
		t.Errorf("unexpected settings %+v", got)
	}
}

func TestSettingsCmd_SetErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown key", []string{"settings", "set", "colour", "blue"}, config.ErrUnknownSetting},
		{"bad bool", []string{"settings", "set", "store-hash", "maybe"}, config.ErrInvalidSettingValue},
		{"bad resolver", []string{"settings", "set", "resolver", "magic"}, config.ErrInvalidResolver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := runRoot(t, "", append(isolatedFlags(t), tt.args...)...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("missing value", func(t *testing.T) {
		t.Parallel()
		if _, err := runRoot(t, "", append(isolatedFlags(t), "settings", "set", "resolver")...); err == nil {
			t.Error("expected argument error")
		}
	})
}

func TestSettingsCmd_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := runRoot(t, "", "--settings", "/nonexistent/settings.yaml", "settings")
	if !errors.Is(err, config.ErrSettingsNotFound) {
		t.Errorf("error = %v, want %v", err, config.ErrSettingsNotFound)
	}
}
