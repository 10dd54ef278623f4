package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is the name of the settings file inside XDGConfigDir.
const SettingsFileName = "settings.yaml"

// ErrSettingsNotFound is returned when the settings file does not exist.
var ErrSettingsNotFound = errors.New("settings file not found")

// DefaultSettingsPath returns the settings file path in the XDG config directory.
func DefaultSettingsPath() string {
	return filepath.Join(XDGConfigDir(), SettingsFileName)
}

// LoadSettings reads settings from a YAML file. Keys missing from the file
// keep their default value. If the file does not exist, it returns
// ErrSettingsNotFound.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided settings path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, ErrSettingsNotFound
		}
		return Settings{}, err
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettingsOrDefault loads the settings at path, or at the XDG default
// when path is empty. A missing default file yields DefaultSettings; a
// missing explicit file is an error.
func LoadSettingsOrDefault(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultSettingsPath()
	}

	s, err := LoadSettings(path)
	if errors.Is(err, ErrSettingsNotFound) && !explicit {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes settings to path, creating parent directories.
func SaveSettings(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// SettingKeys returns the keys accepted by Settings.Set.
func SettingKeys() []string {
	return []string{
		"store-hash",
		"keylogger-protection",
		"disallow-invalid-domains",
		"resolver",
		"doh-endpoint",
		"lookup-timeout",
	}
}

// Set updates the setting named key from its string form.
// Underscores and dashes are interchangeable in key.
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ReplaceAll(strings.ToLower(key), "_", "-") {
	case "store-hash":
		return setBool(&s.StoreHash, key, value)
	case "keylogger-protection":
		return setBool(&s.KeyloggerProtection, key, value)
	case "disallow-invalid-domains":
		return setBool(&s.DisallowInvalidDomains, key, value)
	case "resolver":
		s.Resolver = strings.ToLower(value)
	case "doh-endpoint":
		s.DoHEndpoint = value
	case "lookup-timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w for %s: %w", ErrInvalidSettingValue, key, err)
		}
		s.LookupTimeout = d
	default:
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownSetting, key, strings.Join(SettingKeys(), ", "))
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidSettingValue, key, err)
	}
	*dst = b
	return nil
}
