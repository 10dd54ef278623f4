// Package config provides the runtime configuration and the persisted user
// settings of sitepass.
//
// Settings are stored as YAML in the XDG config directory. They never
// contain a master secret or a derived password.
package config
