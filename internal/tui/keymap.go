package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard bindings for the TUI.
type KeyMap struct {
	Quit     key.Binding
	Submit   key.Binding
	Back     key.Binding
	More     key.Binding
	Copy     key.Binding
	Settings key.Binding
	Help     key.Binding

	// Settings panel
	ToggleStoreHash key.Binding
	ToggleKeylogger key.Binding
	ToggleInvalid   key.Binding
	CycleResolver   key.Binding
}

// DefaultKeyMap returns a KeyMap with default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		More: key.NewBinding(
			key.WithKeys("m", "tab"),
			key.WithHelp("m", "more passwords"),
		),
		Copy: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "copy"),
		),
		Settings: key.NewBinding(
			key.WithKeys("f2", "ctrl+o"),
			key.WithHelp("f2", "settings"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		ToggleStoreHash: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "store hash"),
		),
		ToggleKeylogger: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "keylogger protection"),
		),
		ToggleInvalid: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "refuse invalid domains"),
		),
		CycleResolver: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resolver"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Back, k.Settings, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Back, k.More, k.Copy},
		{k.Settings, k.Help, k.Quit},
		{k.ToggleStoreHash, k.ToggleKeylogger, k.ToggleInvalid, k.CycleResolver},
	}
}
