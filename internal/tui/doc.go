// Package tui is the interactive terminal front-end of sitepass.
//
// The Model wraps a flow.State: key presses become flow messages, and the
// effects returned by flow.Update run as tea.Cmds against the master
// fingerprint store, the domain resolver and the clipboard.
package tui
