package flow

import (
	"github.com/nao1215/sitepass/internal/config"
	"github.com/nao1215/sitepass/internal/database"
	"github.com/nao1215/sitepass/internal/domain"
	"github.com/nao1215/sitepass/internal/generator"
)

// PlaceholderDomain is derived from when a site has no usable domain and
// invalid domains are allowed.
const PlaceholderDomain = "unknown.unknown"

// Page is one screen of the flow.
type Page interface {
	page()
}

// EnterMaster asks for the master secret.
type EnterMaster struct{}

// EnterURL asks for the site.
type EnterURL struct {
	Master string
	Check  database.MasterCheck
	// CheckPending is true until the fingerprint lookup has answered.
	CheckPending bool
}

// DisplayPasswords shows the passwords of one site.
type DisplayPasswords struct {
	Master string
	// Check is the master check shown before the site was entered.
	Check      database.MasterCheck
	Host       string
	Resolution domain.Resolution
	Passwords  []generator.Password
	// Accessible is the highest index that may be copied. Copying it
	// unlocks the next one.
	Accessible int
	// ShowMore reveals the alternative variants.
	ShowMore bool
}

// Sorry reports that no password can be derived.
type Sorry struct {
	Reason string
}

func (EnterMaster) page()      {}
func (EnterURL) page()         {}
func (DisplayPasswords) page() {}
func (Sorry) page()            {}

// Level is the severity of a Notice.
type Level int

const (
	// LevelInfo is a neutral message.
	LevelInfo Level = iota
	// LevelWarning is a recoverable problem.
	LevelWarning
	// LevelError is a refused action.
	LevelError
)

// Notice is a one-line message shown under the current page. It is
// cleared by the next message.
type Notice struct {
	Level Level
	Text  string
}

// State is the whole state of the flow.
type State struct {
	Page         Page
	Settings     config.Settings
	SettingsOpen bool
	Notice       *Notice
}

// New returns the initial state.
func New(settings config.Settings) State {
	return State{
		Page:     EnterMaster{},
		Settings: settings,
	}
}

// Visible returns the passwords a DisplayPasswords page shows: the first
// one, or all of them once ShowMore is set.
func (p DisplayPasswords) Visible() []generator.Password {
	if p.ShowMore || len(p.Passwords) <= 1 {
		return p.Passwords
	}
	return p.Passwords[:1]
}
