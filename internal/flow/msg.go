package flow

import (
	"github.com/nao1215/sitepass/internal/config"
	"github.com/nao1215/sitepass/internal/database"
	"github.com/nao1215/sitepass/internal/domain"
)

// Msg is an input to Update.
type Msg interface {
	msg()
}

// SubmitMaster is sent when the user confirms the master secret.
type SubmitMaster struct{ Secret string }

// MasterChecked carries the result of a LookupMasterHash effect.
type MasterChecked struct {
	Fingerprint string
	Check       database.MasterCheck
	Err         error
}

// SubmitURL is sent when the user confirms the site.
type SubmitURL struct{ URL string }

// Next reveals the alternative variants on the password page.
type Next struct{}

// Back returns to the previous page.
type Back struct{}

// ResolutionDone carries the result of a ResolveDomain effect.
type ResolutionDone struct {
	Host   string
	Result domain.Resolution
	Err    error
}

// Copy asks to copy the password at Index.
type Copy struct{ Index int }

// CopyDone carries the result of a CopyToClipboard effect.
type CopyDone struct {
	Index int
	Err   error
}

// ToggleSettings opens or closes the settings panel. When closing,
// a non-nil Updated replaces and persists the settings.
type ToggleSettings struct{ Updated *config.Settings }

func (SubmitMaster) msg()   {}
func (MasterChecked) msg()  {}
func (SubmitURL) msg()      {}
func (Next) msg()           {}
func (Back) msg()           {}
func (ResolutionDone) msg() {}
func (Copy) msg()           {}
func (CopyDone) msg()       {}
func (ToggleSettings) msg() {}

// Effect is work requested from the shell.
type Effect interface {
	effect()
}

// LookupMasterHash checks a master fingerprint. Answer with MasterChecked.
type LookupMasterHash struct {
	Fingerprint string
	StoreHash   bool
}

// RememberMasterHash stores a master fingerprint.
type RememberMasterHash struct{ Fingerprint string }

// ResolveDomain refines the domain of Host. Answer with ResolutionDone.
type ResolveDomain struct{ Host string }

// CopyToClipboard puts Text on the clipboard. Answer with CopyDone.
type CopyToClipboard struct {
	Index int
	Text  string
}

// SaveSettings persists Settings.
type SaveSettings struct{ Settings config.Settings }

func (LookupMasterHash) effect()   {}
func (RememberMasterHash) effect() {}
func (ResolveDomain) effect()      {}
func (CopyToClipboard) effect()    {}
func (SaveSettings) effect()       {}
