package flow

import (
	"fmt"
	"strings"

	"github.com/nao1215/sitepass/internal/database"
	"github.com/nao1215/sitepass/internal/domain"
	"github.com/nao1215/sitepass/internal/generator"
)

// Update applies msg to s. Messages that make no sense on the current page
// leave the state unchanged.
func Update(s State, msg Msg) (State, []Effect) {
	s.Notice = nil

	switch m := msg.(type) {
	case SubmitMaster:
		return submitMaster(s, m)
	case MasterChecked:
		return masterChecked(s, m), nil
	case SubmitURL:
		return submitURL(s, m)
	case Next:
		if p, ok := s.Page.(DisplayPasswords); ok {
			p.ShowMore = true
			s.Page = p
		}
		return s, nil
	case Back:
		return back(s), nil
	case ResolutionDone:
		return resolutionDone(s, m), nil
	case Copy:
		return copyPassword(s, m)
	case CopyDone:
		return copyDone(s, m), nil
	case ToggleSettings:
		return toggleSettings(s, m)
	default:
		return s, nil
	}
}

func submitMaster(s State, m SubmitMaster) (State, []Effect) {
	if _, ok := s.Page.(EnterMaster); !ok || m.Secret == "" {
		return s, nil
	}

	s.Page = EnterURL{
		Master:       m.Secret,
		Check:        database.Unchecked,
		CheckPending: true,
	}
	return s, []Effect{LookupMasterHash{
		Fingerprint: generator.MasterHash(m.Secret),
		StoreHash:   s.Settings.StoreHash,
	}}
}

func masterChecked(s State, m MasterChecked) State {
	p, ok := s.Page.(EnterURL)
	if !ok || !p.CheckPending || generator.MasterHash(p.Master) != m.Fingerprint {
		return s
	}

	p.CheckPending = false
	if m.Err != nil {
		p.Check = database.Unchecked
		s.Notice = &Notice{Level: LevelWarning, Text: fmt.Sprintf("master secret could not be checked: %v", m.Err)}
	} else {
		p.Check = m.Check
	}
	s.Page = p
	return s
}

func submitURL(s State, m SubmitURL) (State, []Effect) {
	p, ok := s.Page.(EnterURL)
	raw := strings.TrimSpace(m.URL)
	if !ok || raw == "" {
		return s, nil
	}

	host, err := domain.HostFromURL(raw)
	if err != nil {
		host = raw
	}

	var effects []Effect
	if s.Settings.StoreHash {
		effects = append(effects, RememberMasterHash{Fingerprint: generator.MasterHash(p.Master)})
	}

	var res domain.Resolution
	if _, ok := domain.Canonicalize(host); !ok {
		if s.Settings.DisallowInvalidDomains {
			s.Page = Sorry{Reason: fmt.Sprintf("%q has no domain name. Passwords can only be derived for domains such as example.com.", raw)}
			return s, effects
		}
		res = domain.Resolution{Host: host, Domain: PlaceholderDomain, Status: domain.StatusHeuristic}
		s.Notice = &Notice{Level: LevelWarning, Text: "no domain name found, using " + PlaceholderDomain}
	} else {
		res = domain.ProvisionalResolution(host)
		if res.Status == domain.StatusChecking {
			if s.Settings.Resolver == domain.StrategySyntactic {
				res.Status = domain.StatusHeuristic
			} else {
				effects = append(effects, ResolveDomain{Host: host})
			}
		}
	}

	s.Page = DisplayPasswords{
		Master:     p.Master,
		Check:      p.Check,
		Host:       host,
		Resolution: res,
		Passwords:  generator.DeriveVariants(p.Master, res.Domain, generator.DefaultVariants()),
	}
	return s, effects
}

func back(s State) State {
	switch p := s.Page.(type) {
	case EnterURL:
		s.Page = EnterMaster{}
	case DisplayPasswords:
		// Submitting the site stored the fingerprint.
		check := p.Check
		if s.Settings.StoreHash {
			check = database.Checked
		}
		s.Page = EnterURL{Master: p.Master, Check: check}
	case Sorry:
		s.Page = EnterMaster{}
	}
	return s
}

func resolutionDone(s State, m ResolutionDone) State {
	p, ok := s.Page.(DisplayPasswords)
	if !ok || p.Host != m.Host {
		return s
	}

	res := p.Resolution
	switch {
	case m.Err != nil:
		res.Status = domain.StatusUncheckable
		res.Reason = m.Err.Error()
	case m.Result.Domain != "":
		res = m.Result
		res.Host = p.Host
	default:
		res.Status = domain.StatusUncheckable
		res.Reason = "empty lookup result"
	}

	if res.Domain != p.Resolution.Domain {
		s.Notice = &Notice{Level: LevelInfo, Text: fmt.Sprintf("domain corrected to %s", res.Domain)}
	}
	p.Resolution = res
	p.Passwords = generator.DeriveVariants(p.Master, res.Domain, generator.DefaultVariants())
	s.Page = p
	return s
}

func copyPassword(s State, m Copy) (State, []Effect) {
	p, ok := s.Page.(DisplayPasswords)
	if !ok {
		return s, nil
	}
	if m.Index < 0 || m.Index >= len(p.Passwords) || m.Index > p.Accessible {
		s.Notice = &Notice{Level: LevelError, Text: "this password can't be copied now, copy the previous one first"}
		return s, nil
	}

	if m.Index == p.Accessible {
		p.Accessible++
		s.Page = p
	}
	return s, []Effect{CopyToClipboard{Index: m.Index, Text: p.Passwords[m.Index].Value}}
}

func copyDone(s State, m CopyDone) State {
	p, ok := s.Page.(DisplayPasswords)
	if !ok || m.Index < 0 || m.Index >= len(p.Passwords) {
		return s
	}
	if m.Err != nil {
		s.Notice = &Notice{Level: LevelError, Text: fmt.Sprintf("copy failed: %v", m.Err)}
		return s
	}
	s.Notice = &Notice{Level: LevelInfo, Text: fmt.Sprintf("copied %s password to the clipboard", p.Passwords[m.Index].Variant.Name)}
	return s
}

func toggleSettings(s State, m ToggleSettings) (State, []Effect) {
	var effects []Effect
	if s.SettingsOpen && m.Updated != nil {
		s.Settings = *m.Updated
		effects = append(effects, SaveSettings{Settings: s.Settings})
	}
	s.SettingsOpen = !s.SettingsOpen
	return s, effects
}
