package report

import (
	"time"

	"github.com/nao1215/sitepass/internal/domain"
	"github.com/nao1215/sitepass/internal/generator"
)

// Entry is one site of a report.
type Entry struct {
	// Site is the input as typed by the user.
	Site string `json:"site"`
	// Host is the normalized host name of Site.
	Host string `json:"host,omitempty"`
	// Domain is the domain the passwords were derived from.
	Domain string `json:"domain,omitempty"`
	// Status is the resolution status name (checked, uncheckable, ...).
	Status string `json:"status,omitempty"`
	// Reason explains an uncheckable status.
	Reason string `json:"reason,omitempty"`
	// Passwords is empty for domain-only reports and failed sites.
	Passwords []generator.Password `json:"passwords,omitempty"`
	// Error is set when no domain could be found.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the entry carries an error.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Report is the document handed to a Writer.
type Report struct {
	// Version is the sitepass version that produced the report.
	Version string `json:"version"`
	// GeneratedAt is the creation time.
	GeneratedAt time.Time `json:"generatedAt"`
	// MasterCheck is the outcome of the master fingerprint lookup, if any.
	MasterCheck string `json:"masterCheck,omitempty"`
	// Entries are in input order.
	Entries []Entry `json:"entries"`
}

// New creates an empty report.
func New(version string, generatedAt time.Time) *Report {
	return &Report{
		Version:     version,
		GeneratedAt: generatedAt,
		Entries:     []Entry{},
	}
}

// AddResolution appends a domain-only entry.
func (r *Report) AddResolution(site string, res domain.Resolution, err error) {
	r.Entries = append(r.Entries, resolutionEntry(site, res, err))
}

// AddSiteResult appends the passwords of one batch result. res carries the
// resolution behind result.Domain; a zero Resolution is allowed.
func (r *Report) AddSiteResult(result generator.SiteResult, res domain.Resolution) {
	e := resolutionEntry(result.Site, res, result.Err)
	if e.Domain == "" {
		e.Domain = result.Domain
	}
	if result.Err == nil {
		e.Passwords = result.Passwords
	}
	r.Entries = append(r.Entries, e)
}

// Failures returns the number of entries with an error.
func (r *Report) Failures() int {
	n := 0
	for _, e := range r.Entries {
		if e.Failed() {
			n++
		}
	}
	return n
}

func resolutionEntry(site string, res domain.Resolution, err error) Entry {
	e := Entry{Site: site, Host: res.Host}
	if err != nil {
		e.Error = err.Error()
		return e
	}
	e.Domain = res.Domain
	if res.Domain != "" {
		e.Status = res.Status.String()
		e.Reason = res.Reason
	}
	return e
}
