package report

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter outputs reports as aligned plain text.
type TextWriter struct {
	baseWriter
	quiet   bool
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithQuiet prints only the password values, one per line, so that the
// output can be piped into another program.
func WithQuiet(quiet bool) TextWriterOption {
	return func(w *TextWriter) {
		w.quiet = quiet
	}
}

// WithVerbose adds variant descriptions and the report header.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report.
func (w *TextWriter) Write(r *Report) (int, error) {
	var sb strings.Builder
	if w.quiet {
		w.writeQuiet(&sb, r)
	} else {
		w.writeHeader(&sb, r)
		for i, e := range r.Entries {
			if i > 0 {
				sb.WriteString("\n")
			}
			w.writeEntry(&sb, e)
		}
	}
	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeQuiet(sb *strings.Builder, r *Report) {
	for _, e := range r.Entries {
		if len(e.Passwords) == 0 {
			if !e.Failed() {
				sb.WriteString(e.Domain + "\n")
			}
			continue
		}
		for _, p := range e.Passwords {
			sb.WriteString(p.Value + "\n")
		}
	}
}

func (w *TextWriter) writeHeader(sb *strings.Builder, r *Report) {
	if r.MasterCheck != "" {
		fmt.Fprintf(sb, "Master secret: %s\n", masterCheckText(r.MasterCheck))
	}
	if w.verbose {
		fmt.Fprintf(sb, "Generated:     %s (sitepass %s)\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"), r.Version)
	}
	if r.MasterCheck != "" || w.verbose {
		sb.WriteString("\n")
	}
}

func (w *TextWriter) writeEntry(sb *strings.Builder, e Entry) {
	if e.Failed() {
		fmt.Fprintf(sb, "%s: error: %s\n", e.Site, e.Error)
		return
	}

	fmt.Fprintf(sb, "%s -> %s (%s)\n", e.Site, e.Domain, title(e.Status))
	if e.Reason != "" {
		fmt.Fprintf(sb, "  lookup failed: %s\n", e.Reason)
	}

	width := 0
	for _, p := range e.Passwords {
		width = max(width, len(p.Variant.Name))
	}
	for _, p := range e.Passwords {
		if w.verbose {
			fmt.Fprintf(sb, "  %-*s  %s  (%s)\n", width, p.Variant.Name, p.Value, p.Variant.Description)
			continue
		}
		fmt.Fprintf(sb, "  %-*s  %s\n", width, p.Variant.Name, p.Value)
	}
}

func masterCheckText(check string) string {
	switch check {
	case "checked":
		return "known on this machine"
	case "missing":
		return "never used on this machine before, check for typos"
	default:
		return "not checked (store-hash is off)"
	}
}
