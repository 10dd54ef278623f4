package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(r *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, r)
	for _, e := range r.Entries {
		w.writeEntry(md, e)
	}
	w.writeFooter(md, r)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *Report) {
	md.H1("sitepass")
	md.PlainText("")

	rows := [][]string{
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Sites", strconv.Itoa(len(r.Entries))},
	}
	if r.MasterCheck != "" {
		rows = append(rows, []string{"Master secret", title(r.MasterCheck)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if r.MasterCheck == "missing" {
		md.Warningf("This master secret was never used on this machine before. Check it for typos.")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeEntry(md *markdown.Markdown, e Entry) {
	md.H2(e.Site)
	md.PlainText("")

	if e.Failed() {
		md.Cautionf("No password can be derived: %s", e.Error)
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Host", "Domain", "Status"},
		Rows:   [][]string{{orDash(e.Host), "`" + e.Domain + "`", title(e.Status)}},
	})
	md.PlainText("")

	if e.Reason != "" {
		md.Importantf("The public suffix lookup failed (%s). The two-label guess was used.", e.Reason)
		md.PlainText("")
	}

	if len(e.Passwords) == 0 {
		return
	}

	rows := make([][]string, len(e.Passwords))
	for i, p := range e.Passwords {
		rows[i] = []string{p.Variant.Name, p.Variant.Description, "`" + p.Value + "`"}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Variant", "Description", "Password"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, r *Report) {
	if len(r.Entries) > 0 && r.Failures() == 0 {
		md.Tip("Use the first variant unless the site rejects it.")
		md.PlainText("")
	}
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by sitepass %s*", r.Version)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
