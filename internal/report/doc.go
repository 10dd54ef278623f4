// Package report renders derived passwords and domain resolutions.
//
// Writers for three formats share the Writer interface:
//   - TextWriter: aligned plain text for the terminal
//   - JSONWriter: structured output for scripts and password managers
//   - MarkdownWriter: a document built with github.com/nao1215/markdown
//
// A Report is assembled by the caller from batch results; writers never
// derive anything themselves.
package report
