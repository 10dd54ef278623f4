package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Writer renders a Report.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(r *Report) (int, error)
}

// MultiWriter writes the same report to several Writers, for example to
// the terminal and to a file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every Writer and stops on the first error.
func (m *MultiWriter) Write(r *Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(r)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// title upper-cases the first letter of each word, e.g. "uncheckable" to
// "Uncheckable". A Caser is not safe for concurrent use, so each call
// builds its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}
