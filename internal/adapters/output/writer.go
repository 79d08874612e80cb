package output

import (
	"fmt"
	"io"
	"os"
)

// Writer writes rendered reports to the configured output destination.
// By default, it writes to stdout.
type Writer struct {
	out io.Writer
}

// NewWriter creates a new Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{out: os.Stdout}
}

// NewWriterWithOutput creates a new Writer with a custom output destination.
// This is useful for testing.
func NewWriterWithOutput(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteReport writes the report followed by a trailing newline.
// An empty report writes nothing.
func (w *Writer) WriteReport(report string) error {
	if report == "" {
		return nil
	}
	_, err := fmt.Fprintln(w.out, report)
	return err
}
