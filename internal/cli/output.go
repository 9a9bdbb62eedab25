package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormatter renders results as JSON or as text.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// Emit writes data as indented JSON, or calls text for the text format.
func (f *OutputFormatter) Emit(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	text(f.Writer)
	return nil
}

func printf(w io.Writer, format string, args ...any) {
	//nolint:errcheck // terminal output
	fmt.Fprintf(w, format, args...)
}
