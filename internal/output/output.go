package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/patrol/internal/review"
	"github.com/dshills/patrol/internal/templates"
)

// Formats lists the supported output formats.
var Formats = []string{"markdown", "text", "json", "yaml", "sarif"}

// Writer writes reports in a specific format.
type Writer interface {
	Write(w io.Writer, reports []*review.Report) error
}

// GetWriter returns a writer for the specified format. reg supplies the
// templates for markdown output; nil means the built-in templates.
func GetWriter(format string, reg *templates.Registry) (Writer, error) {
	if reg == nil {
		reg = templates.Builtin()
	}
	switch strings.ToLower(format) {
	case "", "markdown", "md":
		return &MarkdownWriter{Templates: reg}, nil
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "yaml", "yml":
		return &YAMLWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReports writes the reports to outPath, or stdout when outPath is empty.
func WriteReports(reports []*review.Report, writer Writer, outPath string) error {
	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, reports)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func (ew *errWriter) write(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}
