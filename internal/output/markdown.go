package output

import (
	"io"

	"github.com/dshills/patrol/internal/review"
	"github.com/dshills/patrol/internal/templates"
)

// MarkdownWriter renders each report with its template, separated by a
// horizontal rule.
type MarkdownWriter struct {
	Templates *templates.Registry
}

func (m *MarkdownWriter) Write(w io.Writer, reports []*review.Report) error {
	reg := m.Templates
	if reg == nil {
		reg = templates.Builtin()
	}

	ew := &errWriter{w: w}
	for i, r := range reports {
		if i > 0 {
			ew.write("\n---\n\n")
		}
		ew.write(RenderWith(reg, r.File, r.Issues, r.Template))
	}
	return ew.err
}
