package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dshills/patrol/internal/review"
)

// TextWriter outputs a human-readable terminal report. Color enables ANSI
// severity colors.
type TextWriter struct {
	Color bool
}

func (t *TextWriter) Write(w io.Writer, reports []*review.Report) error {
	ew := &errWriter{w: w}
	bold := t.style(color.Bold)
	dim := t.style(color.FgHiBlack)

	var all []review.Issue
	for _, r := range reports {
		all = append(all, r.Issues...)
		if len(r.Issues) == 0 {
			continue
		}

		ew.printf("%s\n", bold.Sprint(r.File))
		for _, is := range r.Issues {
			label := t.severityColor(is.Severity).Sprintf("%-6s", is.Severity.Label())
			ew.printf("  %d:%d  %s  %s %s\n", is.Line, is.Column, label, is.Message, dim.Sprintf("(%s)", is.RuleID))
			if is.Snippet != "" {
				ew.printf("    %s\n", dim.Sprint(is.Snippet))
			}
			if is.Suggestion != "" {
				for _, line := range wrapText(is.Suggestion, 70) {
					ew.printf("    > %s\n", line)
				}
			}
		}
		ew.println("")
	}

	s := review.ComputeSummary(all)
	ew.println(strings.Repeat("─", 60))
	total := s.Counts.Total()
	if total == 0 {
		ew.printf("%s\n", t.style(color.FgGreen).Sprintf("No issues found in %s.", plural(len(reports), "file")))
		return ew.err
	}
	ew.printf("%s in %s (%s high, %s medium, %s low)\n",
		plural(total, "issue"),
		plural(len(reports), "file"),
		t.severityColor(review.SeverityHigh).Sprint(s.Counts.High),
		t.severityColor(review.SeverityMedium).Sprint(s.Counts.Medium),
		t.severityColor(review.SeverityLow).Sprint(s.Counts.Low),
	)
	return ew.err
}

func (t *TextWriter) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (t *TextWriter) severityColor(s review.Severity) *color.Color {
	switch s {
	case review.SeverityHigh:
		return t.style(color.FgRed, color.Bold)
	case review.SeverityMedium:
		return t.style(color.FgYellow)
	case review.SeverityLow:
		return t.style(color.FgCyan)
	default:
		return t.style(color.FgWhite)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
