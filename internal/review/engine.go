package review

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Tool identification carried on every report.
const (
	Tool    = "patrol"
	Version = "1.0"
)

// FindIssues applies every rule to every line and returns the matches in
// ascending line order. Same-line issues follow rule order, then column.
// An empty lines or rules slice yields no issues.
func FindIssues(lines []string, rules []Rule) []Issue {
	if len(lines) == 0 || len(rules) == 0 {
		return nil
	}

	var issues []Issue
	for i, line := range lines {
		for _, r := range rules {
			if r.Pattern == nil {
				continue
			}
			for _, sp := range r.Pattern.Match(line) {
				issues = append(issues, Issue{
					RuleID:     r.ID,
					Line:       i + 1,
					Column:     column(sp, line),
					Severity:   r.Severity,
					Category:   r.Category,
					Message:    r.Message,
					Suggestion: r.Suggestion,
					Snippet:    strings.TrimSpace(line),
				})
			}
		}
	}
	return issues
}

// column converts a span start to a 1-based column clamped to the line.
func column(sp Span, line string) int {
	switch {
	case sp.Start < 0:
		return 1
	case sp.Start > len(line):
		return len(line) + 1
	default:
		return sp.Start + 1
	}
}

// SplitLines validates content as text and splits it into physical lines.
// A trailing newline does not produce an extra empty line; CRLF endings are
// normalized.
func SplitLines(content []byte) ([]string, error) {
	if len(content) == 0 {
		return nil, nil
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return nil, &InputError{Reason: "content contains NUL bytes (binary file?)"}
	}
	if !utf8.Valid(content) {
		return nil, &InputError{Reason: "content is not valid UTF-8"}
	}

	text := strings.TrimSuffix(string(content), "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}

// Analyze scans content with set and wraps the result in a Report.
// Input errors carry fileID.
func Analyze(fileID string, content []byte, set *RuleSet, template string) (*Report, error) {
	lines, err := SplitLines(content)
	if err != nil {
		if ie, ok := err.(*InputError); ok {
			ie.File = fileID
		}
		return nil, err
	}
	return NewReport(fileID, template, FindIssues(lines, set.Rules())), nil
}

// NewReport builds a Report around already computed issues.
func NewReport(fileID, template string, issues []Issue) *Report {
	if issues == nil {
		issues = []Issue{}
	}
	return &Report{
		Tool:     Tool,
		Version:  Version,
		File:     fileID,
		Template: template,
		Summary:  ComputeSummary(issues),
		Issues:   issues,
	}
}
