package output

import (
	"fmt"
	"strings"

	"github.com/dshills/patrol/internal/review"
	"github.com/dshills/patrol/internal/templates"
)

// NoIssuesText is emitted in place of the issue list when a file is clean.
const NoIssuesText = "No issues found."

// Render formats issues for fileID as a markdown review using the named
// built-in template. Unknown template names render as general.
func Render(fileID string, issues []review.Issue, templateName string) string {
	return RenderWith(templates.Builtin(), fileID, issues, templateName)
}

// RenderWith is Render against a specific template registry. Issues are
// listed in the order given; the output depends only on the arguments.
func RenderWith(reg *templates.Registry, fileID string, issues []review.Issue, templateName string) string {
	tmpl := reg.Resolve(templateName)

	var b strings.Builder
	fmt.Fprintf(&b, "# Code Review for %s\n\n", fileID)
	fmt.Fprintf(&b, "Using the %s template.\n\n", tmpl.Name)

	if len(issues) == 0 {
		b.WriteString(NoIssuesText + "\n")
	} else {
		b.WriteString("## Issues Found\n\n")
		for _, is := range issues {
			b.WriteString(IssueLine(is))
			b.WriteString("\n")
		}
	}

	for _, sec := range tmpl.Sections {
		if len(sec.Items) == 0 {
			continue
		}
		heading := sec.Heading
		if heading == "" {
			heading = "Checklist"
		}
		fmt.Fprintf(&b, "\n## %s\n\n", heading)
		for _, item := range sec.Items {
			fmt.Fprintf(&b, "- [ ] %s\n", item)
		}
	}
	return b.String()
}

// IssueLine formats one issue as a markdown list entry, e.g.
// "- [HIGH] Line 12: message".
func IssueLine(is review.Issue) string {
	return fmt.Sprintf("- [%s] Line %d: %s", is.Severity.Label(), is.Line, is.Message)
}
