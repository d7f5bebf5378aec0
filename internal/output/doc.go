// Package output formats review reports for display or machine consumption.
//
// [Render] is the core renderer: it turns one file's issues plus a template
// name into a markdown review with an "Issues Found" list in engine order,
// followed by the template's checklist sections.
//
// Five formats are supported:
//   - markdown: Render output per file (default)
//   - text: compact terminal output with colored severity labels
//   - json: all reports plus an aggregate summary
//   - yaml: same document as json
//   - sarif: SARIF v2.1.0 for upload to code scanning tools
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and the reports. [WriteReports] handles
// destination selection.
package output
