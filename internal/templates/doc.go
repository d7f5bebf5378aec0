// Package templates provides the named checklist templates used to structure
// review reports.
//
// The built-in templates (general, security, performance) are markdown
// checklist documents embedded from review_templates/. Users may add or
// replace templates by pointing templatesDir at a directory of *.md files.
// Unknown names resolve to the general template.
package templates
