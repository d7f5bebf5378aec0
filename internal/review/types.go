package review

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of an issue.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity accepts any casing of high, medium or low.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return sev, nil
	default:
		return "", fmt.Errorf("unknown severity %q (want high, medium or low)", s)
	}
}

// Label returns the upper-case display form, e.g. "HIGH".
func (s Severity) Label() string {
	return strings.ToUpper(string(s))
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(strings.ToLower(threshold)))
}

// Category groups rules by concern.
type Category string

const (
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategoryGeneral     Category = "general"
)

// Issue is one located finding produced by applying a Rule to a line.
type Issue struct {
	RuleID     string   `json:"ruleId" yaml:"ruleId"`
	Line       int      `json:"line" yaml:"line"`
	Column     int      `json:"column" yaml:"column"`
	Severity   Severity `json:"severity" yaml:"severity"`
	Category   Category `json:"category" yaml:"category"`
	Message    string   `json:"message" yaml:"message"`
	Suggestion string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Snippet    string   `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// SeverityCounts holds counts by severity level.
type SeverityCounts struct {
	Low    int `json:"low" yaml:"low"`
	Medium int `json:"medium" yaml:"medium"`
	High   int `json:"high" yaml:"high"`
}

// Total returns the sum of all counts.
func (c SeverityCounts) Total() int {
	return c.Low + c.Medium + c.High
}

// Summary provides an overview of issues.
type Summary struct {
	Counts          SeverityCounts `json:"counts" yaml:"counts"`
	HighestSeverity Severity       `json:"highestSeverity" yaml:"highestSeverity"`
}

// Report is the reviewed form of a single file.
type Report struct {
	Tool     string  `json:"tool" yaml:"tool"`
	Version  string  `json:"version" yaml:"version"`
	File     string  `json:"file" yaml:"file"`
	Template string  `json:"template" yaml:"template"`
	Summary  Summary `json:"summary" yaml:"summary"`
	Issues   []Issue `json:"issues" yaml:"issues"`
}

// ComputeSummary calculates the summary from issues.
func ComputeSummary(issues []Issue) Summary {
	var s Summary
	for _, is := range issues {
		switch is.Severity {
		case SeverityLow:
			s.Counts.Low++
		case SeverityMedium:
			s.Counts.Medium++
		case SeverityHigh:
			s.Counts.High++
		}
		if SeverityRank(is.Severity) > SeverityRank(s.HighestSeverity) {
			s.HighestSeverity = is.Severity
		}
	}
	return s
}

// FilterBySeverity keeps issues at or above min, preserving order.
// An empty min keeps everything.
func FilterBySeverity(issues []Issue, min Severity) []Issue {
	if min == "" {
		return issues
	}
	out := make([]Issue, 0, len(issues))
	for _, is := range issues {
		if SeverityRank(is.Severity) >= SeverityRank(min) {
			out = append(out, is)
		}
	}
	return out
}

// Limit truncates issues to at most n entries. n <= 0 means no limit.
func Limit(issues []Issue, n int) []Issue {
	if n > 0 && len(issues) > n {
		return issues[:n]
	}
	return issues
}
