package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/patrol/internal/review"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"
)

// SARIFWriter emits one SARIF 2.1.0 run covering every report. Each report
// becomes an artifact; rules are listed in first-seen order.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, reports []*review.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(buildSARIF(reports)); err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	return nil
}

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations"`
	Artifacts   []sarifArtifact   `json:"artifacts"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string        `json:"id"`
	ShortDescription sarifText     `json:"shortDescription"`
	Help             *sarifText    `json:"help,omitempty"`
	DefaultConfig    sarifLevel    `json:"defaultConfiguration"`
	Properties       sarifRuleTags `json:"properties"`
}

type sarifLevel struct {
	Level string `json:"level"`
}

type sarifRuleTags struct {
	Tags []string `json:"tags"`
}

type sarifInvocation struct {
	ExecutionSuccessful bool `json:"executionSuccessful"`
}

type sarifArtifact struct {
	Location   sarifArtifactLocation `json:"location"`
	Properties sarifArtifactProps    `json:"properties"`
}

type sarifArtifactProps struct {
	Template string `json:"template"`
	Issues   int    `json:"issues"`
}

type sarifResult struct {
	RuleID     string            `json:"ruleId"`
	RuleIndex  int               `json:"ruleIndex"`
	Level      string            `json:"level"`
	Message    sarifText         `json:"message"`
	Locations  []sarifLocation   `json:"locations"`
	Properties sarifResultDetail `json:"properties"`
}

type sarifResultDetail struct {
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Suggestion string `json:"suggestion,omitempty"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI   string `json:"uri"`
	Index int    `json:"index"`
}

type sarifRegion struct {
	StartLine   int        `json:"startLine"`
	StartColumn int        `json:"startColumn,omitempty"`
	Snippet     *sarifText `json:"snippet,omitempty"`
}

func buildSARIF(reports []*review.Report) sarifLog {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           review.Tool,
			Version:        review.Version,
			InformationURI: "https://github.com/dshills/patrol",
			Rules:          []sarifRule{},
		}},
		Invocations: []sarifInvocation{{ExecutionSuccessful: true}},
		Artifacts:   []sarifArtifact{},
		Results:     []sarifResult{},
	}
	ruleIndex := make(map[string]int)

	for ai, r := range reports {
		where := sarifArtifactLocation{URI: r.File, Index: ai}
		run.Artifacts = append(run.Artifacts, sarifArtifact{
			Location:   where,
			Properties: sarifArtifactProps{Template: r.Template, Issues: len(r.Issues)},
		})

		for _, is := range r.Issues {
			idx, seen := ruleIndex[is.RuleID]
			if !seen {
				idx = len(run.Tool.Driver.Rules)
				ruleIndex[is.RuleID] = idx
				run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, newSARIFRule(is))
			}

			region := sarifRegion{StartLine: is.Line, StartColumn: is.Column}
			if is.Snippet != "" {
				region.Snippet = &sarifText{Text: is.Snippet}
			}
			run.Results = append(run.Results, sarifResult{
				RuleID:    is.RuleID,
				RuleIndex: idx,
				Level:     sarifLevelFor(is.Severity),
				Message:   sarifText{Text: is.Message},
				Locations: []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: where,
					Region:           region,
				}}},
				Properties: sarifResultDetail{
					Severity:   string(is.Severity),
					Category:   string(is.Category),
					Suggestion: is.Suggestion,
				},
			})
		}
	}

	return sarifLog{Version: sarifVersion, Schema: sarifSchema, Runs: []sarifRun{run}}
}

func newSARIFRule(is review.Issue) sarifRule {
	rule := sarifRule{
		ID:               is.RuleID,
		ShortDescription: sarifText{Text: is.Message},
		DefaultConfig:    sarifLevel{Level: sarifLevelFor(is.Severity)},
		Properties:       sarifRuleTags{Tags: []string{string(is.Category)}},
	}
	if is.Suggestion != "" {
		rule.Help = &sarifText{Text: is.Suggestion}
	}
	return rule
}

// sarifLevelFor maps high to error, medium to warning and anything else to note.
func sarifLevelFor(s review.Severity) string {
	switch s {
	case review.SeverityHigh:
		return "error"
	case review.SeverityMedium:
		return "warning"
	}
	return "note"
}
