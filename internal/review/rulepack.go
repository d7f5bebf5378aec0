package review

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RulePack customizes a rule set: extra rules, disabled rule IDs and
// severity overrides keyed by rule ID or category name.
type RulePack struct {
	Rules             []RuleDef         `yaml:"rules"`
	Disable           []string          `yaml:"disable"`
	SeverityOverrides map[string]string `yaml:"severityOverrides"`
}

// LoadRulePack reads a YAML rule pack. Unknown fields are rejected.
func LoadRulePack(path string) (*RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule pack: %w", err)
	}
	pack, err := ParseRulePack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pack, nil
}

// ParseRulePack decodes a rule pack from YAML bytes. Empty input is an empty pack.
func ParseRulePack(data []byte) (*RulePack, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var pack RulePack
	if err := dec.Decode(&pack); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Err: fmt.Errorf("parse rule pack: %w", err)}
	}
	return &pack, nil
}

// Apply derives a new rule set from base. Disabled rules are dropped, pack
// rules are appended after the base rules, then severity overrides are
// applied: a rule ID override wins over a category override.
func (p *RulePack) Apply(base *RuleSet) (*RuleSet, error) {
	if p == nil {
		return base, nil
	}

	known := make(map[string]bool)
	for _, r := range base.Rules() {
		known[strings.ToLower(r.ID)] = true
	}

	rules := base.Rules()
	for _, def := range p.Rules {
		r, err := Compile(def)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
		known[strings.ToLower(r.ID)] = true
	}

	disabled := make(map[string]bool, len(p.Disable))
	for _, id := range p.Disable {
		key := strings.ToLower(strings.TrimSpace(id))
		if !known[key] {
			return nil, &ConfigError{RuleID: id, Err: errors.New("cannot disable unknown rule")}
		}
		disabled[key] = true
	}

	byRule := make(map[string]Severity)
	byCategory := make(map[Category]Severity)
	for key, val := range p.SeverityOverrides {
		sev, err := ParseSeverity(val)
		if err != nil {
			return nil, &ConfigError{RuleID: key, Err: fmt.Errorf("severity override: %w", err)}
		}
		k := strings.ToLower(strings.TrimSpace(key))
		switch Category(k) {
		case CategorySecurity, CategoryPerformance, CategoryGeneral:
			byCategory[Category(k)] = sev
			continue
		}
		if !known[k] {
			return nil, &ConfigError{RuleID: key, Err: errors.New("severity override for unknown rule or category")}
		}
		byRule[k] = sev
	}

	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		key := strings.ToLower(r.ID)
		if disabled[key] {
			continue
		}
		if sev, ok := byCategory[r.Category]; ok {
			r.Severity = sev
		}
		if sev, ok := byRule[key]; ok {
			r.Severity = sev
		}
		out = append(out, r)
	}
	return NewRuleSet(out...)
}
