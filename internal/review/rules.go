package review

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
)

// Rule detects one issue category on a single line.
type Rule struct {
	ID         string
	Category   Category
	Severity   Severity
	Message    string
	Suggestion string
	Pattern    Matcher
}

// RuleDef is the declarative form of a Rule, as found in rule packs.
// Exactly one of Regex or Substring must be set.
type RuleDef struct {
	ID         string `yaml:"id"`
	Category   string `yaml:"category"`
	Severity   string `yaml:"severity"`
	Message    string `yaml:"message"`
	Suggestion string `yaml:"suggestion,omitempty"`
	Regex      string `yaml:"regex,omitempty"`
	Substring  string `yaml:"substring,omitempty"`
	IgnoreCase bool   `yaml:"ignoreCase,omitempty"`
}

// Compile turns a RuleDef into a Rule. Every failure is a *ConfigError.
func Compile(def RuleDef) (Rule, error) {
	id := strings.TrimSpace(def.ID)
	if id == "" {
		return Rule{}, &ConfigError{Err: errors.New("missing id")}
	}
	if strings.TrimSpace(def.Message) == "" {
		return Rule{}, &ConfigError{RuleID: id, Err: errors.New("missing message")}
	}
	sev, err := ParseSeverity(def.Severity)
	if err != nil {
		return Rule{}, &ConfigError{RuleID: id, Err: err}
	}
	cat := Category(strings.ToLower(strings.TrimSpace(def.Category)))
	if cat == "" {
		cat = CategoryGeneral
	}

	var m Matcher
	switch {
	case def.Regex != "" && def.Substring != "":
		return Rule{}, &ConfigError{RuleID: id, Err: errors.New("regex and substring are mutually exclusive")}
	case def.Regex != "":
		rm, err := NewRegexMatcher(def.Regex, def.IgnoreCase)
		if err != nil {
			return Rule{}, &ConfigError{RuleID: id, Err: fmt.Errorf("regex: %w", err)}
		}
		m = rm
	case def.Substring != "":
		m = NewSubstringMatcher(def.Substring, def.IgnoreCase)
	default:
		return Rule{}, &ConfigError{RuleID: id, Err: errors.New("one of regex or substring is required")}
	}

	return Rule{
		ID:         id,
		Category:   cat,
		Severity:   sev,
		Message:    def.Message,
		Suggestion: def.Suggestion,
		Pattern:    m,
	}, nil
}

// RuleSet is an ordered, read-only collection of rules. Order is registration
// order and decides the order of same-line issues.
type RuleSet struct {
	rules []Rule
	index map[string]int
}

// NewRuleSet validates rules and freezes their order.
func NewRuleSet(rules ...Rule) (*RuleSet, error) {
	rs := &RuleSet{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for _, r := range rules {
		key := strings.ToLower(strings.TrimSpace(r.ID))
		if key == "" {
			return nil, &ConfigError{Err: errors.New("missing id")}
		}
		if r.Pattern == nil {
			return nil, &ConfigError{RuleID: r.ID, Err: errors.New("missing pattern")}
		}
		if SeverityRank(r.Severity) == 0 {
			return nil, &ConfigError{RuleID: r.ID, Err: fmt.Errorf("unknown severity %q", r.Severity)}
		}
		if _, dup := rs.index[key]; dup {
			return nil, &ConfigError{RuleID: r.ID, Err: errors.New("duplicate rule id")}
		}
		rs.index[key] = len(rs.rules)
		rs.rules = append(rs.rules, r)
	}
	return rs, nil
}

// Rules returns a copy of the rules in registration order.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Get returns a rule by ID (case-insensitive).
func (rs *RuleSet) Get(id string) (Rule, bool) {
	if rs == nil {
		return Rule{}, false
	}
	idx, ok := rs.index[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Rule{}, false
	}
	return rs.rules[idx], true
}

// ByCategory groups rules by category, keeping registration order inside each group.
func (rs *RuleSet) ByCategory() map[Category][]Rule {
	m := make(map[Category][]Rule)
	if rs == nil {
		return m
	}
	for _, r := range rs.rules {
		m[r.Category] = append(m[r.Category], r)
	}
	return m
}

// Fingerprint identifies the rule set's detection behavior. Two sets with the
// same fingerprint produce the same issues for the same content.
func (rs *RuleSet) Fingerprint() string {
	h := sha256.New()
	if rs != nil {
		for _, r := range rs.rules {
			fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s\n", r.ID, r.Category, r.Severity, r.Message, r.Suggestion, patternKey(r.Pattern))
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}

// patternKey must not depend on function addresses, which differ between runs.
func patternKey(m Matcher) string {
	if s, ok := m.(fmt.Stringer); ok {
		return fmt.Sprintf("%T:%s", m, s.String())
	}
	return fmt.Sprintf("%T", m)
}
