package review

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Built-in rule IDs.
const (
	RuleHardcodedCredentials = "hardcoded-credentials"
	RuleSQLInjection         = "sql-injection"
	RuleBareExcept           = "bare-except"
	RuleNestedLoop           = "nested-loop"
	RuleIndentedLoop         = "indented-loop"
	RuleDebugPrint           = "debug-print"
	RuleCommentedOutCode     = "commented-out-code"
)

var (
	credentialRe    = regexp.MustCompile(`(?i)\b\w*(?:password|passwd|secret|api_key|apikey|token)\w*["']?(?:\s*:\s*[\w.\[\]]+|\s+[\w.\[\]]+)?\s*(?::=|=|:)\s*["'][^"']+["']`)
	sqlInStringRe   = regexp.MustCompile("(?i)[\"'`][^\"'`]*\\b(?:SELECT|INSERT|UPDATE|DELETE)\\b")
	sqlKeywordRe    = regexp.MustCompile(`(?i)\b(?:SELECT|INSERT|UPDATE|DELETE)\b`)
	interpolationRe = regexp.MustCompile("[\"'`]\\s*\\+|\\+\\s*[\"'`]|[\"']\\s*%\\s*[\\w(]|\\.format\\(|\\$\\{|\\bf[\"'][^\"']*\\{")
	bareExceptRe    = regexp.MustCompile(`\bexcept\s*:|\bcatch\s*\{`)
	loopClauseRe    = regexp.MustCompile(`\bfor\b|\bwhile\b|\.forEach\s*\(`)
	loopHeaderRe    = regexp.MustCompile(`^(?:for|while)\b`)
	printCallRe     = regexp.MustCompile(`\bprint\s*\(`)
	consoleLogRe    = regexp.MustCompile(`\bconsole\.(?:log|debug)\s*\(`)
	commentedCodeRe = regexp.MustCompile(`^\s*(?:#|//)\s*(?:def|class|func)\s+`)
)

// indentLevelWidth is the column width of one indentation level; a tab counts as one level.
const indentLevelWidth = 4

var builtin = sync.OnceValue(func() *RuleSet {
	rs, err := NewRuleSet(builtinRules()...)
	if err != nil {
		panic("review: invalid built-in rules: " + err.Error())
	}
	return rs
})

// Builtin returns the built-in rule set. It is built once and shared read-only.
func Builtin() *RuleSet {
	return builtin()
}

func builtinRules() []Rule {
	return []Rule{
		{
			ID:         RuleHardcodedCredentials,
			Category:   CategorySecurity,
			Severity:   SeverityHigh,
			Message:    "Hardcoded credentials detected. Use environment variables instead.",
			Suggestion: "Read the value from the environment or a secret manager at runtime.",
			Pattern:    &RegexMatcher{re: credentialRe},
		},
		{
			ID:         RuleSQLInjection,
			Category:   CategorySecurity,
			Severity:   SeverityHigh,
			Message:    "Potential SQL injection vulnerability. Use parameterized queries.",
			Suggestion: "Pass user values as query parameters instead of building the SQL string.",
			Pattern:    namedMatcher{name: RuleSQLInjection, fn: matchSQLInjection},
		},
		{
			ID:         RuleBareExcept,
			Category:   CategorySecurity,
			Severity:   SeverityMedium,
			Message:    "Bare except clause found. Specify exceptions to catch.",
			Suggestion: "Catch the specific exception types the block can handle.",
			Pattern:    &RegexMatcher{re: bareExceptRe},
		},
		{
			ID:       RuleNestedLoop,
			Category: CategoryPerformance,
			Severity: SeverityMedium,
			Message:  "Nested loop detected. Consider optimizing.",
			Pattern:  namedMatcher{name: RuleNestedLoop, fn: matchNestedLoop},
		},
		{
			ID:       RuleIndentedLoop,
			Category: CategoryPerformance,
			Severity: SeverityLow,
			Message:  "Loop nested inside another block. Check for nested iteration and consider optimizing.",
			Pattern:  namedMatcher{name: RuleIndentedLoop, fn: matchIndentedLoop},
		},
		{
			ID:         RuleDebugPrint,
			Category:   CategoryGeneral,
			Severity:   SeverityLow,
			Message:    "Debug print statement found. Consider using proper logging.",
			Suggestion: "Use the project's logger with an appropriate level.",
			Pattern:    namedMatcher{name: RuleDebugPrint, fn: matchDebugPrint},
		},
		{
			ID:       RuleCommentedOutCode,
			Category: CategoryGeneral,
			Severity: SeverityLow,
			Message:  "Commented out code found. Remove if not needed.",
			Pattern:  &RegexMatcher{re: commentedCodeRe},
		},
	}
}

// namedMatcher is a function matcher with a stable name for fingerprinting.
type namedMatcher struct {
	name string
	fn   func(string) []Span
}

func (m namedMatcher) Match(line string) []Span { return m.fn(line) }
func (m namedMatcher) String() string          { return m.name }

// matchSQLInjection reports at most one span per line: the first SQL keyword
// that sits inside a string literal on a line that also builds a string.
func matchSQLInjection(line string) []Span {
	loc := sqlInStringRe.FindStringIndex(line)
	if loc == nil || !interpolationRe.MatchString(line) {
		return nil
	}
	kw := sqlKeywordRe.FindStringIndex(line[loc[0]:])
	if kw == nil {
		return nil
	}
	return []Span{{Start: loc[0] + kw[0], End: loc[0] + kw[1]}}
}

// matchNestedLoop yields one span for every loop clause after the first.
func matchNestedLoop(line string) []Span {
	code := codePart(line)
	locs := loopClauseRe.FindAllStringIndex(code, -1)
	if len(locs) < 2 {
		return nil
	}
	spans := make([]Span, 0, len(locs)-1)
	for _, loc := range locs[1:] {
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}
	return spans
}

func matchIndentedLoop(line string) []Span {
	width, offset := indentWidth(line)
	if width < 2*indentLevelWidth {
		return nil
	}
	loc := loopHeaderRe.FindStringIndex(codePart(line)[offset:])
	if loc == nil {
		return nil
	}
	return []Span{{Start: offset + loc[0], End: offset + loc[1]}}
}

func matchDebugPrint(line string) []Span {
	if isCommentLine(line) {
		return nil
	}
	code := codePart(line)
	var spans []Span
	lower := strings.ToLower(line)
	if strings.Contains(lower, "debug") || !strings.Contains(lower, "log") {
		for _, loc := range printCallRe.FindAllStringIndex(code, -1) {
			spans = append(spans, Span{Start: loc[0], End: loc[1]})
		}
	}
	for _, loc := range consoleLogRe.FindAllStringIndex(code, -1) {
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

func isCommentLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "#") || strings.HasPrefix(t, "//")
}

// indentWidth returns the visual width of the leading whitespace and its byte length.
func indentWidth(line string) (width, offset int) {
	for offset < len(line) {
		switch line[offset] {
		case ' ':
			width++
		case '\t':
			width += indentLevelWidth
		default:
			return width, offset
		}
		offset++
	}
	return width, offset
}

// codePart blanks out string literal contents and drops any trailing comment,
// keeping byte offsets aligned with the original line.
func codePart(line string) string {
	b := []byte(line)
	var quote byte
	for i := 0; i < len(b); i++ {
		c := b[i]
		if quote != 0 {
			switch {
			case c == '\\' && i+1 < len(b):
				b[i], b[i+1] = ' ', ' '
				i++
			case c == quote:
				quote = 0
			default:
				b[i] = ' '
			}
			continue
		}
		switch {
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '#':
			return string(b[:i])
		case c == '/' && i+1 < len(b) && b[i+1] == '/':
			return string(b[:i])
		}
	}
	return string(b)
}
