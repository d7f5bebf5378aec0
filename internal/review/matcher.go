package review

import (
	"regexp"
	"strings"
)

// Span is a half-open byte range [Start, End) within a line.
type Span struct {
	Start int
	End   int
}

// Matcher reports every place a pattern matches a single line.
// Implementations must be pure: the same line always yields the same spans.
type Matcher interface {
	Match(line string) []Span
}

// MatchFunc adapts a plain function to the Matcher interface.
type MatchFunc func(line string) []Span

func (f MatchFunc) Match(line string) []Span { return f(line) }

// RegexMatcher yields one span per non-overlapping regex match.
type RegexMatcher struct {
	re *regexp.Regexp
}

// NewRegexMatcher compiles expr. When ignoreCase is set the (?i) flag is prepended.
func NewRegexMatcher(expr string, ignoreCase bool) (*RegexMatcher, error) {
	if ignoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{re: re}, nil
}

func (m *RegexMatcher) Match(line string) []Span {
	locs := m.re.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	spans := make([]Span, len(locs))
	for i, loc := range locs {
		spans[i] = Span{Start: loc[0], End: loc[1]}
	}
	return spans
}

func (m *RegexMatcher) String() string { return m.re.String() }

// SubstringMatcher yields one span per non-overlapping occurrence of a literal.
// Case-insensitive matching runs on the original bytes, so spans stay valid
// offsets into the line even when folding changes a rune's width.
type SubstringMatcher struct {
	needle string
	fold   *regexp.Regexp
}

// NewSubstringMatcher returns a matcher for needle. needle must be non-empty.
func NewSubstringMatcher(needle string, ignoreCase bool) *SubstringMatcher {
	m := &SubstringMatcher{needle: needle}
	if ignoreCase {
		m.fold = regexp.MustCompile("(?i)" + regexp.QuoteMeta(needle))
	}
	return m
}

func (m *SubstringMatcher) Match(line string) []Span {
	if m.fold != nil {
		return (&RegexMatcher{re: m.fold}).Match(line)
	}
	var spans []Span
	offset := 0
	for {
		idx := strings.Index(line[offset:], m.needle)
		if idx < 0 {
			return spans
		}
		start := offset + idx
		spans = append(spans, Span{Start: start, End: start + len(m.needle)})
		offset = start + len(m.needle)
	}
}

func (m *SubstringMatcher) String() string {
	if m.fold != nil {
		return m.fold.String()
	}
	return m.needle
}
