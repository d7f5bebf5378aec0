package redact

import (
	"path/filepath"
	"regexp"

	"github.com/dshills/patrol/internal/gitctx"
	"github.com/dshills/patrol/internal/review"
)

const placeholder = "[REDACTED]"

// pathPolicyText replaces every snippet of a file matched by a redaction path.
const pathPolicyText = placeholder + " (snippet redacted by path policy)"

// secretPatterns are regex heuristics for common secret types.
var secretPatterns = []*regexp.Regexp{
	// Generic API keys (long hex/base64 strings after common key patterns)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// AWS secret access keys
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs (three base64 segments separated by dots)
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Slack tokens
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	// OpenAI API keys
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	// Generic long hex strings that look like secrets (32+ chars in an assignment)
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
}

// shortAssignment catches quoted credential values too short for the patterns
// above. The variable name and quotes are kept so the snippet stays readable.
var shortAssignment = regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|token|api_?key)(\s*[:=]\s*)(["'])[^"']+(["'])`)

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return shortAssignment.ReplaceAllString(result, "${1}${2}${3}"+placeholder+"${4}")
}

// ShouldRedactPath checks if a file path matches any of the redaction path
// patterns. Patterns use the same glob syntax as include/exclude.
func ShouldRedactPath(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return gitctx.MatchesAny(filepath.ToSlash(path), patterns)
}

// Policy decides how issue snippets are scrubbed before they are written out.
type Policy struct {
	Secrets bool
	Paths   []string
}

// Issues returns a copy of issues with snippets redacted. Files matching a
// redaction path lose their snippets entirely; otherwise, when secret
// redaction is on, each snippet is scanned. The input slice is not modified.
func (p Policy) Issues(path string, issues []review.Issue) []review.Issue {
	if len(issues) == 0 {
		return issues
	}
	byPath := ShouldRedactPath(path, p.Paths)
	if !byPath && !p.Secrets {
		return issues
	}
	out := make([]review.Issue, len(issues))
	copy(out, issues)
	for i := range out {
		if out[i].Snippet == "" {
			continue
		}
		if byPath {
			out[i].Snippet = pathPolicyText
			continue
		}
		out[i].Snippet = Secrets(out[i].Snippet)
	}
	return out
}
