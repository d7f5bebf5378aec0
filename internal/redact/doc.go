// Package redact scrubs secrets from issue snippets before reports are
// written or cached.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens, database connection strings, and provider-specific tokens
// (Anthropic, OpenAI, GitHub, Slack). Short quoted credential assignments keep
// their variable name so the finding still reads sensibly.
//
// Path-based redaction is also supported: issues in files whose paths match
// configured glob patterns have their snippets replaced with [REDACTED]
// rather than being scanned.
package redact
