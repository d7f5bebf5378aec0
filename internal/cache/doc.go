// Package cache stores per-file analysis results on disk so unchanged files
// are not rescanned.
//
// Entries are keyed by a SHA-256 hash of the rule set fingerprint and the raw
// file content, so editing a rule pack or the file invalidates the entry. Each
// entry holds the issues as found, before severity filtering and snippet
// redaction, with a creation timestamp and a TTL in seconds. Expired entries
// are skipped on read and removed.
//
// The default cache directory is $XDG_CACHE_HOME/patrol (or the OS-appropriate
// equivalent).
package cache
