// Package cli wires together the Cobra command tree for the patrol binary.
//
// It defines the root command and all subcommands (review, rules, templates,
// config, cache, hook, version), binds flags, reads configuration, runs the
// rule engine over the collected files, and returns deterministic exit codes
// for CI gating.
package cli
