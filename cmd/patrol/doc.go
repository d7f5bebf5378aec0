// Patrol is a local-first CLI that scans source files with line-based pattern
// rules and renders review reports.
//
// It flags hardcoded credentials, SQL built by string concatenation, bare
// exception handlers, nested loops, debug prints and commented-out code, then
// renders the findings as a markdown review structured by a checklist
// template, or as text, JSON, YAML or SARIF. Exit codes are deterministic so
// it can gate CI and git hooks.
//
// Usage:
//
//	patrol review main.py                     # markdown review of one file
//	patrol review --template security src/    # walk a directory
//	patrol review --staged --fail-on high     # review the git index
//	cat app.js | patrol review - --stdin-name app.js
//	patrol rules list --category security
//	patrol templates show performance
package main
