// Package config loads and merges patrol configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PATROL_TEMPLATE, PATROL_FORMAT, PATROL_FAIL_ON, etc.)
//  3. Config file ($XDG_CONFIG_HOME/patrol/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged and validated [Config], [Save] to write a
// config file, and [SetField] to update a single key.
package config
