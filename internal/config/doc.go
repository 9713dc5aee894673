// Package config loads and merges parley configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PARLEY_PROVIDER, PARLEY_MODEL, PARLEY_FORMAT,
//     PARLEY_WEBHOOK_URL, PARLEY_DASHBOARD_ADDR, etc.)
//  3. Config file ($XDG_CONFIG_HOME/parley/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to persist one, and
// [SetField] to update a single key. Agent personas and prompt templates
// live in their own YAML files next to the config file; [AgentsPath] and
// [TemplatesPath] resolve those locations.
package config
