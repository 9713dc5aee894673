// Package agent manages named personas: a system prompt plus provider and
// model settings, stored together under a stable ID.
//
// Agents live in a YAML file (agents.yaml in the config directory by
// default). The registry loads the whole file into memory, applies changes
// there, and writes the file back atomically on Save.
package agent
