// Package cli wires the parley commands: chat, agent, prompt, cache,
// config, models, serve, and version. Commands resolve configuration
// through the defaults <- file <- env <- flags chain and report failures
// through deterministic exit codes.
package cli
