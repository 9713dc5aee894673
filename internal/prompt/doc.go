// Package prompt provides reusable prompt templates with ${var}
// placeholders, stored in a YAML file alongside the agent store.
package prompt
