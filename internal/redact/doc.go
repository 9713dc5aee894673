// Package redact removes secrets from prompt text before it is cached or
// sent to any LLM provider.
//
// Detection uses regex heuristics covering common secret shapes: API key
// assignments, JWTs, private key blocks, AWS access keys, bearer tokens,
// database connection strings, and provider-specific tokens (Anthropic,
// OpenAI, GitHub, Slack).
package redact
