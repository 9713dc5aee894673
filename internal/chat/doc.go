// Package chat runs a single conversational turn: resolve the agent,
// redact the prompt, consult the response cache, and only then call the
// provider. Concurrent identical requests collapse into one provider call.
package chat
