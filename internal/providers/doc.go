// Package providers implements the Provider interface for each supported
// LLM vendor.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT), Google (Gemini),
// and Ollama / LMStudio for local models. Ollama and LMStudio speak the
// OpenAI-compatible chat API and share its request path.
//
// All providers share a retry helper with exponential back-off: rate limits
// (429) and server errors (5xx) are retried, auth failures (401/403) are
// not. Base URLs are overridable through environment variables so tests can
// point a provider at an httptest server without live API calls.
//
// Use [New] to obtain a Provider by name and model string.
package providers
