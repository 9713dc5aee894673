// Package webhook delivers reply events to a configured HTTP endpoint.
//
// Payloads are JSON and carry an HMAC-SHA256 signature of the body in the
// X-Parley-Signature header so receivers can verify origin. Delivery
// retries once on 5xx responses; failures are logged, never surfaced to
// the caller.
package webhook
