package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body,
// prefixed with "sha256=".
const SignatureHeader = "X-Parley-Signature"

// Event is the payload posted to the endpoint.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
	Agent      string    `json:"agent,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Model      string    `json:"model,omitempty"`
	Cached     bool      `json:"cached"`
	TokensUsed int       `json:"tokensUsed,omitempty"`
	DurationMs int64     `json:"durationMs,omitempty"`
}

// Notifier posts events to a single endpoint.
type Notifier struct {
	url    string
	secret string
	client *http.Client
}

// New creates a Notifier for the given endpoint. The secret may be empty,
// in which case no signature header is sent.
func New(url, secret string) *Notifier {
	return &Notifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewEvent builds an event with a fresh ID and timestamp.
func NewEvent(eventType string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
	}
}

// Notify posts the event. One retry on 5xx; any terminal failure is
// logged and swallowed so a dead endpoint never breaks a chat.
func (n *Notifier) Notify(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Error("webhook: encoding event")
		return
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
		retryable, err := n.post(ctx, payload)
		if err == nil {
			return
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	log.WithError(lastErr).WithField("url", n.url).Error("webhook: delivery failed")
}

func (n *Notifier) post(ctx context.Context, payload []byte) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, "POST", n.url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set(SignatureHeader, Sign(n.secret, payload))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return true, fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}
	return false, nil
}

// Sign computes the signature header value for a body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the header value matches the body signature.
// Comparison is constant time.
func Verify(secret string, body []byte, header string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(header))
}
