package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/parley-cli/parley/internal/agent"
	"github.com/parley-cli/parley/internal/cache"
	"github.com/parley-cli/parley/internal/config"
	"github.com/parley-cli/parley/internal/providers"
	"github.com/parley-cli/parley/internal/redact"
	"github.com/parley-cli/parley/internal/webhook"
)

// Reply is the result of one chat turn.
type Reply struct {
	Content    string  `json:"content"`
	Agent      string  `json:"agent"`
	Provider   string  `json:"provider"`
	Model      string  `json:"model"`
	TokensUsed int     `json:"tokensUsed,omitempty"`
	Cached     bool    `json:"cached"`
	Similarity float64 `json:"similarity,omitempty"`
	DurationMs int64   `json:"durationMs"`
	RunID      string  `json:"runId"`
}

// cachedReply is the portion of a Reply worth storing.
type cachedReply struct {
	Content    string `json:"content"`
	TokensUsed int    `json:"tokensUsed,omitempty"`
}

// Engine executes chat turns against a provider with caching in front.
type Engine struct {
	cfg      config.Config
	store    *cache.Store
	notifier *webhook.Notifier
	group    singleflight.Group

	// newProvider is swapped out in tests.
	newProvider func(provider, model string) (providers.Provider, error)
}

// NewEngine builds an engine. store may be nil when caching is disabled;
// notifier may be nil when no webhook is configured.
func NewEngine(cfg config.Config, store *cache.Store, notifier *webhook.Notifier) *Engine {
	return &Engine{
		cfg:         cfg,
		store:       store,
		notifier:    notifier,
		newProvider: providers.New,
	}
}

// Ask runs one turn for the given agent and prompt.
func (e *Engine) Ask(ctx context.Context, ag agent.Agent, prompt string) (Reply, error) {
	started := time.Now()

	reply := Reply{
		Agent:    ag.Name,
		Provider: e.providerFor(ag),
		Model:    e.modelFor(ag),
		RunID:    uuid.NewString(),
	}

	if e.cfg.Privacy.RedactSecrets {
		prompt = redact.Prompt(prompt)
	}

	key := cacheKey(reply.Provider, reply.Model, ag.SystemPrompt, prompt)
	logger := log.WithFields(log.Fields{
		"agent":    ag.Name,
		"provider": reply.Provider,
		"model":    reply.Model,
		"run":      reply.RunID,
	})

	if e.store != nil {
		if raw, ok, err := e.store.Get(key); err != nil {
			logger.WithError(err).Warn("cache read failed, falling through")
		} else if ok {
			var c cachedReply
			if err := json.Unmarshal(raw, &c); err == nil {
				logger.Debug("cache hit")
				reply.Content = c.Content
				reply.TokensUsed = c.TokensUsed
				reply.Cached = true
				reply.DurationMs = time.Since(started).Milliseconds()
				e.notify(ctx, reply)
				return reply, nil
			}
		}

		if e.cfg.Cache.Semantic {
			if m, ok, err := e.store.SemanticGet(key, e.cfg.Cache.SemanticThreshold); err != nil {
				logger.WithError(err).Warn("semantic lookup failed, falling through")
			} else if ok {
				var c cachedReply
				if err := json.Unmarshal(m.Value, &c); err == nil {
					logger.WithField("similarity", m.Similarity).Debug("semantic cache hit")
					reply.Content = c.Content
					reply.TokensUsed = c.TokensUsed
					reply.Cached = true
					reply.Similarity = m.Similarity
					reply.DurationMs = time.Since(started).Milliseconds()
					e.notify(ctx, reply)
					return reply, nil
				}
			}
		}
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		return e.complete(ctx, ag, reply.Provider, reply.Model, prompt)
	})
	if err != nil {
		return Reply{}, err
	}
	resp := v.(providers.ChatResponse)

	if e.store != nil {
		if err := e.store.Set(key, cachedReply{Content: resp.Content, TokensUsed: resp.TokensUsed},
			cache.WithMetadata(map[string]string{"agent": ag.Name, "model": reply.Model})); err != nil {
			logger.WithError(err).Warn("caching reply failed")
		}
	}

	reply.Content = resp.Content
	reply.TokensUsed = resp.TokensUsed
	reply.DurationMs = time.Since(started).Milliseconds()
	logger.WithField("tokens", reply.TokensUsed).Debug("provider reply")
	e.notify(ctx, reply)
	return reply, nil
}

func (e *Engine) complete(ctx context.Context, ag agent.Agent, providerName, model, prompt string) (providers.ChatResponse, error) {
	p, err := e.newProvider(providerName, model)
	if err != nil {
		return providers.ChatResponse{}, err
	}

	temperature := e.cfg.Temperature
	if ag.Temperature > 0 {
		temperature = ag.Temperature
	}

	resp, err := p.Complete(ctx, providers.ChatRequest{
		SystemPrompt: ag.SystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    e.cfg.MaxTokens,
		Temperature:  temperature,
	})
	if err != nil {
		return providers.ChatResponse{}, fmt.Errorf("%s: %w", providerName, err)
	}
	return resp, nil
}

// notify fires the webhook without blocking the reply path.
func (e *Engine) notify(ctx context.Context, r Reply) {
	if e.notifier == nil {
		return
	}
	ev := webhook.NewEvent("reply")
	ev.Agent = r.Agent
	ev.Provider = r.Provider
	ev.Model = r.Model
	ev.Cached = r.Cached
	ev.TokensUsed = r.TokensUsed
	ev.DurationMs = r.DurationMs
	go e.notifier.Notify(context.WithoutCancel(ctx), ev)
}

func (e *Engine) providerFor(ag agent.Agent) string {
	if ag.Provider != "" {
		return ag.Provider
	}
	return e.cfg.Provider
}

func (e *Engine) modelFor(ag agent.Agent) string {
	if ag.Model != "" {
		return ag.Model
	}
	return e.cfg.Model
}

// cacheKey scopes an entry to its provider, model, and persona. The system
// prompt is folded into a short hash so semantic matching compares mostly
// the user prompt text.
func cacheKey(provider, model, systemPrompt, prompt string) string {
	return fmt.Sprintf("%s|%s|%s|%s", provider, model, cache.HashKey(systemPrompt)[:12], prompt)
}
