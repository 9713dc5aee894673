package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parley-cli/parley/internal/agent"
	"github.com/parley-cli/parley/internal/cache"
	"github.com/parley-cli/parley/internal/chat"
)

// Server exposes a chat endpoint, cache stats, and Prometheus metrics.
// Every chat request goes through the shared engine, so repeated prompts
// are answered from the cache the stats endpoints report on.
type Server struct {
	store  *cache.Store
	engine *chat.Engine
	agents *agent.Registry
	http   *http.Server
}

// New builds a Server listening on addr. engine and agents may be nil to
// serve stats only; gatherer may be nil to use the default Prometheus
// registry.
func New(addr string, store *cache.Store, engine *chat.Engine, agents *agent.Registry, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{store: store, engine: engine, agents: agents}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/cache/clear", s.handleClear)
	if engine != nil && agents != nil {
		mux.HandleFunc("/api/chat", s.handleChat)
	}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the underlying mux, used by tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe blocks until the context is canceled or the listener
// fails. Shutdown drains in-flight requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.http.Addr).Info("dashboard listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.store.Stats()); err != nil {
		log.WithError(err).Error("dashboard: encoding stats")
	}
}

// chatRequest is the body of POST /api/chat. Agent defaults to the
// built-in assistant.
type chatRequest struct {
	Agent  string `json:"agent,omitempty"`
	Prompt string `json:"prompt"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}
	name := req.Agent
	if name == "" {
		name = "assistant"
	}
	ag, err := s.agents.Get(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply, err := s.engine.Ask(r.Context(), ag, req.Prompt)
	if err != nil {
		log.WithError(err).WithField("agent", name).Error("dashboard: chat failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		log.WithError(err).Error("dashboard: encoding reply")
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.store.Clear()
	log.Info("cache cleared via dashboard")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("cleared\n"))
}
