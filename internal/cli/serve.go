package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parley-cli/parley/internal/cache"
	"github.com/parley-cli/parley/internal/chat"
	"github.com/parley-cli/parley/internal/config"
	"github.com/parley-cli/parley/internal/dashboard"
	"github.com/parley-cli/parley/internal/metrics/prom"
	"github.com/parley-cli/parley/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server and stats dashboard",
	Long: "Serves /api/chat, /api/stats, /api/cache/clear, /metrics, and\n" +
		"/healthz on the dashboard address. All chat requests share one cache,\n" +
		"so repeated prompts are answered without a provider round trip.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		store := cache.New(cache.Options{
			MemoryBudget:      cfg.Cache.MemoryBudgetBytes,
			DiskBudget:        cfg.Cache.DiskBudgetBytes,
			DefaultTTL:        time.Duration(cfg.Cache.TTLSeconds) * time.Second,
			CompressThreshold: cfg.Cache.CompressThresholdBytes,
			Metrics:           prom.New(nil),
		})

		registry, err := loadAgents(cfg)
		if err != nil {
			return err
		}
		var notifier *webhook.Notifier
		if cfg.Webhook.Enabled && cfg.Webhook.URL != "" {
			notifier = webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret)
		}
		engine := chat.NewEngine(cfg, store, notifier)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return dashboard.New(cfg.Dashboard.Addr, store, engine, registry, nil).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address override")
}
