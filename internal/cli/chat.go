package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parley-cli/parley/internal/agent"
	"github.com/parley-cli/parley/internal/cache"
	"github.com/parley-cli/parley/internal/chat"
	"github.com/parley-cli/parley/internal/config"
	"github.com/parley-cli/parley/internal/output"
	"github.com/parley-cli/parley/internal/prompt"
	"github.com/parley-cli/parley/internal/providers"
	"github.com/parley-cli/parley/internal/webhook"
)

var chatCmd = &cobra.Command{
	Use:   "chat [prompt...]",
	Short: "Send a prompt to an agent",
	Long: "Sends a prompt to the selected agent and prints the reply. The prompt\n" +
		"comes from the arguments, or from a template with --template and --var.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		userPrompt, err := resolvePrompt(cfg, args)
		if err != nil {
			return err
		}

		registry, err := loadAgents(cfg)
		if err != nil {
			return err
		}
		agentName := flagAgent
		if agentName == "" {
			agentName = "assistant"
		}
		ag, err := registry.Get(agentName)
		if err != nil {
			return err
		}

		if flagNoCache {
			cfg.Cache.Enabled = false
		}
		if flagNoRedact {
			cfg.Privacy.RedactSecrets = false
		}

		var store *cache.Store
		if cfg.Cache.Enabled {
			store = cache.New(cache.Options{
				MemoryBudget:      cfg.Cache.MemoryBudgetBytes,
				DiskBudget:        cfg.Cache.DiskBudgetBytes,
				DefaultTTL:        time.Duration(cfg.Cache.TTLSeconds) * time.Second,
				CompressThreshold: cfg.Cache.CompressThresholdBytes,
			})
		}
		var notifier *webhook.Notifier
		if cfg.Webhook.Enabled && cfg.Webhook.URL != "" {
			notifier = webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret)
		}

		engine := chat.NewEngine(cfg, store, notifier)

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		reply, err := engine.Ask(ctx, ag, userPrompt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}

		return output.WriteReply(&reply, cfg.Format, flagOut)
	},
}

// resolvePrompt builds the user prompt from args, a template, or stdin, in
// that order of preference.
func resolvePrompt(cfg config.Config, args []string) (string, error) {
	if flagTemplate != "" {
		path, err := config.TemplatesPath(cfg)
		if err != nil {
			return "", err
		}
		templates, err := prompt.Load(path)
		if err != nil {
			return "", err
		}
		tmpl, err := templates.Get(flagTemplate)
		if err != nil {
			return "", err
		}
		vars, err := parseVars(flagVars)
		if err != nil {
			return "", err
		}
		return tmpl.Render(vars)
	}

	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	// Piped input: parley chat < question.txt
	stat, err := os.Stdin.Stat()
	if err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("no prompt given: pass arguments, --template, or pipe stdin")
}

func loadAgents(cfg config.Config) (*agent.Registry, error) {
	path, err := config.AgentsPath(cfg)
	if err != nil {
		return nil, err
	}
	return agent.Load(path)
}

func init() {
	chatCmd.Flags().StringVarP(&flagAgent, "agent", "a", "", "Agent to converse with")
	chatCmd.Flags().StringVarP(&flagTemplate, "template", "t", "", "Prompt template name")
	chatCmd.Flags().StringArrayVar(&flagVars, "var", nil, "Template variable (key=value, repeatable)")
	chatCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider override")
	chatCmd.Flags().StringVar(&flagModel, "model", "", "Model override")
	chatCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Output format: text, json, markdown")
	chatCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Write output to file instead of stdout")
	chatCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "Max tokens for the reply")
	chatCmd.Flags().Float64Var(&flagTemperature, "temperature", 0, "Sampling temperature")
	chatCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
	chatCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction")
}
