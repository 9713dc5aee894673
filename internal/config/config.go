package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config represents the parley configuration.
type Config struct {
	Provider      string          `json:"provider"`
	Model         string          `json:"model"`
	MaxTokens     int             `json:"maxTokens"`
	Temperature   float64         `json:"temperature"`
	Format        string          `json:"format"`
	AgentsFile    string          `json:"agentsFile,omitempty"`
	TemplatesFile string          `json:"templatesFile,omitempty"`
	Cache         CacheConfig     `json:"cache"`
	Webhook       WebhookConfig   `json:"webhook"`
	Dashboard     DashboardConfig `json:"dashboard"`
	Privacy       PrivacyConfig   `json:"privacy"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled                bool    `json:"enabled"`
	MemoryBudgetBytes      int64   `json:"memoryBudgetBytes"`
	DiskBudgetBytes        int64   `json:"diskBudgetBytes"`
	TTLSeconds             int     `json:"ttlSeconds"`
	CompressThresholdBytes int     `json:"compressThresholdBytes"`
	Semantic               bool    `json:"semantic"`
	SemanticThreshold      float64 `json:"semanticThreshold"`
}

// WebhookConfig controls chat event delivery.
type WebhookConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url,omitempty"`
	Secret  string `json:"secret,omitempty"`
}

// DashboardConfig controls the stats/metrics HTTP server.
type DashboardConfig struct {
	Addr string `json:"addr"`
}

// PrivacyConfig controls secret redaction of outgoing prompts.
type PrivacyConfig struct {
	RedactSecrets bool `json:"redactSecrets"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:    "anthropic",
		Model:       "claude-sonnet-4-20250514",
		MaxTokens:   4096,
		Temperature: 0.7,
		Format:      "text",
		Cache: CacheConfig{
			Enabled:                true,
			MemoryBudgetBytes:      8 << 20,
			DiskBudgetBytes:        64 << 20,
			TTLSeconds:             86400,
			CompressThresholdBytes: 1024,
			Semantic:               true,
			SemanticThreshold:      0.8,
		},
		Webhook: WebhookConfig{
			Enabled: false,
		},
		Dashboard: DashboardConfig{
			Addr: "127.0.0.1:8787",
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for parley.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "parley"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "parley"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "parley"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "parley"), nil
	default:
		return filepath.Join(home, ".config", "parley"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// AgentsPath returns the agent store path: the configured AgentsFile or
// agents.yaml in the config dir.
func AgentsPath(cfg Config) (string, error) {
	if cfg.AgentsFile != "" {
		return cfg.AgentsFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "agents.yaml"), nil
}

// TemplatesPath returns the prompt template store path: the configured
// TemplatesFile or templates.yaml in the config dir.
func TemplatesPath(cfg Config) (string, error) {
	if cfg.TemplatesFile != "" {
		return cfg.TemplatesFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "templates.yaml"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags (only non-zero values
// should be set). The file is unmarshaled over the defaults, so an unset
// bool keeps its default while an explicit false sticks.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("PARLEY_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("PARLEY_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PARLEY_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("PARLEY_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("PARLEY_CACHE_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLSeconds = n
		}
	}
	if v := os.Getenv("PARLEY_WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
		cfg.Webhook.Enabled = true
	}
	if v := os.Getenv("PARLEY_WEBHOOK_SECRET"); v != "" {
		cfg.Webhook.Secret = v
	}
	if v := os.Getenv("PARLEY_DASHBOARD_ADDR"); v != "" {
		cfg.Dashboard.Addr = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["maxTokens"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v, ok := overrides["temperature"]; ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v, ok := overrides["dashboardAddr"]; ok && v != "" {
		cfg.Dashboard.Addr = v
	}
}

// SetField sets a single config field by key name. Returns an error if the
// key is unknown or the value does not parse.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "cache.memoryBudgetBytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("cache.memoryBudgetBytes must be an integer: %w", err)
		}
		cfg.Cache.MemoryBudgetBytes = n
	case "cache.diskBudgetBytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("cache.diskBudgetBytes must be an integer: %w", err)
		}
		cfg.Cache.DiskBudgetBytes = n
	case "cache.semantic":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.semantic must be a boolean: %w", err)
		}
		cfg.Cache.Semantic = b
	case "cache.semanticThreshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("cache.semanticThreshold must be a number: %w", err)
		}
		cfg.Cache.SemanticThreshold = f
	case "webhook.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("webhook.enabled must be a boolean: %w", err)
		}
		cfg.Webhook.Enabled = b
	case "webhook.url":
		cfg.Webhook.URL = value
	case "webhook.secret":
		cfg.Webhook.Secret = value
	case "dashboard.addr":
		cfg.Dashboard.Addr = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
