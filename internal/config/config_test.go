package config

import (
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Provider == "" || cfg.Model == "" {
		t.Error("defaults must include a provider and model")
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
	if cfg.Cache.MemoryBudgetBytes <= 0 || cfg.Cache.DiskBudgetBytes <= 0 {
		t.Error("cache budgets must be positive")
	}
	if cfg.Cache.SemanticThreshold <= 0 || cfg.Cache.SemanticThreshold > 1 {
		t.Errorf("SemanticThreshold = %v, want in (0,1]", cfg.Cache.SemanticThreshold)
	}
	if cfg.Webhook.Enabled {
		t.Error("webhook should be disabled by default")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Provider = "ollama"
	cfg.Cache.TTLSeconds = 60

	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if got.Provider != "ollama" {
		t.Errorf("Provider = %q, want %q", got.Provider, "ollama")
	}
	if got.Cache.TTLSeconds != 60 {
		t.Errorf("TTLSeconds = %d, want 60", got.Cache.TTLSeconds)
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error for missing file: %v", err)
	}
	if cfg.Provider != "" {
		t.Error("missing file should return zero Config")
	}
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PARLEY_PROVIDER", "gemini")
	t.Setenv("PARLEY_MODEL", "gemini-2.5-flash")

	// Flag overrides beat env.
	cfg, err := Load(map[string]string{"provider": "openai"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want flag override %q", cfg.Provider, "openai")
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q, want env value", cfg.Model)
	}
}

func TestLoadFileCanDisableCache(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Cache.Enabled = false
	cfg.Privacy.RedactSecrets = false
	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Cache.Enabled {
		t.Error("file cache.enabled=false should stick through Load")
	}
	if got.Privacy.RedactSecrets {
		t.Error("file privacy.redactSecrets=false should stick through Load")
	}
}

func TestLoadWebhookEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PARLEY_WEBHOOK_URL", "https://hooks.example.com/parley")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Webhook.Enabled || cfg.Webhook.URL != "https://hooks.example.com/parley" {
		t.Errorf("Webhook = %+v, want enabled with env URL", cfg.Webhook)
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key, value string
		check      func() bool
	}{
		{"provider", "ollama", func() bool { return cfg.Provider == "ollama" }},
		{"maxTokens", "2048", func() bool { return cfg.MaxTokens == 2048 }},
		{"temperature", "0.2", func() bool { return cfg.Temperature == 0.2 }},
		{"cache.enabled", "false", func() bool { return !cfg.Cache.Enabled }},
		{"cache.semanticThreshold", "0.65", func() bool { return cfg.Cache.SemanticThreshold == 0.65 }},
		{"webhook.url", "https://example.com/h", func() bool { return cfg.Webhook.URL == "https://example.com/h" }},
		{"dashboard.addr", ":9090", func() bool { return cfg.Dashboard.Addr == ":9090" }},
	}

	for _, tt := range tests {
		if err := SetField(&cfg, tt.key, tt.value); err != nil {
			t.Errorf("SetField(%q, %q) error: %v", tt.key, tt.value, err)
			continue
		}
		if !tt.check() {
			t.Errorf("SetField(%q, %q) did not apply", tt.key, tt.value)
		}
	}
}

func TestSetFieldErrors(t *testing.T) {
	cfg := Default()

	if err := SetField(&cfg, "nope", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := SetField(&cfg, "maxTokens", "many"); err == nil {
		t.Error("expected error for non-integer maxTokens")
	}
	if err := SetField(&cfg, "cache.enabled", "perhaps"); err == nil {
		t.Error("expected error for non-boolean cache.enabled")
	}
}

func TestStorePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := Default()
	agents, err := AgentsPath(cfg)
	if err != nil {
		t.Fatalf("AgentsPath error: %v", err)
	}
	if want := filepath.Join(dir, "parley", "agents.yaml"); agents != want {
		t.Errorf("AgentsPath = %q, want %q", agents, want)
	}

	cfg.TemplatesFile = "/tmp/custom.yaml"
	templates, err := TemplatesPath(cfg)
	if err != nil {
		t.Fatalf("TemplatesPath error: %v", err)
	}
	if templates != "/tmp/custom.yaml" {
		t.Errorf("TemplatesPath = %q, want explicit override", templates)
	}
}
