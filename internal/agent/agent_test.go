package agent

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	a, err := r.Get("assistant")
	if err != nil {
		t.Fatalf("Get(assistant) error: %v", err)
	}
	if a.ID == "" {
		t.Error("default agent has no ID")
	}
	if a.SystemPrompt == "" {
		t.Error("default agent has no system prompt")
	}
}

func TestRegistry_AddGetRemove(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "agents.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	err = r.Add(Agent{
		Name:         "reviewer",
		Description:  "Code review persona",
		SystemPrompt: "You review Go code for correctness.",
		Provider:     "anthropic",
		Temperature:  0.2,
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	if err := r.Add(Agent{Name: "reviewer", SystemPrompt: "dup"}); err == nil {
		t.Error("expected error adding duplicate name")
	}

	a, err := r.Get("reviewer")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if a.ID == "" {
		t.Error("Add did not assign an ID")
	}

	if err := r.Remove("reviewer"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := r.Get("reviewer"); err == nil {
		t.Error("expected error after Remove")
	}
	if err := r.Remove("reviewer"); err == nil {
		t.Error("expected error removing unknown agent")
	}
}

func TestRegistry_UpdateKeepsID(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "agents.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if err := r.Add(Agent{Name: "tutor", SystemPrompt: "old"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	before, _ := r.Get("tutor")

	if err := r.Update(Agent{Name: "tutor", SystemPrompt: "new", Model: "gpt-4.1"}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	after, _ := r.Get("tutor")
	if after.ID != before.ID {
		t.Errorf("Update changed ID: %s -> %s", before.ID, after.ID)
	}
	if after.SystemPrompt != "new" {
		t.Errorf("SystemPrompt = %q, want %q", after.SystemPrompt, "new")
	}

	if err := r.Update(Agent{Name: "ghost"}); err == nil {
		t.Error("expected error updating unknown agent")
	}
}

func TestRegistry_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if err := r.Add(Agent{Name: "poet", SystemPrompt: "Answer in verse.", Provider: "ollama", Model: "llama3.3"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := r.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	r2, err := Load(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	a, err := r2.Get("poet")
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if a.Provider != "ollama" || a.Model != "llama3.3" {
		t.Errorf("reloaded agent = %+v", a)
	}

	list := r2.List()
	if len(list) != 2 {
		t.Errorf("List() returned %d agents, want 2", len(list))
	}
	if list[0].Name > list[1].Name {
		t.Error("List() not sorted by name")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte("agents: [not: {valid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
