package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Agent is a named persona: a system prompt plus the provider and model it
// should run against.
type Agent struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description,omitempty"`
	SystemPrompt string  `yaml:"system_prompt"`
	Provider     string  `yaml:"provider,omitempty"`
	Model        string  `yaml:"model,omitempty"`
	Temperature  float64 `yaml:"temperature,omitempty"`
}

// Registry holds the agents loaded from a store file.
type Registry struct {
	path   string
	agents map[string]Agent // keyed by name
}

// DefaultAgent is the persona used when no agent is named.
func DefaultAgent() Agent {
	return Agent{
		ID:           uuid.NewString(),
		Name:         "assistant",
		Description:  "General-purpose assistant",
		SystemPrompt: "You are a helpful, concise assistant. Answer directly and admit uncertainty.",
	}
}

// Load reads the registry from path. A missing file yields a registry
// containing only the default agent.
func Load(path string) (*Registry, error) {
	r := &Registry{
		path:   path,
		agents: map[string]Agent{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			def := DefaultAgent()
			r.agents[def.Name] = def
			return r, nil
		}
		return nil, fmt.Errorf("reading agent store: %w", err)
	}

	var file struct {
		Agents []Agent `yaml:"agents"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing agent store %s: %w", path, err)
	}
	for _, a := range file.Agents {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		r.agents[a.Name] = a
	}
	if len(r.agents) == 0 {
		def := DefaultAgent()
		r.agents[def.Name] = def
	}
	return r, nil
}

// Get returns the agent with the given name.
func (r *Registry) Get(name string) (Agent, error) {
	a, ok := r.agents[name]
	if !ok {
		return Agent{}, fmt.Errorf("unknown agent %q (have: %s)", name, strings.Join(r.names(), ", "))
	}
	return a, nil
}

// List returns all agents sorted by name.
func (r *Registry) List() []Agent {
	out := make([]Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Add registers a new agent. The name must be unused; an empty ID is
// assigned a fresh one.
func (r *Registry) Add(a Agent) error {
	if a.Name == "" {
		return fmt.Errorf("agent name is required")
	}
	if _, exists := r.agents[a.Name]; exists {
		return fmt.Errorf("agent %q already exists", a.Name)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.agents[a.Name] = a
	return nil
}

// Update replaces an existing agent, keeping its ID.
func (r *Registry) Update(a Agent) error {
	old, ok := r.agents[a.Name]
	if !ok {
		return fmt.Errorf("unknown agent %q", a.Name)
	}
	a.ID = old.ID
	r.agents[a.Name] = a
	return nil
}

// Remove deletes the named agent.
func (r *Registry) Remove(name string) error {
	if _, ok := r.agents[name]; !ok {
		return fmt.Errorf("unknown agent %q", name)
	}
	delete(r.agents, name)
	return nil
}

// Save writes the registry back to its store file.
func (r *Registry) Save() error {
	var file struct {
		Agents []Agent `yaml:"agents"`
	}
	file.Agents = r.List()

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encoding agent store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing agent store: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing agent store: %w", err)
	}
	return nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.agents))
	for n := range r.agents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
