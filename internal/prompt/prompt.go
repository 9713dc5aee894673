package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// placeholderPattern matches the braced ${var} form only. A bare $name or
// a lone $ is literal text and passes through untouched.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Template is a named prompt with ${var} placeholders.
type Template struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Text        string   `yaml:"text"`
	Variables   []string `yaml:"variables,omitempty"`
}

// Render substitutes ${var} placeholders from vars. Only the braced form
// is recognized, so dollar signs in template text survive rendering. Every
// placeholder in the template text must be supplied; unused vars are an
// error too, since they usually mean a typo in the variable name.
func (t Template) Render(vars map[string]string) (string, error) {
	used := map[string]bool{}
	missingSet := map[string]bool{}

	out := placeholderPattern.ReplaceAllStringFunc(t.Text, func(m string) string {
		name := m[2 : len(m)-1]
		v, ok := vars[name]
		if !ok {
			missingSet[name] = true
			return m
		}
		used[name] = true
		return v
	})

	if len(missingSet) > 0 {
		missing := make([]string, 0, len(missingSet))
		for name := range missingSet {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		return "", fmt.Errorf("template %q: missing variables: %s", t.Name, strings.Join(missing, ", "))
	}
	var unused []string
	for name := range vars {
		if !used[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return "", fmt.Errorf("template %q: unknown variables: %s", t.Name, strings.Join(unused, ", "))
	}
	return out, nil
}

// Registry holds the templates loaded from a store file.
type Registry struct {
	path      string
	templates map[string]Template
}

// Load reads the registry from path. A missing file yields an empty
// registry.
func Load(path string) (*Registry, error) {
	r := &Registry{
		path:      path,
		templates: map[string]Template{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("reading template store: %w", err)
	}

	var file struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing template store %s: %w", path, err)
	}
	for _, t := range file.Templates {
		r.templates[t.Name] = t
	}
	return r, nil
}

// Get returns the named template.
func (r *Registry) Get(name string) (Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q", name)
	}
	return t, nil
}

// List returns all templates sorted by name.
func (r *Registry) List() []Template {
	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Add registers a new template. The name must be unused.
func (r *Registry) Add(t Template) error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if _, exists := r.templates[t.Name]; exists {
		return fmt.Errorf("template %q already exists", t.Name)
	}
	r.templates[t.Name] = t
	return nil
}

// Remove deletes the named template.
func (r *Registry) Remove(name string) error {
	if _, ok := r.templates[name]; !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	delete(r.templates, name)
	return nil
}

// Save writes the registry back to its store file.
func (r *Registry) Save() error {
	var file struct {
		Templates []Template `yaml:"templates"`
	}
	file.Templates = r.List()

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encoding template store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing template store: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing template store: %w", err)
	}
	return nil
}
