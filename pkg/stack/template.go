package stack

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/resources"
)

// Built-in template names.
const (
	TemplateDocker     = "docker"
	TemplateKubernetes = "kubernetes"
)

// Template holds the defaults a container is created with.
type Template struct {
	Name       string                  `toml:"name" json:"name" validate:"required"`
	Label      string                  `toml:"label" json:"label,omitempty"`
	Kind       Kind                    `toml:"kind" json:"kind" validate:"required,oneof=docker kubernetes custom"`
	Width      float64                 `toml:"width" json:"width" validate:"gte=100"`
	Height     float64                 `toml:"height" json:"height" validate:"gte=100"`
	Ports      []string                `toml:"ports" json:"ports,omitempty" validate:"dive,numeric"`
	Env        map[string]string       `toml:"env" json:"env,omitempty"`
	Replicas   int                     `toml:"replicas" json:"replicas,omitempty" validate:"gte=0"`
	Mode       resources.Mode          `toml:"mode" json:"mode,omitempty" validate:"omitempty,oneof=auto manual"`
	Baseline   *resources.Requirements `toml:"baseline" json:"baseline,omitempty"`
	Categories []Category              `toml:"categories" json:"categories,omitempty"`
}

// DisplayName returns Label, or Name when no label is set.
func (t Template) DisplayName() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Name
}

// DockerTemplate returns the built-in docker template.
func DockerTemplate() Template {
	return Template{
		Name:       TemplateDocker,
		Label:      "Docker Container",
		Kind:       KindDocker,
		Width:      400,
		Height:     300,
		Ports:      []string{"3000", "5000"},
		Replicas:   1,
		Mode:       resources.ModeAuto,
		Categories: slices.Clone(DockerCategories),
	}
}

// KubernetesTemplate returns the built-in kubernetes template.
func KubernetesTemplate() Template {
	return Template{
		Name:     TemplateKubernetes,
		Label:    "Kubernetes Pod",
		Kind:     KindKubernetes,
		Width:    600,
		Height:   400,
		Ports:    []string{"80", "443", "8080"},
		Replicas: 3,
		Mode:     resources.ModeAuto,
	}
}

// =============================================================================
// Loading
// =============================================================================

// templateFile is the on-disk TOML layout:
//
//	[[template]]
//	name = "redis-cluster"
//	kind = "custom"
//	width = 500
//	height = 350
//	ports = ["6379"]
//	categories = ["database"]
//
//	[template.baseline]
//	cpu = "1 core"
//	memory = "2GB"
type templateFile struct {
	Templates []Template `toml:"template"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the template's fields.
func (t Template) Validate() error {
	if err := structValidator().Struct(t); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidTemplate, err, "template %q", t.Name)
	}
	if t.Kind == KindDocker {
		for _, c := range t.Categories {
			if !slices.Contains(DockerCategories, c) {
				return errs.New(errs.ErrCodeInvalidTemplate, "template %q: docker containers cannot accept %s components", t.Name, c)
			}
		}
	}
	return nil
}

// LoadTemplates decodes custom templates from TOML.
// A missing kind defaults to custom and missing sizes to the docker size.
// Templates with a baseline default to manual mode so the baseline is shown.
func LoadTemplates(r io.Reader) ([]Template, error) {
	var f templateFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidTemplate, err, "decode templates")
	}

	for i := range f.Templates {
		t := &f.Templates[i]
		if t.Kind == "" {
			t.Kind = KindCustom
		}
		if t.Width == 0 {
			t.Width = 400
		}
		if t.Height == 0 {
			t.Height = 300
		}
		if t.Mode == "" {
			t.Mode = defaultMode(*t)
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Templates, nil
}

// LoadTemplatesFile reads custom templates from a TOML file.
func LoadTemplatesFile(path string) ([]Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return LoadTemplates(f)
}

// =============================================================================
// Registry
// =============================================================================

// Registry resolves templates by name. The built-in docker and kubernetes
// templates are always present. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewRegistry creates a registry with the built-ins plus extra.
// Extra templates may override built-ins by name.
func NewRegistry(extra ...Template) *Registry {
	r := &Registry{templates: map[string]Template{
		TemplateDocker:     DockerTemplate(),
		TemplateKubernetes: KubernetesTemplate(),
	}}
	for _, t := range extra {
		r.templates[t.Name] = t
	}
	return r
}

// Register adds or replaces a template after validating it.
func (r *Registry) Register(t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name] = t
	return nil
}

// Lookup returns the template with the given name (case-insensitive).
func (r *Registry) Lookup(name string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.templates[name]; ok {
		return t, nil
	}
	for n, t := range r.templates {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return Template{}, errs.New(errs.ErrCodeTemplateNotFound, "unknown container template %q", name)
}

// All returns every template sorted by name.
func (r *Registry) All() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
