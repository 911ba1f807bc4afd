package notifx

import (
	"bytes"
	"sync"
	"text/template"
)

// TemplateRegistry stores and renders named plain-text templates.
type TemplateRegistry struct {
	templates map[string]*template.Template
	mu        sync.RWMutex
}

// NewTemplateRegistry creates a new template registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]*template.Template),
	}
}

// Register parses and stores a template by name.
// Missing keys fail rendering instead of printing "<no value>".
func (r *TemplateRegistry) Register(name, tmpl string) error {
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}

	r.mu.Lock()
	r.templates[name] = t
	r.mu.Unlock()

	return nil
}

// Render executes a named template with the given data.
func (r *TemplateRegistry) Render(name string, data any) (string, error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return "", notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}

	return buf.String(), nil
}
