// Package presentation holds the outermost layer: the template-based
// fragment renderer plugged into binding resolution, and the DTOs emitted
// by the CLI.
package presentation

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"text/template"

	"github.com/foliohq/folio/internal/binding"
)

// fragmentScope is the data a fragment template executes against.
type fragmentScope struct {
	Data    map[string]any
	Context map[string]any
}

// TemplateRenderer renders presentation fragments with text/template.
// Parsed templates are cached by content, so repeated blocks bound to the
// same fragment parse once.
type TemplateRenderer struct {
	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewTemplateRenderer creates an empty renderer.
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{cache: make(map[string]*template.Template)}
}

// Render executes the fragment source against the block's data and context.
// Satisfies binding.FragmentRenderer.
func (r *TemplateRenderer) Render(fragment string, data, context map[string]any) (string, error) {
	tmpl, err := r.parse(fragment)
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, fragmentScope{Data: data, Context: context}); err != nil {
		return "", fmt.Errorf("execute fragment: %w", err)
	}
	return buf.String(), nil
}

func (r *TemplateRenderer) parse(fragment string) (*template.Template, error) {
	sum := sha256.Sum256([]byte(fragment))
	key := hex.EncodeToString(sum[:8])

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.cache[key]; ok {
		return tmpl, nil
	}
	tmpl, err := template.New(key).Option("missingkey=zero").Parse(fragment)
	if err != nil {
		return nil, err
	}
	r.cache[key] = tmpl
	return tmpl, nil
}

var _ binding.FragmentRenderer = (&TemplateRenderer{}).Render
