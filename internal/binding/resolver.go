// Package binding resolves render-model blocks to presentation markup.
//
// The resolver is a pure lens: it performs no computation on block data,
// and any value appearing in final markup must already exist in the
// block's data or context. Every resolution step has a named failure mode
// with a corresponding inline placeholder; no error or panic escapes this
// layer.
package binding

import (
	"fmt"

	"github.com/foliohq/folio/internal/component"
	"github.com/foliohq/folio/internal/log"
	"github.com/foliohq/folio/internal/render"
)

// FailureMode names the binding resolution failure that produced a
// placeholder.
type FailureMode string

const (
	FailureNone        FailureMode = ""
	FailureNoComponent FailureMode = "no_component"
	FailureNoBinding   FailureMode = "no_binding"
	FailureNoFragment  FailureMode = "fragment_not_found"
	FailureRenderError FailureMode = "render_error"
)

// Markup is the outcome of resolving one block: either rendered markup or
// a degradation placeholder.
type Markup struct {
	BlockKey    string      `json:"block_key"`
	Content     string      `json:"content"`
	Placeholder bool        `json:"placeholder,omitempty"`
	Failure     FailureMode `json:"failure,omitempty"`
}

// FragmentRenderer is the external presentation-markup engine: a pure
// function from (fragment id, block data, block context) to markup.
type FragmentRenderer func(fragmentID string, data, context map[string]any) (string, error)

// ComponentSource resolves schema ids to their canonical component.
// Satisfied by *component.Registry.
type ComponentSource interface {
	GetBySchema(schemaID string) (*component.Component, error)
}

// FragmentSource maps presentation-binding identifiers to markup sources.
type FragmentSource interface {
	Fragment(bindingID string) (string, bool)
}

// Resolver turns blocks into markup via explicit registry lookups:
// block type (schema id) -> component -> surface binding -> fragment.
type Resolver struct {
	components ComponentSource
	fragments  FragmentSource
	renderFn   FragmentRenderer
}

// NewResolver creates a binding resolver.
func NewResolver(components ComponentSource, fragments FragmentSource, renderFn FragmentRenderer) *Resolver {
	return &Resolver{
		components: components,
		fragments:  fragments,
		renderFn:   renderFn,
	}
}

// Resolve resolves one block to markup for the requested output surface.
// It never returns an error: every failure mode degrades to an inline
// placeholder so the rest of the document keeps rendering.
func (r *Resolver) Resolve(block render.Block, surface string) Markup {
	comp, err := r.components.GetBySchema(block.Type)
	if err != nil {
		log.Warn(log.CatBinding, "no component for schema", "schema", block.Type, "block", block.Key)
		return placeholder(block.Key, FailureNoComponent,
			fmt.Sprintf("Unsupported block %s (%s)", block.Type, block.Key))
	}

	bindingID, ok := comp.Binding(surface)
	if !ok {
		log.Warn(log.CatBinding, "no binding for surface", "component", comp.ID(), "surface", surface)
		return placeholder(block.Key, FailureNoBinding,
			fmt.Sprintf("No binding for %s", comp.ID()))
	}

	fragmentID, ok := r.fragments.Fragment(bindingID)
	if !ok {
		log.Warn(log.CatBinding, "binding has no fragment", "binding", bindingID)
		return placeholder(block.Key, FailureNoFragment,
			fmt.Sprintf("Binding not found: %s", bindingID))
	}

	content, err := r.renderSafely(fragmentID, block)
	if err != nil {
		// Internal diagnostic detail stays in the log, not the markup.
		log.ErrorErr(log.CatBinding, "fragment render failed", err, "binding", bindingID, "block", block.Key)
		return placeholder(block.Key, FailureRenderError,
			fmt.Sprintf("Render error in %s", bindingID))
	}

	return Markup{BlockKey: block.Key, Content: content}
}

// ResolveAll resolves every block of a render model in order.
func (r *Resolver) ResolveAll(model *render.RenderModel, surface string) []Markup {
	var out []Markup
	for _, section := range model.Sections {
		for _, block := range section.Blocks {
			out = append(out, r.Resolve(block, surface))
		}
	}
	return out
}

// renderSafely invokes the external markup function, converting panics
// into errors so degradation stays total.
func (r *Resolver) renderSafely(fragmentID string, block render.Block) (content string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("fragment panic: %v", rec)
		}
	}()
	return r.renderFn(fragmentID, block.Data, block.Context)
}

func placeholder(blockKey string, mode FailureMode, content string) Markup {
	return Markup{
		BlockKey:    blockKey,
		Content:     content,
		Placeholder: true,
		Failure:     mode,
	}
}
