package render

import (
	"fmt"

	"github.com/foliohq/folio/internal/component"
	"github.com/foliohq/folio/internal/docdef"
	"github.com/foliohq/folio/internal/log"
)

// ComponentSource resolves component ids to components. Satisfied by
// *component.Registry.
type ComponentSource interface {
	Get(id string) (*component.Component, error)
}

// Input carries the per-document inputs of a build.
type Input struct {
	DocumentID string         // identity for stored renders
	Params     map[string]any // preview parameters, identity for preview renders
	Data       map[string]any // canonical document content
	BundleHash string         // schema bundle hash to stamp on the envelope
	Title      string         // display title; docdef title when empty
}

// Builder transforms (docdef, document data) into an ordered block tree
// according to fixed shape semantics. Builds are pure: identical inputs
// produce identical models, block keys included.
type Builder struct {
	components ComponentSource
}

// NewBuilder creates a builder over the given component source.
func NewBuilder(components ComponentSource) *Builder {
	return &Builder{components: components}
}

// Build produces a RenderModel for the docdef over the document data.
// Sections are processed in ascending display order; sections whose source
// data is missing or empty are omitted entirely.
func (b *Builder) Build(def *docdef.DocDef, in Input, mode Mode) (*RenderModel, error) {
	docID := in.DocumentID
	if mode == ModePreview {
		docID = PreviewID(def.TypeName(), in.Params)
	}

	title := in.Title
	if title == "" {
		title = def.Title()
	}

	model := &RenderModel{
		DocumentID:       docID,
		DocumentType:     def.TypeName(),
		Title:            title,
		SchemaBundleHash: in.BundleHash,
	}

	for _, spec := range def.Sections() {
		section, err := b.buildSection(spec, in.Data)
		if err != nil {
			return nil, err
		}
		if section == nil {
			continue
		}
		model.Sections = append(model.Sections, *section)
		model.BlockCount += len(section.Blocks)
	}

	log.Debug(log.CatRender, "built render model",
		"doc_id", docID, "type", def.TypeName(), "sections", len(model.Sections), "blocks", model.BlockCount)
	return model, nil
}

// buildSection applies shape semantics to a single section spec.
// Returns nil when the section produces no blocks.
func (b *Builder) buildSection(spec docdef.SectionSpec, data map[string]any) (*Section, error) {
	comp, err := b.components.Get(spec.ComponentID)
	if err != nil {
		return nil, fmt.Errorf("section %s: %w", spec.ID, err)
	}
	schemaID := comp.SchemaID()

	source, ok := ResolvePointer(data, spec.SourcePointer)
	if !ok || isEmptyValue(source) {
		return nil, nil
	}

	var blocks []Block
	switch spec.Shape {
	case docdef.ShapeSingle:
		payload := b.singlePayload(spec, source)
		blocks = append(blocks, Block{
			Type:    schemaID,
			Key:     blockKey(spec.ID, 0),
			Data:    payload,
			Context: copyContext(spec.Context),
		})

	case docdef.ShapeContainer:
		items := asList(source)
		if len(items) == 0 {
			return nil, nil
		}
		stripped := make([]any, 0, len(items))
		for _, item := range items {
			stripped = append(stripped, stripItem(item, spec.ExcludeFields))
		}
		blocks = append(blocks, Block{
			Type:    schemaID,
			Key:     blockKey(spec.ID, 0),
			Data:    map[string]any{"items": stripped},
			Context: copyContext(spec.Context),
		})

	case docdef.ShapeRepeat:
		iter := source
		if spec.RepeatOver != "" {
			iter, ok = ResolvePointer(source, spec.RepeatOver)
			if !ok {
				return nil, nil
			}
		}
		items := asList(iter)
		idx := 0
		for _, item := range items {
			// Elements with no matching data are omitted; the remaining
			// blocks keep contiguous indices.
			if item == nil {
				continue
			}
			blocks = append(blocks, Block{
				Type:    schemaID,
				Key:     blockKey(spec.ID, idx),
				Data:    elementPayload(item, spec.ExcludeFields),
				Context: copyContext(spec.Context),
			})
			idx++
		}

	default:
		return nil, fmt.Errorf("section %s: %w: %q", spec.ID, docdef.ErrInvalidShape, spec.Shape)
	}

	if len(blocks) == 0 {
		return nil, nil
	}
	return &Section{
		ID:     spec.ID,
		Title:  spec.Title,
		Order:  spec.Order,
		Blocks: blocks,
	}, nil
}

// singlePayload assembles a single-shape block payload: excluded fields
// stripped, derived fields computed over the unstripped source (so that
// excluded collections still feed the derivations), and the navigation
// reference attached last.
func (b *Builder) singlePayload(spec docdef.SectionSpec, source any) map[string]any {
	obj, _ := source.(map[string]any)
	payload := stripFields(obj, spec.ExcludeFields)
	if obj == nil {
		// Scalar source data still renders as a block.
		payload = map[string]any{"value": source}
	}

	for _, name := range spec.Derived {
		value, known := computeDerived(name, obj)
		if !known {
			log.Warn(log.CatRender, "unknown derived field", "section", spec.ID, "field", name)
			continue
		}
		payload[name] = value
	}

	if spec.DetailRef != nil {
		payload[DetailRefKey] = buildDetailRef(*spec.DetailRef, source)
	}
	return payload
}

// buildDetailRef resolves each templated pointer of the reference template
// against the section's resolved source data.
func buildDetailRef(tmpl docdef.DetailRefTemplate, source any) DetailRef {
	params := make(map[string]any, len(tmpl.Params))
	for name, ptr := range tmpl.Params {
		if v, ok := ResolvePointer(source, ptr); ok {
			params[name] = v
		}
	}
	return DetailRef{DocumentType: tmpl.DocumentType, Params: params}
}

func elementPayload(item any, exclude []string) map[string]any {
	if m, ok := item.(map[string]any); ok {
		return stripFields(m, exclude)
	}
	return map[string]any{"value": item}
}

func stripItem(item any, exclude []string) any {
	if m, ok := item.(map[string]any); ok {
		return stripFields(m, exclude)
	}
	return item
}

// stripFields copies a map with the excluded field names removed.
func stripFields(m map[string]any, exclude []string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, f := range exclude {
		delete(out, f)
	}
	return out
}

func copyContext(ctx map[string]any) map[string]any {
	if len(ctx) == 0 {
		return nil
	}
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}

func blockKey(sectionID string, index int) string {
	return fmt.Sprintf("%s:%d", sectionID, index)
}
