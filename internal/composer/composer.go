// Package composer wires the composition pipeline end to end: docdef
// resolution, schema bundle pinning, render-model building, and binding
// resolution, backed by the document repository for stored renders.
package composer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/foliohq/folio/internal/binding"
	"github.com/foliohq/folio/internal/bundle"
	"github.com/foliohq/folio/internal/cachemanager"
	"github.com/foliohq/folio/internal/catalog"
	"github.com/foliohq/folio/internal/docdef"
	"github.com/foliohq/folio/internal/document"
	"github.com/foliohq/folio/internal/lifecycle"
	"github.com/foliohq/folio/internal/log"
	"github.com/foliohq/folio/internal/render"
)

// DefaultSurface is the output surface rendered when the caller does not
// name one.
const DefaultSurface = "web"

const previewCacheTTL = 5 * time.Minute

// Result is the outcome of a render: the block tree, the resolved markup
// per block, and whether the render was degraded because the pinned schema
// bundle could not be resolved.
type Result struct {
	Model    *render.RenderModel `json:"model"`
	Markups  []binding.Markup    `json:"markups"`
	Degraded bool                `json:"degraded,omitempty"`
	Banner   string              `json:"banner,omitempty"`
}

type previewInput struct {
	def     *docdef.DocDef
	in      render.Input
	surface string
}

// Composer orchestrates the pipeline. The catalog is swappable at runtime
// (watcher-driven reloads); everything else is fixed at construction.
type Composer struct {
	mu        sync.RWMutex
	cat       *catalog.Catalog
	builder   *render.Builder
	resolver  *binding.Resolver
	renderFn  binding.FragmentRenderer
	repo      document.Repository
	lifecycle *lifecycle.Manager
	tracer    trace.Tracer

	previewCache *cachemanager.ReadThroughCache[string, *Result, previewInput]
}

// Option configures a Composer.
type Option func(*Composer)

// WithTracer sets the tracer used to instrument pipeline stages.
func WithTracer(t trace.Tracer) Option {
	return func(c *Composer) { c.tracer = t }
}

// WithPreviewCacheDisabled bypasses the preview render cache.
func WithPreviewCacheDisabled() Option {
	return func(c *Composer) { c.previewCache = nil }
}

// New creates a composer over a loaded catalog.
func New(
	cat *catalog.Catalog,
	repo document.Repository,
	lc *lifecycle.Manager,
	renderFn binding.FragmentRenderer,
	opts ...Option,
) *Composer {
	c := &Composer{
		cat:       cat,
		renderFn:  renderFn,
		repo:      repo,
		lifecycle: lc,
		tracer:    noop.NewTracerProvider().Tracer("noop"),
	}
	c.builder = render.NewBuilder(cat.Components)
	c.resolver = binding.NewResolver(cat.Components, cat, renderFn)

	cache := cachemanager.NewInMemoryCacheManager[string, *Result](
		"preview-render", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	c.previewCache = cachemanager.NewReadThroughCache(
		cache,
		func(ctx context.Context, in previewInput) (*Result, error) {
			return c.renderModel(ctx, in.def, in.in, render.ModePreview, in.surface)
		},
		false,
	)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReplaceCatalog swaps in a freshly loaded catalog. Bundle snapshots from
// the old catalog are absorbed so hashes pinned by existing documents stay
// resolvable; the preview cache is flushed because its entries were built
// against the old definitions.
func (c *Composer) ReplaceCatalog(cat *catalog.Catalog) {
	c.mu.Lock()
	cat.Bundles.Absorb(c.cat.Bundles)
	c.cat = cat
	c.builder = render.NewBuilder(cat.Components)
	c.resolver = binding.NewResolver(cat.Components, cat, c.renderFn)
	if c.previewCache != nil {
		cache := cachemanager.NewInMemoryCacheManager[string, *Result](
			"preview-render", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
		c.previewCache = cachemanager.NewReadThroughCache(
			cache,
			func(ctx context.Context, in previewInput) (*Result, error) {
				return c.renderModel(ctx, in.def, in.in, render.ModePreview, in.surface)
			},
			false,
		)
	}
	c.mu.Unlock()
	log.Info(log.CatCompose, "catalog replaced")
}

// Catalog returns the active catalog.
func (c *Composer) Catalog() *catalog.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cat
}

// CreateDocument creates a new document in the missing state. The document
// type must resolve to an accepted docdef.
func (c *Composer) CreateDocument(
	ctx context.Context,
	docType, title string,
	content map[string]any,
	dependsOn []string,
) (*document.Document, error) {
	_, span := c.tracer.Start(ctx, "composer.create_document",
		trace.WithAttributes(attribute.String("document.type", docType)))
	defer span.End()

	if _, err := c.Catalog().DocDefs.Resolve(docType); err != nil {
		return nil, err
	}

	doc := document.New(uuid.NewString(), docType, title, content)
	doc.SetDependsOn(dependsOn)
	if err := c.repo.Save(doc); err != nil {
		return nil, err
	}
	log.Info(log.CatCompose, "document created", "doc_id", doc.ID(), "type", docType)
	return doc, nil
}

// BeginGeneration stamps the current schema bundle hash on the document
// and transitions it into the generating state. The hash is captured here,
// once, and never recomputed implicitly afterwards.
func (c *Composer) BeginGeneration(ctx context.Context, id string) (string, error) {
	_, span := c.tracer.Start(ctx, "composer.begin_generation",
		trace.WithAttributes(attribute.String("document.id", id)))
	defer span.End()

	doc, err := c.repo.FindByID(id)
	if err != nil {
		return "", err
	}

	cat := c.Catalog()
	def, err := cat.DocDefs.Resolve(doc.Type())
	if err != nil {
		return "", err
	}
	hash, err := cat.BundleFor(def)
	if err != nil {
		return "", fmt.Errorf("compute bundle hash: %w", err)
	}

	// The transition gates the stamp: a rejected generation attempt must
	// leave the previously pinned hash untouched.
	if err := c.lifecycle.Transition(id, doc.State(), document.StateGenerating); err != nil {
		return "", err
	}
	doc.SetState(document.StateGenerating)
	doc.StampBundleHash(hash)
	if err := c.repo.Save(doc); err != nil {
		return "", err
	}
	log.Info(log.CatCompose, "generation started", "doc_id", id, "bundle", hash)
	return hash, nil
}

// FinishGeneration stores the generated content and transitions the
// document to complete, or to partial when partial is set.
func (c *Composer) FinishGeneration(ctx context.Context, id string, content map[string]any, partial bool) error {
	_, span := c.tracer.Start(ctx, "composer.finish_generation",
		trace.WithAttributes(attribute.String("document.id", id)))
	defer span.End()

	doc, err := c.repo.FindByID(id)
	if err != nil {
		return err
	}

	to := document.StateComplete
	if partial {
		to = document.StatePartial
	}
	// Transition first: a document that is not generating keeps whatever
	// content it already holds.
	if err := c.lifecycle.Transition(id, document.StateGenerating, to); err != nil {
		return err
	}
	doc.SetState(to)
	doc.SetContent(content)
	return c.repo.Save(doc)
}

// RenderStored renders a persisted document for an output surface, honoring
// its pinned schema bundle hash. When the pinned bundle is no longer
// resolvable (or the document predates hash pinning) the render proceeds
// against current definitions and the result carries a degradation banner.
func (c *Composer) RenderStored(ctx context.Context, id, surface string) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "composer.render_stored",
		trace.WithAttributes(
			attribute.String("document.id", id),
			attribute.String("render.surface", surface)))
	defer span.End()

	doc, err := c.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	cat := c.Catalog()

	var (
		def      *docdef.DocDef
		builder  *render.Builder
		resolver *binding.Resolver
		degraded bool
		banner   string
	)
	switch {
	case doc.BundleHash() == "":
		degraded = true
		banner = "Rendered against current schema definitions: document has no pinned schema bundle"
	default:
		snap, err := cat.Bundles.Resolve(doc.BundleHash())
		if err != nil {
			var mismatch *bundle.HashMismatchError
			if !errors.As(err, &mismatch) {
				return nil, err
			}
			degraded = true
			banner = fmt.Sprintf("Rendered against current schema definitions: pinned bundle %s is not resolvable", doc.BundleHash())
			log.Warn(log.CatCompose, "bundle hash mismatch, degrading render", "doc_id", id, "bundle", doc.BundleHash())
		} else if snap.DocDef() != nil {
			// Render through the frozen composition: the docdef and
			// components captured when the hash was registered, not
			// whatever the catalog resolves to today. Fragments stay
			// current; a removed fragment degrades per block, not the
			// whole render.
			def = snap.DocDef()
			builder = render.NewBuilder(snap.Components())
			resolver = binding.NewResolver(snap.Components(), cat, c.renderFn)
		}
	}

	if def == nil {
		def, err = cat.DocDefs.Resolve(doc.Type())
		if err != nil {
			return nil, err
		}
	}

	in := render.Input{
		DocumentID: doc.ID(),
		Data:       doc.Content(),
		BundleHash: doc.BundleHash(),
		Title:      doc.Title(),
	}
	var result *Result
	if builder != nil {
		result, err = c.renderWith(ctx, builder, resolver, def, in, render.ModeStored, surface)
	} else {
		result, err = c.renderModel(ctx, def, in, render.ModeStored, surface)
	}
	if err != nil {
		return nil, err
	}
	result.Degraded = degraded
	result.Banner = banner
	return result, nil
}

// RenderPreview renders unsaved data without persistence. The preview id
// is derived from the document type and parameters, so identical preview
// requests hit the render cache.
func (c *Composer) RenderPreview(
	ctx context.Context,
	docType string,
	params map[string]any,
	data map[string]any,
	surface string,
) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "composer.render_preview",
		trace.WithAttributes(attribute.String("document.type", docType)))
	defer span.End()

	cat := c.Catalog()
	def, err := cat.DocDefs.Resolve(docType)
	if err != nil {
		return nil, err
	}
	hash, err := cat.BundleFor(def)
	if err != nil {
		return nil, fmt.Errorf("compute bundle hash: %w", err)
	}

	in := render.Input{
		Params:     params,
		Data:       data,
		BundleHash: hash,
	}
	c.mu.RLock()
	cache := c.previewCache
	c.mu.RUnlock()
	if cache == nil {
		return c.renderModel(ctx, def, in, render.ModePreview, surface)
	}

	key := render.PreviewID(docType, params) + ":" + surface
	return cache.Get(ctx, key, previewInput{def: def, in: in, surface: surface}, previewCacheTTL)
}

// renderModel runs the build and binding stages against the live catalog.
func (c *Composer) renderModel(
	ctx context.Context,
	def *docdef.DocDef,
	in render.Input,
	mode render.Mode,
	surface string,
) (*Result, error) {
	c.mu.RLock()
	builder := c.builder
	resolver := c.resolver
	c.mu.RUnlock()
	return c.renderWith(ctx, builder, resolver, def, in, mode, surface)
}

// renderWith runs the build and binding stages with an explicit builder
// and resolver, so pinned renders can substitute a frozen composition.
func (c *Composer) renderWith(
	ctx context.Context,
	builder *render.Builder,
	resolver *binding.Resolver,
	def *docdef.DocDef,
	in render.Input,
	mode render.Mode,
	surface string,
) (*Result, error) {
	_, span := c.tracer.Start(ctx, "composer.build_model",
		trace.WithAttributes(attribute.String("docdef.id", def.ID())))
	defer span.End()

	model, err := builder.Build(def, in, mode)
	if err != nil {
		return nil, err
	}
	if surface == "" {
		surface = DefaultSurface
	}
	return &Result{
		Model:   model,
		Markups: resolver.ResolveAll(model, surface),
	}, nil
}
