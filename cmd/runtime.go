package cmd

import (
	"context"
	"fmt"

	"github.com/foliohq/folio/internal/catalog"
	"github.com/foliohq/folio/internal/composer"
	"github.com/foliohq/folio/internal/config"
	"github.com/foliohq/folio/internal/document"
	"github.com/foliohq/folio/internal/infrastructure/sqlite"
	"github.com/foliohq/folio/internal/lifecycle"
	"github.com/foliohq/folio/internal/presentation"
	"github.com/foliohq/folio/internal/pubsub"
	"github.com/foliohq/folio/internal/tracing"
)

// runtime bundles the wired subsystems a command operates on.
type runtime struct {
	cfg      config.Config
	db       *sqlite.DB
	repo     document.Repository
	cat      *catalog.Catalog
	broker   *pubsub.Broker[pubsub.DocumentEvent]
	lc       *lifecycle.Manager
	comp     *composer.Composer
	provider *tracing.Provider
}

// newRuntime loads the catalog, opens the database, and wires the pipeline.
func newRuntime() (*runtime, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tcfg := cfg.Tracing
	if tcfg.Enabled && tcfg.Exporter == "file" && tcfg.FilePath == "" {
		tcfg.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	cat, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", cfg.CatalogDir, err)
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open document database: %w", err)
	}

	repo := db.DocumentRepository()
	broker := pubsub.NewBroker[pubsub.DocumentEvent]()
	lc := lifecycle.NewManager(repo, broker)

	opts := []composer.Option{composer.WithTracer(provider.Tracer())}
	if !cfg.PreviewCache {
		opts = append(opts, composer.WithPreviewCacheDisabled())
	}
	comp := composer.New(cat, repo, lc, presentation.NewTemplateRenderer().Render, opts...)

	return &runtime{
		cfg:      cfg,
		db:       db,
		repo:     repo,
		cat:      cat,
		broker:   broker,
		lc:       lc,
		comp:     comp,
		provider: provider,
	}, nil
}

// close releases runtime resources in reverse construction order.
func (r *runtime) close() {
	r.broker.Close()
	_ = r.db.Close()
	_ = r.provider.Shutdown(context.Background())
}

// surfaceOrDefault returns the configured surface when the flag is empty.
func (r *runtime) surfaceOrDefault(surface string) string {
	if surface != "" {
		return surface
	}
	if r.cfg.Surface != "" {
		return r.cfg.Surface
	}
	return composer.DefaultSurface
}
