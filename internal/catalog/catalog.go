// Package catalog loads the authoring-side definitions (schemas,
// components, presentation fragments, docdefs) from YAML files and exposes
// them through the domain registries. The catalog is loaded once at startup
// and replaced wholesale on reload; individual entries are never mutated.
package catalog

import (
	"github.com/foliohq/folio/internal/bundle"
	"github.com/foliohq/folio/internal/component"
	"github.com/foliohq/folio/internal/docdef"
	"github.com/foliohq/folio/internal/schema"
)

// Catalog bundles the loaded registries plus the fragment store and the
// bundle index that tracks every schema set hashed from this catalog.
type Catalog struct {
	Schemas    *schema.Registry
	Components *component.Registry
	DocDefs    *docdef.Registry
	Bundles    *bundle.Index

	fragments map[string]string // binding id -> fragment template
}

// Fragment returns the presentation fragment registered under a binding id.
func (c *Catalog) Fragment(bindingID string) (string, bool) {
	f, ok := c.fragments[bindingID]
	return f, ok
}

// FragmentIDs reports how many fragments the catalog carries.
func (c *Catalog) FragmentCount() int {
	return len(c.fragments)
}

// BundleFor computes and registers the schema bundle hash for a docdef:
// the set of schemas reachable through the components its sections
// reference. The docdef and components are frozen into the snapshot so a
// document pinned to the hash re-renders against the exact definitions
// that produced it, not whatever the catalog resolves to later. The same
// schema set always yields the same hash, so repeated calls only refresh
// the captured composition.
func (c *Catalog) BundleFor(d *docdef.DocDef) (string, error) {
	comps := make([]*component.Component, 0, len(d.ComponentIDs()))
	for _, compID := range d.ComponentIDs() {
		comp, err := c.Components.Get(compID)
		if err != nil {
			return "", err
		}
		comps = append(comps, comp)
	}
	return c.Bundles.RegisterComposition(c.Schemas, d, comps)
}
