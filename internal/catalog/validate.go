package catalog

import (
	"fmt"

	"github.com/foliohq/folio/internal/docdef"
	"github.com/foliohq/folio/internal/log"
)

// defaultSummaryFieldCap is the maximum number of schema fields a summary
// block may surface after exclusions. Summaries that carry more than this
// have stopped being summaries.
const defaultSummaryFieldCap = 5

// validate cross-checks the loaded catalog: every section's component must
// exist, every component's schema must exist, and summary sections must
// stay within the field cap. Missing presentation fragments are logged but
// tolerated; binding resolution degrades to placeholders at render time.
func (c *Catalog) validate() error {
	for _, comp := range c.Components.List() {
		if !c.Schemas.Has(comp.SchemaID()) {
			return fmt.Errorf("component %s references unknown schema %s", comp.ID(), comp.SchemaID())
		}
		for _, surface := range comp.Surfaces() {
			bindingID, _ := comp.Binding(surface)
			if _, ok := c.fragments[bindingID]; !ok {
				log.Warn(log.CatCatalog, "component binding has no fragment",
					"component", comp.ID(), "surface", surface, "binding", bindingID)
			}
		}
	}

	for _, d := range c.DocDefs.List() {
		for _, sec := range d.Sections() {
			comp, err := c.Components.Get(sec.ComponentID)
			if err != nil {
				return fmt.Errorf("docdef %s section %s: %w", d.ID(), sec.ID, err)
			}
			if sec.IsSummary() {
				if err := c.checkSummaryCap(d, sec, comp.SchemaID()); err != nil {
					return err
				}
			}
			if sec.Shape == docdef.ShapeRepeat && sec.SourcePointer == "" && sec.RepeatOver == "" {
				return fmt.Errorf("docdef %s section %s: repeating section needs a source or repeat_over pointer",
					d.ID(), sec.ID)
			}
		}
	}
	return nil
}

// checkSummaryCap asserts the summary block stays small: schema fields
// minus exclusions must not exceed the cap.
func (c *Catalog) checkSummaryCap(d *docdef.DocDef, sec docdef.SectionSpec, schemaID string) error {
	s, err := c.Schemas.Get(schemaID)
	if err != nil {
		return fmt.Errorf("docdef %s section %s: %w", d.ID(), sec.ID, err)
	}
	excluded := make(map[string]bool, len(sec.ExcludeFields))
	for _, f := range sec.ExcludeFields {
		excluded[f] = true
	}
	surfaced := 0
	for _, f := range s.Fields() {
		if !excluded[f.Name] {
			surfaced++
		}
	}
	if surfaced > defaultSummaryFieldCap {
		return fmt.Errorf("docdef %s section %s: summary surfaces %d fields, cap is %d",
			d.ID(), sec.ID, surfaced, defaultSummaryFieldCap)
	}
	return nil
}
