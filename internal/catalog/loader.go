package catalog

import (
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/foliohq/folio/internal/bundle"
	"github.com/foliohq/folio/internal/component"
	"github.com/foliohq/folio/internal/docdef"
	"github.com/foliohq/folio/internal/log"
	"github.com/foliohq/folio/internal/schema"
)

// schemaFile is the root structure for schemas/*.yaml
type schemaFile struct {
	Schemas []schemaDef `yaml:"schemas"`
}

type schemaDef struct {
	ID     string         `yaml:"id"`     // e.g., "schema:EpicV1"
	Fields []schema.Field `yaml:"fields"` // exhaustive field list
}

// componentFile is the root structure for components/*.yaml
type componentFile struct {
	Components []componentDef `yaml:"components"`
}

type componentDef struct {
	ID       string            `yaml:"id"`       // e.g., "component:EpicSummary:1.2.0"
	Schema   string            `yaml:"schema"`   // schema id this component renders
	Guidance []string          `yaml:"guidance"` // generation guidance, non-empty
	Bindings map[string]string `yaml:"bindings"` // surface -> binding id
}

// fragmentFile is the root structure for fragments/*.yaml
type fragmentFile struct {
	Fragments []fragmentDef `yaml:"fragments"`
}

type fragmentDef struct {
	ID       string `yaml:"id"`       // binding id referenced by components
	Template string `yaml:"template"` // fragment body
}

// docdefFile is the root structure for docdefs/*.yaml
type docdefFile struct {
	DocDefs []docdefDef `yaml:"docdefs"`
}

type docdefDef struct {
	ID       string       `yaml:"id"` // e.g., "docdef:EpicSummaryView:1.0.0"
	Title    string       `yaml:"title"`
	Status   string       `yaml:"status"`
	Sections []sectionDef `yaml:"sections"`
}

type sectionDef struct {
	ID            string         `yaml:"id"`
	Title         string         `yaml:"title"`
	Order         int            `yaml:"order"`
	Component     string         `yaml:"component"`
	Shape         string         `yaml:"shape"`
	Source        string         `yaml:"source"`
	RepeatOver    string         `yaml:"repeat_over"`
	ExcludeFields []string       `yaml:"exclude_fields"`
	Derived       []string       `yaml:"derived"`
	Context       map[string]any `yaml:"context"`
	DetailRef     *detailRefDef  `yaml:"detail_ref"`
}

type detailRefDef struct {
	DocumentType string            `yaml:"document_type"`
	Params       map[string]string `yaml:"params"` // param name -> data pointer
}

// Load reads a catalog from a directory on disk.
func Load(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads every definition file from the filesystem, builds the
// domain objects, and cross-validates the result. Expected layout:
// schemas/*.yaml, components/*.yaml, fragments/*.yaml, docdefs/*.yaml.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	cat := &Catalog{
		Schemas:    schema.NewRegistry(),
		Components: component.NewRegistry(),
		DocDefs:    docdef.NewRegistry(),
		Bundles:    bundle.NewIndex(),
		fragments:  make(map[string]string),
	}

	if err := loadDir(fsys, "schemas", cat.loadSchemaFile); err != nil {
		return nil, err
	}
	if err := loadDir(fsys, "components", cat.loadComponentFile); err != nil {
		return nil, err
	}
	if err := loadDir(fsys, "fragments", cat.loadFragmentFile); err != nil {
		return nil, err
	}
	if err := loadDir(fsys, "docdefs", cat.loadDocDefFile); err != nil {
		return nil, err
	}

	if err := cat.validate(); err != nil {
		return nil, err
	}

	log.Info(log.CatCatalog, "catalog loaded",
		"schemas", len(cat.Schemas.IDs()),
		"components", len(cat.Components.List()),
		"fragments", len(cat.fragments),
		"docdefs", len(cat.DocDefs.List()))
	return cat, nil
}

// loadDir walks a catalog subdirectory and feeds each YAML file to parse.
// A missing subdirectory is not an error; an empty catalog section is legal.
func loadDir(fsys fs.FS, dir string, parse func(path string, content []byte) error) error {
	if _, err := fs.Stat(fsys, dir); err != nil {
		return nil
	}
	return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(d.Name()) {
			return nil
		}
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		return parse(path, content)
	})
}

func isYAML(name string) bool {
	return len(name) > 5 && (name[len(name)-5:] == ".yaml" || name[len(name)-4:] == ".yml")
}

func (c *Catalog) loadSchemaFile(path string, content []byte) error {
	var file schemaFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for _, def := range file.Schemas {
		s, err := schema.New(def.ID, def.Fields)
		if err != nil {
			return fmt.Errorf("schema %s in %s: %w", def.ID, path, err)
		}
		if err := c.Schemas.Add(s); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (c *Catalog) loadComponentFile(path string, content []byte) error {
	var file componentFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for _, def := range file.Components {
		comp, err := component.New(def.ID, def.Schema, def.Guidance, def.Bindings)
		if err != nil {
			return fmt.Errorf("component %s in %s: %w", def.ID, path, err)
		}
		if err := c.Components.Add(comp); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (c *Catalog) loadFragmentFile(path string, content []byte) error {
	var file fragmentFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for _, def := range file.Fragments {
		if def.ID == "" {
			return fmt.Errorf("fragment with empty id in %s", path)
		}
		if _, exists := c.fragments[def.ID]; exists {
			return fmt.Errorf("duplicate fragment id %s in %s", def.ID, path)
		}
		c.fragments[def.ID] = def.Template
	}
	return nil
}

func (c *Catalog) loadDocDefFile(path string, content []byte) error {
	var file docdefFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for _, def := range file.DocDefs {
		sections := make([]docdef.SectionSpec, 0, len(def.Sections))
		for _, sec := range def.Sections {
			spec := docdef.SectionSpec{
				ID:            sec.ID,
				Title:         sec.Title,
				Order:         sec.Order,
				ComponentID:   sec.Component,
				Shape:         docdef.Shape(sec.Shape),
				SourcePointer: sec.Source,
				RepeatOver:    sec.RepeatOver,
				ExcludeFields: sec.ExcludeFields,
				Derived:       sec.Derived,
				Context:       sec.Context,
			}
			if sec.DetailRef != nil {
				spec.DetailRef = &docdef.DetailRefTemplate{
					DocumentType: sec.DetailRef.DocumentType,
					Params:       sec.DetailRef.Params,
				}
			}
			sections = append(sections, spec)
		}
		d, err := docdef.New(def.ID, def.Title, docdef.Status(def.Status), sections)
		if err != nil {
			return fmt.Errorf("docdef %s in %s: %w", def.ID, path, err)
		}
		if err := c.DocDefs.Add(d); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
