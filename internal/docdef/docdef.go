// Package docdef provides versioned document definitions: ordered lists of
// section specs that define how a document type is composed into renderable
// blocks. A docdef is never mutated once accepted; new behavior requires a
// new semantic version.
package docdef

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// Status is the lifecycle status of a docdef. Only accepted docdefs are
// resolvable by type name.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusAccepted   Status = "accepted"
	StatusDeprecated Status = "deprecated"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusAccepted, StatusDeprecated:
		return true
	default:
		return false
	}
}

// Shape is the cardinality rule governing how many blocks a section spec
// produces from its source data.
type Shape string

const (
	// ShapeSingle produces exactly one block from the resolved data.
	ShapeSingle Shape = "single"

	// ShapeContainer produces exactly one block wrapping the source list
	// as {items: [...]}.
	ShapeContainer Shape = "container"

	// ShapeRepeat produces one block per element of the iteration source.
	ShapeRepeat Shape = "container+repeat_over"
)

// IsValid returns true if the shape is recognized.
func (s Shape) IsValid() bool {
	switch s {
	case ShapeSingle, ShapeContainer, ShapeRepeat:
		return true
	default:
		return false
	}
}

// DetailRefTemplate describes how a summary section builds its navigation
// pointer to a detail view. Param values are data pointers resolved against
// the section's source data at build time.
type DetailRefTemplate struct {
	DocumentType string
	Params       map[string]string // param name -> data pointer
}

// SectionSpec describes one section of a docdef: where its data comes
// from, which component renders it, and how many blocks it produces.
type SectionSpec struct {
	ID            string
	Title         string
	Order         int
	ComponentID   string
	Shape         Shape
	SourcePointer string
	RepeatOver    string // optional sub-pointer locating the iteration source
	ExcludeFields []string
	Derived       []string // derived field names computed at build time
	Context       map[string]any
	DetailRef     *DetailRefTemplate
}

// IsSummary reports whether this spec is a summary-style section: one whose
// source pointer addresses the document root.
func (s SectionSpec) IsSummary() bool {
	return s.SourcePointer == "" || s.SourcePointer == "/"
}

// heavyCollections are the nested collections a summary section must strip;
// leaving them in would defeat the point of a summary block.
var heavyCollections = []string{
	"risks",
	"dependencies",
	"stories",
	"open_questions",
	"requirements",
	"acceptance_criteria",
}

// Validation errors
var (
	ErrNoSections             = errors.New("docdef must have at least one section")
	ErrDuplicateSection       = errors.New("duplicate section id")
	ErrInvalidShape           = errors.New("invalid section shape")
	ErrInvalidStatus          = errors.New("invalid docdef status")
	ErrSummaryMissingExcludes = errors.New("summary section must exclude heavy collections")
	ErrSummaryMissingRef      = errors.New("summary section must declare a detail_ref template")
)

// DocDef is a versioned, ordered specification of sections that defines how
// a document type is composed into renderable blocks.
type DocDef struct {
	id       string
	typeName string
	version  *semver.Version
	title    string
	status   Status
	sections []SectionSpec
}

// New creates a docdef and validates its structural contract. The summary
// contract is asserted here, at definition time, because it defines what
// "summary" means structurally; it is not a runtime render check.
func New(id, title string, status Status, sections []SectionSpec) (*DocDef, error) {
	parts, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q in %s", ErrInvalidStatus, status, id)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSections, id)
	}

	seen := make(map[string]bool, len(sections))
	for _, sec := range sections {
		if seen[sec.ID] {
			return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateSection, sec.ID, id)
		}
		seen[sec.ID] = true

		if !sec.Shape.IsValid() {
			return nil, fmt.Errorf("%w: %q in section %s of %s", ErrInvalidShape, sec.Shape, sec.ID, id)
		}

		if sec.IsSummary() {
			if err := validateSummary(sec); err != nil {
				return nil, fmt.Errorf("%w (docdef %s)", err, id)
			}
		}
	}

	return &DocDef{
		id:       id,
		typeName: parts.TypeName,
		version:  parts.Version,
		title:    title,
		status:   status,
		sections: sections,
	}, nil
}

// validateSummary enforces the summary-section contract: heavy nested
// collections stripped and a detail_ref template present.
func validateSummary(sec SectionSpec) error {
	excluded := make(map[string]bool, len(sec.ExcludeFields))
	for _, f := range sec.ExcludeFields {
		excluded[f] = true
	}
	for _, heavy := range heavyCollections {
		if !excluded[heavy] {
			return fmt.Errorf("%w: section %s does not exclude %q", ErrSummaryMissingExcludes, sec.ID, heavy)
		}
	}
	if sec.DetailRef == nil || sec.DetailRef.DocumentType == "" {
		return fmt.Errorf("%w: section %s", ErrSummaryMissingRef, sec.ID)
	}
	return nil
}

// ID returns the docdef identifier.
func (d *DocDef) ID() string {
	return d.id
}

// TypeName returns the document type name component of the identifier.
func (d *DocDef) TypeName() string {
	return d.typeName
}

// Version returns the docdef's semantic version.
func (d *DocDef) Version() *semver.Version {
	return d.version
}

// Title returns the docdef's display title.
func (d *DocDef) Title() string {
	return d.title
}

// Status returns the docdef's lifecycle status.
func (d *DocDef) Status() Status {
	return d.status
}

// Sections returns the section specs ordered by ascending display order.
func (d *DocDef) Sections() []SectionSpec {
	out := make([]SectionSpec, len(d.sections))
	copy(out, d.sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// ComponentIDs returns the distinct component ids referenced by this
// docdef, in section order.
func (d *DocDef) ComponentIDs() []string {
	seen := make(map[string]bool, len(d.sections))
	var ids []string
	for _, sec := range d.Sections() {
		if !seen[sec.ComponentID] {
			seen[sec.ComponentID] = true
			ids = append(ids, sec.ComponentID)
		}
	}
	return ids
}
