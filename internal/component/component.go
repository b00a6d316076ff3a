// Package component provides the registry of canonical components: the
// per-schema generation guidance and presentation-binding tables.
// A component is created once per version and never mutated; changed
// guidance or bindings are published under a new semver.
package component

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Identifier errors
var (
	ErrInvalidIdentifier = errors.New("invalid component identifier format")
	ErrEmptyGuidance     = errors.New("component guidance cannot be empty")
)

// IDParts holds the parsed components of a component identifier.
type IDParts struct {
	Name    string
	Version *semver.Version
}

// ParseID parses a component identifier into components.
// Format: component:<Name>:<semver>
// Example: component:EpicSummary:1.2.0
func ParseID(id string) (*IDParts, error) {
	rest, ok := strings.CutPrefix(id, "component:")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	name, ver, ok := strings.Cut(rest, ":")
	if !ok || name == "" || ver == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	v, err := semver.StrictNewVersion(ver)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, id, err)
	}
	return &IDParts{Name: name, Version: v}, nil
}

// BuildID constructs a valid component identifier from components.
func BuildID(name string, version string) string {
	return fmt.Sprintf("component:%s:%s", name, version)
}

// Component references exactly one schema and carries generation guidance
// plus a map from output-surface name to a presentation-binding identifier.
type Component struct {
	id       string
	name     string
	version  *semver.Version
	schemaID string
	guidance []string
	bindings map[string]string // surface -> binding id
}

// New creates a component. Guidance must be non-empty.
func New(id, schemaID string, guidance []string, bindings map[string]string) (*Component, error) {
	parts, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if len(guidance) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyGuidance, id)
	}
	if bindings == nil {
		bindings = map[string]string{}
	}
	return &Component{
		id:       id,
		name:     parts.Name,
		version:  parts.Version,
		schemaID: schemaID,
		guidance: guidance,
		bindings: bindings,
	}, nil
}

// ID returns the component identifier.
func (c *Component) ID() string {
	return c.id
}

// Name returns the component's name component.
func (c *Component) Name() string {
	return c.name
}

// Version returns the component's semantic version.
func (c *Component) Version() *semver.Version {
	return c.version
}

// SchemaID returns the id of the schema this component renders.
func (c *Component) SchemaID() string {
	return c.schemaID
}

// Guidance returns the generation guidance strings.
func (c *Component) Guidance() []string {
	return c.guidance
}

// Binding returns the presentation-binding identifier for an output
// surface, if one is declared.
func (c *Component) Binding(surface string) (string, bool) {
	b, ok := c.bindings[surface]
	return b, ok
}

// Surfaces returns the output surfaces this component declares bindings for.
func (c *Component) Surfaces() []string {
	out := make([]string, 0, len(c.bindings))
	for s := range c.bindings {
		out = append(out, s)
	}
	return out
}
