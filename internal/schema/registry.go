package schema

import (
	"errors"
	"fmt"
	"sort"
)

// Registry errors
var (
	ErrNotFound    = errors.New("schema not found")
	ErrDuplicateID = errors.New("duplicate schema id")
	ErrNilSchema   = errors.New("schema cannot be nil")
)

// Registry holds all registered schemas. It is populated once at catalog
// load time and read-only afterwards; lookups require no locking.
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
	}
}

// Add registers a schema. Registering the same id twice is an error:
// schemas are immutable and a changed body requires a new identifier.
func (r *Registry) Add(s *Schema) error {
	if s == nil {
		return ErrNilSchema
	}
	if _, exists := r.schemas[s.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, s.ID())
	}
	r.schemas[s.ID()] = s
	return nil
}

// Get returns the schema with the given id.
func (r *Registry) Get(id string) (*Schema, error) {
	s, ok := r.schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Has reports whether the registry contains the given id.
func (r *Registry) Has(id string) bool {
	_, ok := r.schemas[id]
	return ok
}

// IDs returns all registered schema ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List returns all registered schemas ordered by id.
func (r *Registry) List() []*Schema {
	out := make([]*Schema, 0, len(r.schemas))
	for _, id := range r.IDs() {
		out = append(out, r.schemas[id])
	}
	return out
}
