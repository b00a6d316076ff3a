package component

import (
	"errors"
	"fmt"
	"sort"
)

// Registry errors
var (
	ErrNotFound     = errors.New("component not found")
	ErrDuplicateID  = errors.New("duplicate component id")
	ErrNilComponent = errors.New("component cannot be nil")
)

// Registry holds all registered components, indexed by id and by the
// schema they render. Populated once at catalog load time.
type Registry struct {
	byID     map[string]*Component
	bySchema map[string][]*Component
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[string]*Component),
		bySchema: make(map[string][]*Component),
	}
}

// Add registers a component version.
func (r *Registry) Add(c *Component) error {
	if c == nil {
		return ErrNilComponent
	}
	if _, exists := r.byID[c.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID())
	}
	r.byID[c.ID()] = c
	r.bySchema[c.SchemaID()] = append(r.bySchema[c.SchemaID()], c)
	return nil
}

// Get returns the component with the given id.
func (r *Registry) Get(id string) (*Component, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

// GetBySchema returns the canonical component for a schema id: the one
// with the highest semantic version among those registered for it.
func (r *Registry) GetBySchema(schemaID string) (*Component, error) {
	versions := r.bySchema[schemaID]
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: no component for schema %s", ErrNotFound, schemaID)
	}
	best := versions[0]
	for _, c := range versions[1:] {
		if c.Version().GreaterThan(best.Version()) {
			best = c
		}
	}
	return best, nil
}

// List returns all registered components ordered by id.
func (r *Registry) List() []*Component {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Component, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}
