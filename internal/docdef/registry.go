package docdef

import (
	"errors"
	"fmt"
	"sort"
)

// Registry errors
var (
	ErrDuplicateID = errors.New("duplicate docdef id")
	ErrNilDocDef   = errors.New("docdef cannot be nil")
)

// NotFoundError indicates no accepted docdef exists for a type name.
type NotFoundError struct {
	TypeName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no accepted docdef for type %q", e.TypeName)
}

// Registry holds all registered docdef versions. Resolution is a pure
// function of registry contents at call time; nothing is cached, so the
// "latest accepted" answer can never go stale relative to the registry.
type Registry struct {
	byID   map[string]*DocDef
	byType map[string][]*DocDef
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*DocDef),
		byType: make(map[string][]*DocDef),
	}
}

// Add registers a docdef version.
func (r *Registry) Add(d *DocDef) error {
	if d == nil {
		return ErrNilDocDef
	}
	if _, exists := r.byID[d.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, d.ID())
	}
	r.byID[d.ID()] = d
	r.byType[d.TypeName()] = append(r.byType[d.TypeName()], d)
	return nil
}

// Get returns the docdef with the given full identifier.
func (r *Registry) Get(id string) (*DocDef, error) {
	d, ok := r.byID[id]
	if !ok {
		parts, err := ParseID(id)
		if err != nil {
			return nil, err
		}
		return nil, &NotFoundError{TypeName: parts.TypeName}
	}
	return d, nil
}

// Resolve selects, among docdefs whose type name matches and whose status
// is accepted, the one with the highest semantic version. There is no
// version negotiation: the match is exact and the answer is the newest
// accepted definition, nothing else.
func (r *Registry) Resolve(typeName string) (*DocDef, error) {
	var best *DocDef
	for _, d := range r.byType[typeName] {
		if d.Status() != StatusAccepted {
			continue
		}
		if best == nil || d.Version().GreaterThan(best.Version()) {
			best = d
		}
	}
	if best == nil {
		return nil, &NotFoundError{TypeName: typeName}
	}
	return best, nil
}

// TypeNames returns all type names with at least one registered version,
// sorted alphabetically.
func (r *Registry) TypeNames() []string {
	names := make([]string, 0, len(r.byType))
	for name := range r.byType {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all registered docdefs ordered by id.
func (r *Registry) List() []*DocDef {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*DocDef, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}
