package bundle

import (
	"fmt"
	"sync"

	"github.com/foliohq/folio/internal/component"
	"github.com/foliohq/folio/internal/docdef"
	"github.com/foliohq/folio/internal/schema"
)

// HashMismatchError indicates a stored bundle hash references a historical
// schema set that is no longer resolvable. Rendering falls back to
// best-effort with a visible degradation banner; it never crashes.
type HashMismatchError struct {
	Hash string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("schema bundle %s is not resolvable", e.Hash)
}

// ComponentSet is the frozen component view captured with a snapshot. It
// serves the same lookups the live registry does, so a pinned render can
// build and bind blocks without touching current definitions.
type ComponentSet struct {
	byID     map[string]*component.Component
	bySchema map[string]*component.Component
}

func newComponentSet(comps []*component.Component) *ComponentSet {
	cs := &ComponentSet{
		byID:     make(map[string]*component.Component, len(comps)),
		bySchema: make(map[string]*component.Component, len(comps)),
	}
	for _, comp := range comps {
		cs.byID[comp.ID()] = comp
		// First component captured for a schema is its canonical renderer.
		if _, ok := cs.bySchema[comp.SchemaID()]; !ok {
			cs.bySchema[comp.SchemaID()] = comp
		}
	}
	return cs
}

// Get returns the frozen component by id.
func (cs *ComponentSet) Get(id string) (*component.Component, error) {
	comp, ok := cs.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", component.ErrNotFound, id)
	}
	return comp, nil
}

// GetBySchema returns the frozen canonical component for a schema id.
func (cs *ComponentSet) GetBySchema(schemaID string) (*component.Component, error) {
	comp, ok := cs.bySchema[schemaID]
	if !ok {
		return nil, fmt.Errorf("%w: no component for schema %s", component.ErrNotFound, schemaID)
	}
	return comp, nil
}

// Snapshot is a frozen schema set captured when a bundle hash was first
// computed, together with the docdef and components that were in force.
// It satisfies SchemaSource, and its composition lets re-renders resolve
// everything by hash instead of "latest".
type Snapshot struct {
	hash       string
	schemas    map[string]*schema.Schema
	ids        []string
	def        *docdef.DocDef
	components *ComponentSet
}

// Hash returns the bundle hash this snapshot was captured under.
func (s *Snapshot) Hash() string {
	return s.hash
}

// SchemaIDs returns the ids in the snapshot, in captured (sorted) order.
func (s *Snapshot) SchemaIDs() []string {
	return s.ids
}

// Get returns the frozen schema body for id.
func (s *Snapshot) Get(id string) (*schema.Schema, error) {
	sc, ok := s.schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrNotFound, id)
	}
	return sc, nil
}

// DocDef returns the document definition captured with the snapshot, or
// nil for snapshots registered from a bare schema id set.
func (s *Snapshot) DocDef() *docdef.DocDef {
	return s.def
}

// Components returns the frozen component set, or nil when no composition
// was captured.
func (s *Snapshot) Components() *ComponentSet {
	return s.components
}

// Index maps bundle hashes to the exact schema sets they were computed
// over. Documents created before hash-pinning existed carry no hash and
// resolve to nothing here; that is the one legitimate miss.
type Index struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewIndex creates an empty bundle index.
func NewIndex() *Index {
	return &Index{snapshots: make(map[string]*Snapshot)}
}

// Register computes the hash for the given schema id set and records the
// snapshot under it. Registering the same set twice is a no-op because the
// hash, and therefore the snapshot, is identical.
func (x *Index) Register(src SchemaSource, ids []string) (string, error) {
	hash, err := ComputeHash(src, ids)
	if err != nil {
		return "", err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, exists := x.snapshots[hash]; exists {
		return hash, nil
	}

	snap := &Snapshot{
		hash:    hash,
		schemas: make(map[string]*schema.Schema, len(ids)),
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		s, err := src.Get(id)
		if err != nil {
			return "", fmt.Errorf("snapshot schema %s: %w", id, err)
		}
		snap.schemas[id] = s
		snap.ids = append(snap.ids, id)
	}
	x.snapshots[hash] = snap
	return hash, nil
}

// RegisterComposition records a snapshot like Register, but also freezes
// the docdef and components it was computed for. The schema id set is
// derived from the components, so the hash is identical to registering
// those ids directly. Re-registering an existing hash refreshes the
// captured composition: the schema content is the same by construction,
// and the newest definition set over it is the one renders should pin.
func (x *Index) RegisterComposition(src SchemaSource, def *docdef.DocDef, comps []*component.Component) (string, error) {
	ids := make([]string, 0, len(comps))
	seen := make(map[string]bool, len(comps))
	for _, comp := range comps {
		if seen[comp.SchemaID()] {
			continue
		}
		seen[comp.SchemaID()] = true
		ids = append(ids, comp.SchemaID())
	}

	hash, err := ComputeHash(src, ids)
	if err != nil {
		return "", err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if prev, exists := x.snapshots[hash]; exists {
		// Replace rather than mutate: the snapshot pointer may be shared
		// with an index this one was absorbed from.
		x.snapshots[hash] = &Snapshot{
			hash:       prev.hash,
			schemas:    prev.schemas,
			ids:        prev.ids,
			def:        def,
			components: newComponentSet(comps),
		}
		return hash, nil
	}

	snap := &Snapshot{
		hash:       hash,
		schemas:    make(map[string]*schema.Schema, len(ids)),
		def:        def,
		components: newComponentSet(comps),
	}
	for _, id := range ids {
		s, err := src.Get(id)
		if err != nil {
			return "", fmt.Errorf("snapshot schema %s: %w", id, err)
		}
		snap.schemas[id] = s
		snap.ids = append(snap.ids, id)
	}
	x.snapshots[hash] = snap
	return hash, nil
}

// Resolve returns the frozen schema set behind a stored hash.
// Returns HashMismatchError if the historical set is unavailable.
func (x *Index) Resolve(hash string) (*Snapshot, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	snap, ok := x.snapshots[hash]
	if !ok {
		return nil, &HashMismatchError{Hash: hash}
	}
	return snap, nil
}

// Absorb copies snapshots from another index that this one does not hold.
// Used when a catalog reload replaces the index: hashes pinned by existing
// documents stay resolvable for the life of the process.
func (x *Index) Absorb(other *Index) {
	if other == nil {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	x.mu.Lock()
	defer x.mu.Unlock()
	for hash, snap := range other.snapshots {
		if _, exists := x.snapshots[hash]; !exists {
			x.snapshots[hash] = snap
		}
	}
}

// Has reports whether the index holds a snapshot for hash.
func (x *Index) Has(hash string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.snapshots[hash]
	return ok
}
