// Package document provides the pure domain layer for persisted documents
// with no infrastructure dependencies.
//
// It defines the Document entity with encapsulated state and behavior, the
// Repository interface for persistence abstraction, the lifecycle state
// machine, and domain-specific error types. The schema_bundle_hash carried
// by a document is captured once at generation time and never recomputed
// implicitly; it is the sole key used to select which exact schema
// definitions apply when re-rendering.
package document

import "time"

// Document represents a persisted record produced by the composition
// engine. All fields are unexported to enforce encapsulation; use the
// constructor and getter methods to access data.
type Document struct {
	id         string
	docType    string
	title      string
	content    map[string]any
	bundleHash string
	state      State
	dependsOn  []string

	createdAt time.Time
	updatedAt time.Time
}

// New creates a new Document in the missing state with no bundle hash.
// The hash is stamped when generation starts.
func New(id, docType, title string, content map[string]any) *Document {
	now := time.Now()
	return &Document{
		id:        id,
		docType:   docType,
		title:     title,
		content:   content,
		state:     StateMissing,
		createdAt: now,
		updatedAt: now,
	}
}

// Reconstitute creates a Document from existing data, typically when
// hydrating from the database. All fields are provided explicitly.
func Reconstitute(
	id, docType, title string,
	content map[string]any,
	bundleHash string,
	state State,
	dependsOn []string,
	createdAt, updatedAt time.Time,
) *Document {
	return &Document{
		id:         id,
		docType:    docType,
		title:      title,
		content:    content,
		bundleHash: bundleHash,
		state:      state,
		dependsOn:  dependsOn,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the document's persisted identifier.
func (d *Document) ID() string {
	return d.id
}

// Type returns the document-type name used to resolve its docdef.
func (d *Document) Type() string {
	return d.docType
}

// Title returns the document's display title.
func (d *Document) Title() string {
	return d.title
}

// Content returns the canonical content data. The core treats it as
// opaque beyond pointer traversal.
func (d *Document) Content() map[string]any {
	return d.content
}

// BundleHash returns the schema bundle hash stamped at generation time.
// Empty for legacy documents created before hash-pinning existed.
func (d *Document) BundleHash() string {
	return d.bundleHash
}

// State returns the current lifecycle state.
func (d *Document) State() State {
	return d.state
}

// DependsOn returns the ids of documents this document declares as
// upstream dependencies.
func (d *Document) DependsOn() []string {
	return d.dependsOn
}

// CreatedAt returns when this document was created.
func (d *Document) CreatedAt() time.Time {
	return d.createdAt
}

// UpdatedAt returns when this document was last updated.
func (d *Document) UpdatedAt() time.Time {
	return d.updatedAt
}

// SetTitle sets the document's display title.
func (d *Document) SetTitle(title string) {
	d.title = title
	d.updatedAt = time.Now()
}

// SetContent replaces the canonical content data.
func (d *Document) SetContent(content map[string]any) {
	d.content = content
	d.updatedAt = time.Now()
}

// StampBundleHash pins the schema bundle hash. Called once when
// generation starts; re-stamping requires regeneration.
func (d *Document) StampBundleHash(hash string) {
	d.bundleHash = hash
	d.updatedAt = time.Now()
}

// SetDependsOn replaces the declared dependency set.
func (d *Document) SetDependsOn(ids []string) {
	d.dependsOn = ids
	d.updatedAt = time.Now()
}

// SetState forces the state without transition validation. Intended for
// hydration and tests; runtime transitions go through the lifecycle
// manager's compare-and-swap path.
func (d *Document) SetState(state State) {
	d.state = state
	d.updatedAt = time.Now()
}
