// Package render builds ephemeral render models: the ordered, typed block
// trees that the binding resolver turns into markup. Nothing in this
// package is persisted.
package render

import (
	"fmt"
	"net/url"
	"sort"
)

// Mode distinguishes renders of persisted documents from unsaved previews.
type Mode string

const (
	ModeStored  Mode = "stored"
	ModePreview Mode = "preview"
)

// DetailRefKey is the fixed key a navigation reference is attached under
// in a summary block's data payload.
const DetailRefKey = "detail_ref"

// DetailRef is a structured navigation pointer from a summary view to its
// corresponding detail view.
type DetailRef struct {
	DocumentType string         `json:"document_type"`
	Params       map[string]any `json:"params"`
}

// URL renders the frozen navigation contract consumed by the presentation
// layer: /view/{document_type}?{params as sorted query string}.
func (r DetailRef) URL() string {
	if len(r.Params) == 0 {
		return "/view/" + r.DocumentType
	}
	keys := make([]string, 0, len(r.Params))
	for k := range r.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := url.Values{}
	for _, k := range keys {
		q.Set(k, fmt.Sprintf("%v", r.Params[k]))
	}
	return "/view/" + r.DocumentType + "?" + q.Encode()
}

// Block is the smallest renderable unit: a schema-typed data payload plus
// display context. Its key is stable and reproducible for identical inputs.
type Block struct {
	Type    string         `json:"type"` // schema id
	Key     string         `json:"key"`  // <section_id>:<index>
	Data    map[string]any `json:"data"`
	Context map[string]any `json:"context,omitempty"`
}

// Section holds an ordered list of blocks. Sections with zero blocks are
// never emitted: "no data" is expressed by absence.
type Section struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Order  int     `json:"order"`
	Blocks []Block `json:"blocks"`
}

// RenderModel is the envelope produced by a build: document identity, the
// pinned schema bundle hash, and the monotonically ordered section list.
type RenderModel struct {
	DocumentID       string    `json:"document_id"`
	DocumentType     string    `json:"document_type"`
	Title            string    `json:"title"`
	SchemaBundleHash string    `json:"schema_bundle_hash"`
	Sections         []Section `json:"sections"`
	BlockCount       int       `json:"block_count"`
}
