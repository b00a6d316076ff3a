// Package bundle computes deterministic content hashes over sets of
// structural schemas and resolves historical schema sets by hash.
//
// The bundle hash is the load-bearing invariant of the rendering engine:
// it is stamped onto a document at generation time and is the sole key
// used to select which exact schema definitions apply when that document
// is re-rendered, even after schemas and docdefs have advanced.
package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/foliohq/folio/internal/schema"
)

// HashPrefix tags the digest algorithm used for bundle hashes.
const HashPrefix = "sha256:"

// SchemaSource provides schema bodies by id. Satisfied by *schema.Registry
// and by historical snapshots.
type SchemaSource interface {
	Get(id string) (*schema.Schema, error)
}

// canonicalField mirrors schema.Field with a fixed key order for hashing.
type canonicalField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// canonicalSchema is the hashing form of a schema: id plus fields sorted
// by name, additionalProperties always false.
type canonicalSchema struct {
	ID                   string           `json:"id"`
	Fields               []canonicalField `json:"fields"`
	AdditionalProperties bool             `json:"additionalProperties"`
}

// ComputeHash produces the deterministic content hash for the given schema
// id set. Duplicate ids collapse to one entry and input order is
// insignificant: identical sets always yield identical output.
func ComputeHash(src SchemaSource, ids []string) (string, error) {
	sorted := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	canon := make([]canonicalSchema, 0, len(sorted))
	for _, id := range sorted {
		s, err := src.Get(id)
		if err != nil {
			return "", fmt.Errorf("fetch schema %s: %w", id, err)
		}
		canon = append(canon, canonicalize(s))
	}

	// encoding/json writes struct fields in declaration order with no
	// insignificant whitespace, so the serialization is stable.
	payload, err := json.Marshal(canon)
	if err != nil {
		return "", fmt.Errorf("serialize schema bundle: %w", err)
	}

	sum := sha256.Sum256(payload)
	return HashPrefix + hex.EncodeToString(sum[:]), nil
}

func canonicalize(s *schema.Schema) canonicalSchema {
	fields := make([]canonicalField, 0, len(s.Fields()))
	for _, f := range s.Fields() {
		fields = append(fields, canonicalField{Name: f.Name, Type: f.Type, Required: f.Required})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return canonicalSchema{
		ID:                   s.ID(),
		Fields:               fields,
		AdditionalProperties: false,
	}
}
