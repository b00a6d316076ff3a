package render

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// previewIDLength is the fixed truncation length for preview document ids.
const previewIDLength = 16

// PreviewID derives the document identity for an unsaved preview render:
// sha256(document_type + canonicalized_params) truncated to 16 hex chars.
// Canonicalization sorts parameter keys and stringifies values, so the id
// is cache-stable without requiring persistence.
func PreviewID(documentType string, params map[string]any) string {
	canonical := canonicalizeParams(params)
	sum := sha256.Sum256([]byte(documentType + canonical))
	return hex.EncodeToString(sum[:])[:previewIDLength]
}

// canonicalizeParams produces a stable serialization of the parameter map.
// encoding/json writes map keys in sorted order, which provides the
// required key ordering.
func canonicalizeParams(params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}
	stringified := make(map[string]string, len(params))
	for k, v := range params {
		stringified[k] = stringifyValue(v)
	}
	b, err := json.Marshal(stringified)
	if err != nil {
		// Map of strings cannot fail to marshal; keep the id total anyway.
		return "{}"
	}
	return string(b)
}

func stringifyValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
