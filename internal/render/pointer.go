package render

import (
	"strconv"
	"strings"
)

// ResolvePointer resolves a slash-separated data pointer against canonical
// document data. An empty pointer or "/" addresses the root. Map segments
// index by key; numeric segments index into lists. Returns false when any
// segment is missing or the addressed value is nil.
func ResolvePointer(data any, ptr string) (any, bool) {
	if ptr == "" || ptr == "/" {
		return data, data != nil
	}

	current := data
	for _, seg := range strings.Split(strings.Trim(ptr, "/"), "/") {
		if seg == "" {
			continue
		}
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		default:
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// asList coerces a value into a list, supporting both a raw list and the
// {items: [...]} wrapper shape. Returns nil when the value is neither.
func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		if items, ok := t["items"].([]any); ok {
			return items
		}
	}
	return nil
}

// isEmptyValue reports whether resolved source data counts as "no data":
// nil, an empty map, or an empty list. Sections over empty data are
// expressed by absence, not by an empty container.
func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}
