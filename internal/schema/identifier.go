package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Identifier errors
var (
	ErrInvalidIdentifier = errors.New("invalid schema identifier format")
)

// IDParts holds the parsed components of a schema identifier.
type IDParts struct {
	Name  string
	Major int
}

// ParseID parses a schema identifier into components.
// Format: schema:<Name>V<major>
// Example: schema:EpicV1
func ParseID(id string) (*IDParts, error) {
	rest, ok := strings.CutPrefix(id, "schema:")
	if !ok || rest == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}

	// The version marker is the last "V" followed by digits only.
	idx := strings.LastIndex(rest, "V")
	if idx <= 0 || idx == len(rest)-1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}

	name := rest[:idx]
	major, err := strconv.Atoi(rest[idx+1:])
	if err != nil || major < 1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}

	return &IDParts{Name: name, Major: major}, nil
}

// BuildID constructs a valid schema identifier from components.
func BuildID(name string, major int) string {
	return fmt.Sprintf("schema:%sV%d", name, major)
}
