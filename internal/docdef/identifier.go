package docdef

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Identifier errors
var (
	ErrInvalidIdentifier = errors.New("invalid docdef identifier format")
)

// IDParts holds the parsed components of a docdef identifier.
type IDParts struct {
	TypeName string
	Version  *semver.Version
}

// ParseID parses a docdef identifier into components.
// Format: docdef:<TypeName>:<semver>
// Example: docdef:EpicSummaryView:1.0.0
func ParseID(id string) (*IDParts, error) {
	rest, ok := strings.CutPrefix(id, "docdef:")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	typeName, ver, ok := strings.Cut(rest, ":")
	if !ok || typeName == "" || ver == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	v, err := semver.StrictNewVersion(ver)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, id, err)
	}
	return &IDParts{TypeName: typeName, Version: v}, nil
}

// BuildID constructs a valid docdef identifier from components.
func BuildID(typeName, version string) string {
	return fmt.Sprintf("docdef:%s:%s", typeName, version)
}
