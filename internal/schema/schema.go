// Package schema provides the read-only registry of immutable, versioned
// structural schemas. A schema is never mutated in place; a breaking change
// produces a new identifier with a bumped major version.
package schema

// Field describes a single field in a schema body.
type Field struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Required bool   `yaml:"required" json:"required"`
}

// Schema is an immutable structural definition identified by a stable id
// of the form "schema:<Name>V<major>". Additional properties are always
// forbidden; the field list is exhaustive.
type Schema struct {
	id     string
	name   string
	major  int
	fields []Field
}

// New creates a schema from its identifier and field list.
// The identifier must be well formed.
func New(id string, fields []Field) (*Schema, error) {
	parts, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return &Schema{
		id:     id,
		name:   parts.Name,
		major:  parts.Major,
		fields: fields,
	}, nil
}

// ID returns the stable schema identifier.
func (s *Schema) ID() string {
	return s.id
}

// Name returns the schema's type name (the <Name> identifier component).
func (s *Schema) Name() string {
	return s.name
}

// Major returns the schema's major version.
func (s *Schema) Major() int {
	return s.major
}

// Fields returns the schema's field list in declaration order.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Field returns the named field, if present.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
