package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FieldType is the closed set of editable field kinds a template can declare.
type FieldType string

const (
	FieldText  FieldType = "text"
	FieldDate  FieldType = "date"
	FieldImage FieldType = "image"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldDate, FieldImage:
		return true
	}
	return false
}

// Field is one editable input of a template. Name doubles as the key in an
// invitation's custom data.
type Field struct {
	Name     string    `json:"name" yaml:"name"`
	Label    string    `json:"label" yaml:"label"`
	Type     FieldType `json:"type" yaml:"type"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
}

// Structure is the shape stored in templates.structure_json.
type Structure struct {
	Fields []Field `json:"fields" yaml:"fields"`
}

var ErrMalformedSchema = errors.New("malformed template schema")

// ParseStructure decodes and validates raw structure JSON. Every failure wraps
// ErrMalformedSchema.
func ParseStructure(raw []byte) (Structure, error) {
	var s Structure
	switch strings.TrimSpace(string(raw)) {
	case "", "null":
		return s, fmt.Errorf("%w: empty document", ErrMalformedSchema)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Structure{}, fmt.Errorf("%w: %v", ErrMalformedSchema, err)
	}
	if err := s.Validate(); err != nil {
		return Structure{}, err
	}
	return s, nil
}

// Validate checks field names are present and unique and types are known.
func (s Structure) Validate() error {
	seen := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: field %d has no name", ErrMalformedSchema, i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field name %q", ErrMalformedSchema, f.Name)
		}
		seen[f.Name] = struct{}{}
		if !f.Type.Valid() {
			return fmt.Errorf("%w: field %q has unknown type %q", ErrMalformedSchema, f.Name, f.Type)
		}
	}
	return nil
}

func (s Structure) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
