// Package fields holds the academic field registry: subfields, keywords,
// podcast voices and known venues for each of the five fields.
package fields

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

//go:embed fields.yaml
var defaultRegistry []byte

// Venue is a known publication outlet for a field.
type Venue struct {
	Name string         `yaml:"name"`
	Type core.VenueType `yaml:"type"`
}

// Field describes one academic field.
type Field struct {
	ID        core.FieldID `yaml:"id"`
	Name      string       `yaml:"name"`
	Voice     string       `yaml:"voice"`
	Subfields []string     `yaml:"subfields"`
	Keywords  []string     `yaml:"keywords"`
	Venues    []Venue      `yaml:"venues"`
}

// HasSubfield reports whether s is one of the field's subfields (case-insensitive).
func (f Field) HasSubfield(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sub := range f.Subfields {
		if strings.ToLower(sub) == s {
			return true
		}
	}
	return false
}

// VenueType looks up the type of a known venue.
func (f Field) VenueType(name string) (core.VenueType, bool) {
	for _, v := range f.Venues {
		if strings.EqualFold(v.Name, name) {
			return v.Type, true
		}
	}
	return "", false
}

// Registry maps every enumerated field to its description.
type Registry struct {
	fields map[core.FieldID]Field
}

type registryFile struct {
	Fields []Field `yaml:"fields"`
}

// Default loads the embedded registry. It panics only if the embedded file is
// broken, which is a build defect.
func Default() *Registry {
	r, err := Parse(defaultRegistry)
	if err != nil {
		panic(fmt.Sprintf("embedded field registry is invalid: %v", err))
	}
	return r
}

// Parse decodes and validates a registry document. Every enumerated field must
// be present; unknown ids are rejected.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse field registry: %w", err)
	}

	r := &Registry{fields: make(map[core.FieldID]Field, len(file.Fields))}
	for _, f := range file.Fields {
		if _, err := core.ParseField(string(f.ID)); err != nil {
			return nil, err
		}
		if _, dup := r.fields[f.ID]; dup {
			return nil, &core.ConfigurationError{Field: string(f.ID), Message: "field defined twice"}
		}
		if err := validateField(f); err != nil {
			return nil, err
		}
		r.fields[f.ID] = f
	}

	for _, id := range core.AllFields() {
		if _, ok := r.fields[id]; !ok {
			return nil, &core.ConfigurationError{Field: string(id), Message: "field has no registry mapping"}
		}
	}

	return r, nil
}

func validateField(f Field) error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return &core.ConfigurationError{Field: string(f.ID), Message: "missing display name"}
	case strings.TrimSpace(f.Voice) == "":
		return &core.ConfigurationError{Field: string(f.ID), Message: "missing voice"}
	case len(f.Subfields) < 2:
		return &core.ConfigurationError{Field: string(f.ID), Message: "at least two subfields are required"}
	case len(f.Keywords) == 0:
		return &core.ConfigurationError{Field: string(f.ID), Message: "at least one keyword is required"}
	}
	for _, v := range f.Venues {
		if !v.Type.Valid() {
			return &core.ConfigurationError{Field: string(f.ID), Message: fmt.Sprintf("venue %q has invalid type %q", v.Name, v.Type)}
		}
	}
	return nil
}

// Get returns the field description or a ConfigurationError.
func (r *Registry) Get(id core.FieldID) (Field, error) {
	f, ok := r.fields[id]
	if !ok {
		return Field{}, &core.ConfigurationError{Field: "field", Message: fmt.Sprintf("unmapped field %q", id)}
	}
	return f, nil
}

// All returns the fields in canonical order.
func (r *Registry) All() []Field {
	out := make([]Field, 0, len(r.fields))
	for _, id := range core.AllFields() {
		out = append(out, r.fields[id])
	}
	return out
}
