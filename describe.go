package typemeta

import (
	"fmt"
	"reflect"
)

// FieldDescription is the display-oriented view of one exported struct field.
type FieldDescription struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Browsable bool   `json:"browsable"`
	// Default is the declared default tag text, verbatim.
	Default    string     `json:"default,omitempty"`
	Attributes Attributes `json:"attributes,omitempty"`
	// Fingerprint is the canonical hash of the attribute set, stable across
	// processes. Zero when the field carries no attributes.
	Fingerprint uint64 `json:"fingerprint,omitempty"`
}

// TypeDescription lists the exported fields of a struct type together with
// their browsability, defaults and attributes.
type TypeDescription struct {
	Name   string             `json:"name"`
	Fields []FieldDescription `json:"fields"`
}

// DescribeType introspects a struct type (or pointer to one) into a
// TypeDescription. Non-struct types cannot be described.
func DescribeType(t reflect.Type) (*TypeDescription, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %s", t.Kind())
	}

	desc := &TypeDescription{Name: t.Name()}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		attrs := AttributesOf(field)
		fd := FieldDescription{
			Name:      field.Name,
			Type:      field.Type.String(),
			Browsable: IsBrowsable(field),
		}
		if def, ok := field.Tag.Lookup(TagDefault); ok {
			fd.Default = def
		}
		if len(attrs) > 0 {
			fd.Attributes = attrs
			fd.Fingerprint = attrs.CanonicalHashV1()
		}
		desc.Fields = append(desc.Fields, fd)
	}
	return desc, nil
}
