package typemeta

import (
	"fmt"
	"reflect"

	"sigs.k8s.io/yaml"
)

// ApplyDefaults fills the zero-valued fields of a struct from their default
// tags. Tag text is unmarshalled into the field's type, so "42" defaults an
// int field and "true" a bool field. Fields that already carry a non-zero
// value are left alone; nested structs without a default tag of their own
// are defaulted recursively.
func ApplyDefaults(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("defaults require a non-nil struct pointer, got %T", v)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("defaults require a struct, got %s", rv.Kind())
	}
	return applyDefaults(rv)
}

func applyDefaults(rv reflect.Value) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		value := rv.Field(i)

		text, ok := field.Tag.Lookup(TagDefault)
		if !ok {
			if value.Kind() == reflect.Struct {
				if err := applyDefaults(value); err != nil {
					return err
				}
			}
			continue
		}
		if !value.IsZero() {
			continue
		}

		if err := yaml.Unmarshal([]byte(text), value.Addr().Interface()); err != nil {
			return fmt.Errorf("invalid default %q for field %s.%s: %w", text, t.Name(), field.Name, err)
		}
	}
	return nil
}
