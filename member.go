package typemeta

import (
	"reflect"
	"strconv"
)

const (
	// TagBrowsable hides a field from display surfaces when set to "false".
	// A missing tag means the field is browsable.
	TagBrowsable = "browsable"
	// TagDefault declares a field's default value as literal tag text.
	TagDefault = "default"
)

// IsBrowsable reports whether the field should be shown on display surfaces.
// Fields are browsable unless they explicitly declare otherwise; a tag value
// that does not parse as a bool counts as browsable.
func IsBrowsable(field reflect.StructField) bool {
	val, ok := field.Tag.Lookup(TagBrowsable)
	if !ok {
		return true
	}
	browsable, err := strconv.ParseBool(val)
	if err != nil {
		return true
	}
	return browsable
}

// IsBrowsableNamed resolves the first member of t with the given name and
// reports its browsability. Fields are checked before methods; methods carry
// no tags and are always browsable. A name that resolves to no member at all
// reports false.
func IsBrowsableNamed(t reflect.Type, name string) bool {
	elem := t
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() == reflect.Struct {
		if field, ok := elem.FieldByName(name); ok {
			return IsBrowsable(field)
		}
	}
	if _, ok := t.MethodByName(name); ok {
		return true
	}
	if t.Kind() != reflect.Pointer {
		if _, ok := reflect.PointerTo(t).MethodByName(name); ok {
			return true
		}
	}
	return false
}

// HasAttribute reports whether the field carries a tag with the given key.
// The tag's value is not inspected.
func HasAttribute(field reflect.StructField, key string) bool {
	_, ok := field.Tag.Lookup(key)
	return ok
}

// DefaultValue returns the field's declared default when one is present,
// otherwise the zero value of the field's type. A declared default is the
// tag text verbatim; typed coercion is the concern of ApplyDefaults.
func DefaultValue(field reflect.StructField) any {
	if val, ok := field.Tag.Lookup(TagDefault); ok {
		return val
	}
	return reflect.Zero(field.Type).Interface()
}
