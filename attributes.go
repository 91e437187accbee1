package typemeta

import (
	"hash/fnv"
	"maps"
	"reflect"
	"slices"
	"strconv"
)

// Attributes is the full set of declarative annotations attached to one
// struct field, parsed from its tag. The standard library only answers
// point lookups on tags, so enumeration uses the documented tag grammar.
type Attributes map[string]string

// AttributesOf parses the complete tag set of a field.
func AttributesOf(field reflect.StructField) Attributes {
	return ParseTag(field.Tag)
}

// ParseTag splits a struct tag into its key/value pairs. Malformed trailing
// content is dropped, mirroring how reflect.StructTag stops scanning.
func ParseTag(tag reflect.StructTag) Attributes {
	attrs := Attributes{}
	s := string(tag)
	for s != "" {
		i := 0
		for i < len(s) && s[i] == ' ' {
			i++
		}
		s = s[i:]
		if s == "" {
			break
		}

		i = 0
		for i < len(s) && s[i] > ' ' && s[i] != ':' && s[i] != '"' && s[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(s) || s[i] != ':' || s[i+1] != '"' {
			break
		}
		key := s[:i]
		s = s[i+1:]

		i = 1
		for i < len(s) && s[i] != '"' {
			if s[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(s) {
			break
		}
		quoted := s[:i+1]
		s = s[i+1:]

		value, err := strconv.Unquote(quoted)
		if err != nil {
			break
		}
		attrs[key] = value
	}
	return attrs
}

// Equal is a function that checks if two attribute sets are equal.
// It compares the keys and values of both sets.
func (a Attributes) Equal(o Attributes) bool {
	return maps.Equal(a, o)
}

// Clone creates a copy of the attribute set.
func (a Attributes) Clone() Attributes {
	return maps.Clone(a)
}

// CanonicalHashV1 is a canonicalization of an attribute set that can be used
// as a stable member fingerprint. It is backed by an FNV hash stabilized
// through the order of the keys as defined by slices.Sorted. The hash is not
// cryptographically secure and should not be used for security purposes.
func (a Attributes) CanonicalHashV1() uint64 {
	h := fnv.New64()
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		// fnv64 can never fail to write
		_, _ = h.Write([]byte(key + a[key]))
	}
	return h.Sum64()
}

// AttributeMatcherFn is a function that takes two attribute sets and returns
// whether they match.
type AttributeMatcherFn func(Attributes, Attributes) bool

// AttributeMatcher matches a candidate attribute set against a base set.
type AttributeMatcher interface {
	Match(Attributes, Attributes) bool
}

// Match delegates to the AttributeMatcherFn.
func (f AttributeMatcherFn) Match(a, b Attributes) bool {
	return f(a, b)
}

// AttributesEqual is an equality AttributeMatcherFn. See Attributes.Equal.
func AttributesEqual(a, b Attributes) bool {
	return a.Equal(b)
}

// AttributesSubset checks if the attribute set sub is a subset of base: every
// key of sub is present in base with the same value. An empty sub matches any
// base.
func AttributesSubset(sub, base Attributes) bool {
	if len(sub) > len(base) {
		return false
	}
	for key, value := range sub {
		baseValue, found := base[key]
		if !found || baseValue != value {
			return false
		}
	}
	return true
}

// Match returns true if the attribute set a matches o using the provided
// matchers. Without explicit matchers it falls back to equality. The sets
// are cloned before matching so matchers may modify them in place.
func (a Attributes) Match(o Attributes, matchers ...AttributeMatcher) bool {
	if len(matchers) == 0 {
		return a.Match(o, AttributeMatcherFn(AttributesEqual))
	}

	ca, co := maps.Clone(a), maps.Clone(o)
	for _, matcher := range matchers {
		if matcher.Match(ca, co) {
			return true
		}
	}

	return false
}

// MatchAll is a convenience function that creates an AndMatcher matching all
// provided matchers.
func MatchAll(matchers ...AttributeMatcher) AttributeMatcher {
	return &AndMatcher{Matchers: matchers}
}

// AndMatcher is a matcher that matches if all provided matchers match.
type AndMatcher struct {
	Matchers []AttributeMatcher
}

// Match returns true if all matchers match.
func (m *AndMatcher) Match(a, o Attributes) bool {
	for _, matcher := range m.Matchers {
		if !matcher.Match(a, o) {
			return false
		}
	}
	return true
}

// FieldsMatching returns the exported fields of t whose attribute set
// contains filter as a subset. Pointer types are dereferenced; non-struct
// types have no fields and yield nil.
func FieldsMatching(t reflect.Type, filter Attributes) []reflect.StructField {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var fields []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if AttributesSubset(filter, AttributesOf(field)) {
			fields = append(fields, field)
		}
	}
	return fields
}
