package typemeta

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type TestType struct {
	Type  Type   `json:"type"`
	Value string `json:"value"`
}

func (t *TestType) GetType() Type {
	return t.Type
}

func (t *TestType) SetType(typ Type) {
	t.Type = typ
}

func TestScheme_RegisterAndNewObject(t *testing.T) {
	r := require.New(t)
	typ := NewVersionedType("test", "v1")
	scheme := NewScheme()
	scheme.MustRegisterWithAlias(&TestType{}, typ)

	r.True(scheme.IsRegistered(typ))
	r.False(scheme.IsRegistered(NewVersionedType("test", "v2")))

	obj, err := scheme.NewObject(typ)
	r.NoError(err)
	r.IsType(&TestType{}, obj)

	_, err = scheme.NewObject(NewVersionedType("unknown", "v1"))
	r.Error(err)

	r.Panics(func() {
		scheme.MustRegisterWithAlias(&TestType{}, typ)
	})
}

func TestScheme_MustRegister(t *testing.T) {
	r := require.New(t)
	scheme := NewScheme()
	scheme.MustRegister(&TestType{}, "v1")

	r.True(scheme.IsRegistered(NewVersionedType("TestType", "v1")))
	r.Equal(NewVersionedType("TestType", "v1"), scheme.MustTypeForPrototype(&TestType{}))

	r.Panics(func() {
		scheme.MustRegister(TestType{}, "v1")
	})
}

func TestScheme_NewObject_AllowUnknown(t *testing.T) {
	r := require.New(t)
	typ := NewVersionedType("unknown", "v1")

	strict := NewScheme()
	_, err := strict.NewObject(typ)
	r.Error(err)

	lenient := NewScheme(WithAllowUnknown())
	obj, err := lenient.NewObject(typ)
	r.NoError(err)
	r.IsType(&Raw{}, obj)
}

func TestScheme_Decode(t *testing.T) {
	r := require.New(t)
	typ := NewVersionedType("test", "v1")
	scheme := NewScheme()
	scheme.MustRegisterWithAlias(&TestType{}, typ)

	data := []byte(`{"type": "test/v1", "value": "foo"}`)

	parsed := &TestType{}
	r.NoError(scheme.Decode(bytes.NewReader(data), parsed))
	r.Equal("foo", parsed.Value)
	r.Equal(typ, parsed.Type)

	// unregistered targets cannot be decoded unless unknown types are allowed
	unknown := NewScheme()
	r.Error(unknown.Decode(bytes.NewReader(data), &TestType{}))

	lenient := NewScheme(WithAllowUnknown())
	raw := &Raw{}
	r.NoError(lenient.Decode(bytes.NewReader(data), raw))
	r.Equal(typ, raw.Type)
	r.JSONEq(string(data), string(raw.Data))
}

func TestScheme_Convert(t *testing.T) {
	r := require.New(t)
	typ := NewVersionedType("test", "v1")
	scheme := NewScheme()
	scheme.MustRegisterWithAlias(&TestType{}, typ)

	raw := &Raw{Type: typ, Data: []byte(`{"type": "test/v1", "value": "foo"}`)}

	// Raw → Typed
	parsed := &TestType{}
	r.NoError(scheme.Convert(raw, parsed))
	r.Equal("foo", parsed.Value)
	r.Equal(typ, parsed.Type)

	// Typed → Raw
	target := &Raw{}
	r.NoError(scheme.Convert(&TestType{Type: typ, Value: "bar"}, target))
	r.Equal(typ, target.Type)
	r.JSONEq(`{"type": "test/v1", "value": "bar"}`, string(target.Data))

	// Raw → Raw
	target2 := &Raw{}
	r.NoError(scheme.Convert(raw, target2))
	r.Equal(raw.Type, target2.Type)
	r.Equal(raw.Data, target2.Data)

	// Typed → Typed
	to := &TestType{}
	r.NoError(scheme.Convert(&TestType{Type: typ, Value: "bar"}, to))
	r.Equal("bar", to.Value)
}

func TestScheme_Convert_Errors(t *testing.T) {
	r := require.New(t)
	typ := NewVersionedType("test", "v1")
	scheme := NewScheme()
	scheme.MustRegisterWithAlias(&TestType{}, typ)

	other := struct{ Value string }{}
	r.Error(scheme.Convert(&TestType{Type: typ, Value: "x"}, &other))

	// nil target
	r.Error(scheme.Convert(&TestType{Type: typ, Value: "x"}, nil))

	// raw into unregistered target
	raw := &Raw{Type: typ, Data: []byte(`{"type": "test/v1", "value": "foo"}`)}
	unknown := NewScheme()
	r.Error(unknown.Convert(raw, &TestType{}))

	// typed into raw without a Type field cannot be converted
	r.Error(scheme.Convert(&struct{ Value string }{Value: "x"}, &Raw{}))
}

func TestScheme_Clone(t *testing.T) {
	r := require.New(t)
	typ := NewVersionedType("test", "v1")
	scheme := NewScheme(WithAllowUnknown())
	scheme.MustRegisterWithAlias(&TestType{}, typ)

	clone := scheme.Clone()
	r.True(clone.IsRegistered(typ))

	obj, err := clone.NewObject(NewVersionedType("unknown", "v1"))
	r.NoError(err)
	r.IsType(&Raw{}, obj)

	// registrations on the clone do not leak back
	clone.MustRegisterWithAlias(&TestType{}, NewVersionedType("test", "v2"))
	r.False(scheme.IsRegistered(NewVersionedType("test", "v2")))
}

func TestGetTypeFromAny(t *testing.T) {
	r := require.New(t)
	typ := NewVersionedType("test", "v1")

	got, err := GetTypeFromAny(&TestType{Type: typ})
	r.NoError(err)
	r.Equal(typ, got)

	_, err = GetTypeFromAny(42)
	r.Error(err)

	_, err = GetTypeFromAny(struct{ Value string }{})
	r.Error(err)

	_, err = GetTypeFromAny(struct{ Type string }{Type: "test/v1"})
	r.Error(err)
}
