package typemeta

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// constructor is one registered factory function for a Go type, together
// with its introspected parameter-type sequence.
type constructor struct {
	fn     reflect.Value
	params []reflect.Type
	// returnsErr is set when the factory has a trailing error result.
	returnsErr bool
}

// matches reports whether the constructor's formal parameter types equal,
// element-wise, the given argument types. Matching is exact: a type that is
// merely assignable to a parameter (a concrete type where an interface
// parameter exists, or vice versa) does not match.
func (c constructor) matches(args []reflect.Type) bool {
	if len(c.params) != len(args) {
		return false
	}
	for i, p := range c.params {
		if args[i] != p {
			return false
		}
	}
	return true
}

// MissingConstructorError is returned by Construct when no registered
// constructor matches the requested parameter-type sequence.
type MissingConstructorError struct {
	// TypeName is the name of the type that was requested.
	TypeName string
	// Params are the rendered names of the requested parameter types, in order.
	Params []string
}

func (e *MissingConstructorError) Error() string {
	return fmt.Sprintf("Constructor '%s(%s)' could not be found!", e.TypeName, strings.Join(e.Params, ", "))
}

// RegisterConstructor adds a factory function to the scheme. The function
// may have any number of parameters and must return the constructed value,
// optionally followed by an error. The produced Go type is taken from the
// first result; one type can carry several constructors as long as their
// parameter-type sequences differ.
func (r *Scheme) RegisterConstructor(fn any) error {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %T", fn)
	}
	if t.IsVariadic() {
		return fmt.Errorf("variadic constructors are not supported")
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errType {
			return fmt.Errorf("second result of a constructor must be error, got %s", t.Out(1))
		}
	default:
		return fmt.Errorf("constructor must return the constructed value and an optional error")
	}

	produced := t.Out(0)
	params := make([]reflect.Type, t.NumIn())
	for i := range params {
		params[i] = t.In(i)
	}
	ctor := constructor{fn: v, params: params, returnsErr: t.NumOut() == 2}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.constructors[produced] {
		if existing.matches(params) {
			return fmt.Errorf("constructor %s is already registered", renderSignature(produced, params))
		}
	}
	r.constructors[produced] = append(r.constructors[produced], ctor)
	if r.logger != nil {
		r.logger.Debug("registered constructor", slog.String("signature", renderSignature(produced, params)))
	}
	return nil
}

func (r *Scheme) MustRegisterConstructor(fn any) {
	if err := r.RegisterConstructor(fn); err != nil {
		panic(err)
	}
}

// Construct locates the constructor of typ whose parameter-type sequence
// exactly equals the dynamic types of args, and invokes it. When no
// constructor matches it returns a *MissingConstructorError. An error
// returned by the matched constructor itself propagates unchanged.
//
// A nil interface argument carries no dynamic type and never matches.
func (r *Scheme) Construct(typ reflect.Type, args ...any) (any, error) {
	obj, ok, err := r.construct(typ, args)
	if !ok {
		return nil, missingConstructor(typ, args)
	}
	return obj, err
}

// TryConstruct is the non-failing variant of Construct: when no constructor
// matches it returns nil without an error. An error returned by a matched
// constructor still propagates unchanged.
func (r *Scheme) TryConstruct(typ reflect.Type, args ...any) (any, error) {
	obj, ok, err := r.construct(typ, args)
	if !ok {
		return nil, nil
	}
	return obj, err
}

// ConstructAs is a typed convenience over Scheme.Construct for the Go type T.
func ConstructAs[T any](r *Scheme, args ...any) (T, error) {
	obj, err := r.Construct(reflect.TypeOf((*T)(nil)).Elem(), args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return obj.(T), nil
}

// construct performs the lookup and invocation shared by both tiers. The
// returned bool reports whether a constructor matched at all.
func (r *Scheme) construct(typ reflect.Type, args []any) (any, bool, error) {
	want := make([]reflect.Type, len(args))
	for i, arg := range args {
		// a nil interface has no dynamic type, leave the slot nil so that
		// no parameter can equal it
		want[i] = reflect.TypeOf(arg)
	}

	r.mu.RLock()
	ctors := r.constructors[typ]
	var matched *constructor
	for i := range ctors {
		if ctors[i].matches(want) {
			matched = &ctors[i]
			break
		}
	}
	r.mu.RUnlock()

	if matched == nil {
		return nil, false, nil
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = reflect.ValueOf(arg)
	}
	out := matched.fn.Call(in)
	if matched.returnsErr && !out[1].IsNil() {
		return nil, true, out[1].Interface().(error)
	}
	return out[0].Interface(), true, nil
}

func missingConstructor(typ reflect.Type, args []any) *MissingConstructorError {
	params := make([]string, len(args))
	for i, arg := range args {
		params[i] = typeName(reflect.TypeOf(arg))
	}
	return &MissingConstructorError{TypeName: typeName(typ), Params: params}
}

// typeName renders a reflect.Type for signatures and error messages. Named
// types render unqualified, everything else falls back to the full string.
func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

func renderSignature(typ reflect.Type, params []reflect.Type) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = typeName(p)
	}
	return NewUnversionedType(typeName(typ)).Signature(names...)
}
