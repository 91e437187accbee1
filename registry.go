package typemeta

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"reflect"
	"sync"

	"sigs.k8s.io/yaml"
)

// Scheme is a dynamic registry for constructible types. It maps registered
// Type names to prototypes and Go types to their constructor functions.
type Scheme struct {
	mu sync.RWMutex
	// allowUnknown allows unknown types to be created.
	// If NewObject cannot determine a match, this triggers the creation of
	// a Raw instead of failing.
	allowUnknown bool
	logger       *slog.Logger
	types        map[Type]any
	constructors map[reflect.Type][]constructor
}

// NewScheme creates a new registry.
func NewScheme(opts ...SchemeOption) *Scheme {
	reg := &Scheme{
		types:        make(map[Type]any),
		constructors: make(map[reflect.Type][]constructor),
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

type SchemeOption func(*Scheme)

// WithAllowUnknown allows unknown types to be created.
func WithAllowUnknown() SchemeOption {
	return func(registry *Scheme) {
		registry.allowUnknown = true
	}
}

// WithLogger attaches a logger for debug-level registration and fallback
// events. Without it the scheme is silent.
func WithLogger(logger *slog.Logger) SchemeOption {
	return func(registry *Scheme) {
		registry.logger = logger
	}
}

func (r *Scheme) Clone() *Scheme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewScheme()
	clone.allowUnknown = r.allowUnknown
	clone.logger = r.logger
	maps.Copy(clone.types, r.types)
	for typ, ctors := range r.constructors {
		clone.constructors[typ] = append([]constructor(nil), ctors...)
	}
	return clone
}

func (r *Scheme) RegisterWithAlias(prototype any, types ...Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, typ := range types {
		if _, exists := r.types[typ]; exists {
			return fmt.Errorf("type %q is already registered", typ)
		}
		r.types[typ] = prototype
		if r.logger != nil {
			r.logger.Debug("registered prototype", slog.String("type", typ.String()))
		}
	}
	return nil
}

// GetTypeFromAny uses reflection to extract the "Type" field from any struct.
func GetTypeFromAny(v any) (Type, error) {
	val := reflect.ValueOf(v)

	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return Type{}, fmt.Errorf("expected struct, got %s", val.Kind())
	}

	field := val.FieldByName("Type")
	if !field.IsValid() {
		return Type{}, fmt.Errorf("field 'Type' not found")
	}

	if field.Type() != reflect.TypeOf(Type{}) {
		return Type{}, fmt.Errorf("field 'Type' is not of expected Type struct")
	}

	return field.Interface().(Type), nil
}

func (r *Scheme) MustRegister(prototype any, version string) {
	t := reflect.TypeOf(prototype)
	if t.Kind() != reflect.Pointer {
		panic("All types must be pointers to structs.")
	}
	t = t.Elem()
	r.MustRegisterWithAlias(prototype, NewVersionedType(t.Name(), version))
}

func (r *Scheme) TypeForPrototype(prototype any) (Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for typ, proto := range r.types {
		// if there is an unversioned type registered, do not use it
		if !typ.HasVersion() {
			continue
		}
		if reflect.TypeOf(prototype).Elem() == reflect.TypeOf(proto).Elem() {
			return typ, nil
		}
	}

	return Type{}, fmt.Errorf("prototype not found in registry")
}

func (r *Scheme) MustTypeForPrototype(prototype any) Type {
	typ, err := r.TypeForPrototype(prototype)
	if err != nil {
		panic(err)
	}
	return typ
}

func (r *Scheme) IsRegistered(typ Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.types[typ]
	return exists
}

func (r *Scheme) MustRegisterWithAlias(prototype any, types ...Type) {
	if err := r.RegisterWithAlias(prototype, types...); err != nil {
		panic(err)
	}
}

// NewObject creates a new zero-valued instance of the type registered under
// typ. This is the parameterless construction path; constructor functions
// with parameters are resolved through Construct instead.
func (r *Scheme) NewObject(typ Type) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	proto, exists := r.types[typ]
	if exists {
		t := reflect.TypeOf(proto)
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		return reflect.New(t).Interface(), nil
	}

	if r.allowUnknown {
		if r.logger != nil {
			r.logger.Debug("falling back to raw object", slog.String("type", typ.String()))
		}
		return &Raw{}, nil
	}

	return nil, fmt.Errorf("unsupported type: %s", typ)
}

func (r *Scheme) Decode(data io.Reader, into any) error {
	if _, err := r.TypeForPrototype(into); err != nil && !r.allowUnknown {
		return fmt.Errorf("%T is not a valid registered type and cannot be decoded: %w", into, err)
	}
	bytes, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("could not read data: %w", err)
	}
	if err := yaml.Unmarshal(bytes, into); err != nil {
		return fmt.Errorf("failed to unmarshal raw: %w", err)
	}
	return nil
}

// Convert copies between representations of registered types: Raw into a
// typed object, a typed object into Raw, or same-type value copies.
func (r *Scheme) Convert(from any, into any) error {
	if raw, ok := from.(*Raw); ok {
		if target, ok := into.(*Raw); ok {
			target.Type = raw.Type
			target.Data = append([]byte(nil), raw.Data...)
			return nil
		}
		if _, err := r.TypeForPrototype(into); err != nil && !r.allowUnknown {
			return fmt.Errorf("%T is not a valid registered type and cannot be decoded: %w", into, err)
		}
		if err := yaml.Unmarshal(raw.Data, into); err != nil {
			return fmt.Errorf("failed to unmarshal raw: %w", err)
		}
		return nil
	}

	if target, ok := into.(*Raw); ok {
		fromType, err := GetTypeFromAny(from)
		if err != nil {
			return fmt.Errorf("could not get type from source object: %w", err)
		}
		if !r.IsRegistered(fromType) && !r.allowUnknown {
			return fmt.Errorf("cannot convert from unregistered type: %s", fromType)
		}
		data, err := json.Marshal(from)
		if err != nil {
			return fmt.Errorf("could not marshal source object: %w", err)
		}
		if err := target.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("could not fill raw target: %w", err)
		}
		return nil
	}

	intoValue := reflect.ValueOf(into)
	if intoValue.Kind() != reflect.Ptr || intoValue.IsNil() {
		return fmt.Errorf("into must be a non-nil pointer")
	}

	fromValue := reflect.ValueOf(from)
	if fromValue.Kind() == reflect.Ptr {
		fromValue = fromValue.Elem()
	}

	if !fromValue.IsValid() || fromValue.IsZero() {
		return fmt.Errorf("from must be a non-nil pointer")
	}

	if fromValue.Type() != intoValue.Elem().Type() {
		return fmt.Errorf("from and into must be the same type, cannot convert from %s into %s", fromValue.Type(), intoValue.Elem().Type())
	}

	intoValue.Elem().Set(fromValue)
	return nil
}
