// Package enumfield serializes and deserializes enumeration members by name
// or by value. Go has no introspectable enum construct, so member sets are
// declared once via Register; the resolver consults the registry when it
// meets a registered type.
package enumfield

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	structema "github.com/reoring/structema"
	"github.com/reoring/structema/fields"
	"github.com/reoring/structema/i18n"
	js "github.com/reoring/structema/jsonschema"
)

// Option configures a registration.
type Option func(*adapter)

// ByValue switches the wire form from member names to underlying values.
func ByValue() Option {
	return func(a *adapter) { a.byValue = true }
}

type adapter struct {
	typ     reflect.Type
	byValue bool
	names   []string       // sorted, for deterministic schema export
	members map[string]any // name -> member (typed)
	values  map[any]string // member -> name
}

var (
	registryMu sync.RWMutex
	registry   = map[reflect.Type]*adapter{}
)

// Register declares the member set of the enumeration type T. Re-registering
// a type replaces its members.
func Register[T comparable](members map[string]T, opts ...Option) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	a := &adapter{
		typ:     t,
		members: make(map[string]any, len(members)),
		values:  make(map[any]string, len(members)),
	}
	for name, m := range members {
		a.names = append(a.names, name)
		a.members[name] = m
		a.values[m] = name
	}
	sort.Strings(a.names)
	for _, o := range opts {
		o(a)
	}
	registryMu.Lock()
	registry[t] = a
	registryMu.Unlock()
}

// Registered reports whether t has a declared member set.
func Registered(t reflect.Type) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[t]
	return ok
}

// For returns an enum field descriptor for t when its member set is
// registered.
func For(t reflect.Type, o fields.Opts) (structema.Field, bool) {
	registryMu.RLock()
	a, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, false
	}
	return &Field{Base: fields.Base{Opt: o}, adapter: a}, true
}

// Field is the enum descriptor.
type Field struct {
	fields.Base
	adapter *adapter
}

func (f *Field) Deserialize(ctx context.Context, v any) (any, error) {
	a := f.adapter
	if reflect.TypeOf(v) == a.typ {
		// already a member; validate it
		if _, ok := a.values[v]; !ok {
			return nil, f.enumIssue(v)
		}
		return v, nil
	}
	if a.byValue {
		// coerce the wire value into the underlying kind, then look it up
		member := reflect.New(a.typ).Elem()
		if err := coerce(member, v); err != nil {
			return nil, f.enumIssue(v)
		}
		m := member.Interface()
		if _, ok := a.values[m]; !ok {
			return nil, f.enumIssue(v)
		}
		return m, nil
	}
	name, ok := v.(string)
	if !ok {
		return nil, f.enumIssue(v)
	}
	m, ok := a.members[name]
	if !ok {
		return nil, f.enumIssue(v)
	}
	return m, nil
}

func (f *Field) Serialize(ctx context.Context, v any) (any, error) {
	a := f.adapter
	m := v
	if rt := reflect.TypeOf(v); rt != a.typ {
		if rt == nil || !rt.ConvertibleTo(a.typ) {
			return nil, f.enumIssue(v)
		}
		m = reflect.ValueOf(v).Convert(a.typ).Interface()
	}
	name, ok := a.values[m]
	if !ok {
		return nil, f.enumIssue(v)
	}
	if a.byValue {
		return reflect.ValueOf(m).Convert(underlying(a.typ)).Interface(), nil
	}
	return name, nil
}

func (f *Field) JSONSchema() (*js.Schema, error) {
	a := f.adapter
	s := &js.Schema{Description: f.Opt.Description}
	if f.Opt.HasDefault {
		s.Default = f.Opt.Default
	}
	if a.byValue {
		s.Type = kindSchemaType(a.typ.Kind())
		for _, name := range a.names {
			s.Enum = append(s.Enum, reflect.ValueOf(a.members[name]).Convert(underlying(a.typ)).Interface())
		}
		return s, nil
	}
	s.Type = "string"
	for _, name := range a.names {
		s.Enum = append(s.Enum, name)
	}
	return s, nil
}

func (f *Field) enumIssue(got any) structema.Issues {
	gotStr := fmt.Sprintf("%v", got)
	return structema.Issues{structema.Issue{
		Path:    "/",
		Code:    structema.CodeInvalidEnum,
		Message: i18n.T(structema.CodeInvalidEnum, map[string]string{"got": gotStr, "enum": f.adapter.typ.String()}),
		Hint:    f.adapter.typ.String(),
		Params:  map[string]any{"got": gotStr},
	}}
}

// coerce converts a wire value into dst's type when the kinds line up
// (float64 from JSON into int-kinded enums, string into string-kinded ones).
func coerce(dst reflect.Value, v any) error {
	sv := reflect.ValueOf(v)
	if !sv.IsValid() {
		return fmt.Errorf("nil enum value")
	}
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}
	switch dst.Kind() {
	case reflect.String:
		if sv.Kind() == reflect.String {
			dst.SetString(sv.String())
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if sv.Type().ConvertibleTo(dst.Type()) {
			dst.Set(sv.Convert(dst.Type()))
			return nil
		}
	}
	return fmt.Errorf("cannot coerce %T into %s", v, dst.Type())
}

func underlying(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.String:
		return reflect.TypeOf("")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.TypeOf(int64(0))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.TypeOf(int64(0))
	case reflect.Float32, reflect.Float64:
		return reflect.TypeOf(float64(0))
	}
	return t
}

func kindSchemaType(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "string"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "integer"
	}
}
