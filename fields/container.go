package fields

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	structema "github.com/reoring/structema"
	js "github.com/reoring/structema/jsonschema"
)

// List validates homogeneous sequences by delegating each element to the
// wrapped descriptor. The canonical Go value is []any.
type List struct {
	Base
	Elem structema.Field
}

// NewList returns a List descriptor over elem.
func NewList(elem structema.Field, o Opts) *List {
	return &List{Base: Base{Opt: o}, Elem: elem}
}

func (f *List) Deserialize(ctx context.Context, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, invalidType("array", v)
	}
	out := make([]any, rv.Len())
	var iss structema.Issues
	for i := 0; i < rv.Len(); i++ {
		if rv.Index(i).Interface() == nil && structema.IsNullable(f.Elem) {
			continue
		}
		ev, err := f.Elem.Deserialize(ctx, rv.Index(i).Interface())
		if err != nil {
			iss = append(iss, structema.PrefixIssues("/"+strconv.Itoa(i), err)...)
			continue
		}
		out[i] = ev
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (f *List) Serialize(ctx context.Context, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, invalidType("slice", v)
	}
	out := make([]any, rv.Len())
	var iss structema.Issues
	for i := 0; i < rv.Len(); i++ {
		ev := rv.Index(i)
		if ev.Kind() == reflect.Pointer {
			if ev.IsNil() {
				out[i] = nil
				continue
			}
			ev = ev.Elem()
		}
		w, err := f.Elem.Serialize(ctx, ev.Interface())
		if err != nil {
			iss = append(iss, structema.PrefixIssues("/"+strconv.Itoa(i), err)...)
			continue
		}
		out[i] = w
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// RecordRefs reports the record references of the element descriptor.
func (f *List) RecordRefs() []structema.RecordRef { return structema.RecordRefsOf(f.Elem) }

func (f *List) JSONSchema() (*js.Schema, error) {
	es, err := f.Elem.JSONSchema()
	if err != nil {
		return nil, err
	}
	s := f.skeleton("array", "")
	s.Items = es
	return s, nil
}

// Map validates keyed collections, delegating keys and values to their own
// descriptors. The canonical Go value is map[any]any so non-string key types
// survive until struct assembly.
type Map struct {
	Base
	Key   structema.Field
	Value structema.Field
}

// NewMap returns a Map descriptor over key/value descriptors.
func NewMap(key, value structema.Field, o Opts) *Map {
	return &Map{Base: Base{Opt: o}, Key: key, Value: value}
}

func (f *Map) Deserialize(ctx context.Context, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if v == nil || rv.Kind() != reflect.Map {
		return nil, invalidType("object", v)
	}
	out := make(map[any]any, rv.Len())
	var iss structema.Issues
	iter := rv.MapRange()
	for iter.Next() {
		seg := "/" + fmt.Sprint(iter.Key().Interface())
		kv, err := f.Key.Deserialize(ctx, iter.Key().Interface())
		if err != nil {
			iss = append(iss, structema.PrefixIssues(seg, err)...)
			continue
		}
		if iter.Value().Interface() == nil && structema.IsNullable(f.Value) {
			out[kv] = nil
			continue
		}
		vv, err := f.Value.Deserialize(ctx, iter.Value().Interface())
		if err != nil {
			iss = append(iss, structema.PrefixIssues(seg, err)...)
			continue
		}
		out[kv] = vv
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (f *Map) Serialize(ctx context.Context, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if v == nil || rv.Kind() != reflect.Map {
		return nil, invalidType("map", v)
	}
	out := make(map[string]any, rv.Len())
	var iss structema.Issues
	iter := rv.MapRange()
	for iter.Next() {
		seg := "/" + fmt.Sprint(iter.Key().Interface())
		kw, err := f.Key.Serialize(ctx, iter.Key().Interface())
		if err != nil {
			iss = append(iss, structema.PrefixIssues(seg, err)...)
			continue
		}
		ev := iter.Value()
		if ev.Kind() == reflect.Pointer {
			if ev.IsNil() {
				out[wireKey(kw)] = nil
				continue
			}
			ev = ev.Elem()
		}
		vw, err := f.Value.Serialize(ctx, ev.Interface())
		if err != nil {
			iss = append(iss, structema.PrefixIssues(seg, err)...)
			continue
		}
		out[wireKey(kw)] = vw
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// wireKey renders a serialized key as the string form wire maps require.
func wireKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// RecordRefs reports the record references of the key and value descriptors.
func (f *Map) RecordRefs() []structema.RecordRef {
	return append(structema.RecordRefsOf(f.Key), structema.RecordRefsOf(f.Value)...)
}

func (f *Map) JSONSchema() (*js.Schema, error) {
	ks, err := f.Key.JSONSchema()
	if err != nil {
		return nil, err
	}
	vs, err := f.Value.JSONSchema()
	if err != nil {
		return nil, err
	}
	s := f.skeleton("object", "")
	s.AdditionalProperties = vs
	if ks != nil && ks.Type != "string" {
		s.Keys = ks
	}
	return s, nil
}

// SerializeHook and DeserializeHook are the optional callables a Function
// field runs at the wire boundary.
type (
	SerializeHook   func(ctx context.Context, v any) (any, error)
	DeserializeHook func(ctx context.Context, v any) (any, error)
)

// Function is the generic function-reference descriptor. Signatures are not
// validated. Without hooks a Function field has no wire form: it serializes
// to null and loads to the zero function.
type Function struct {
	Base
	SerializeFn   SerializeHook
	DeserializeFn DeserializeHook
}

// NewFunction returns a Function descriptor, picking optional "serialize" /
// "deserialize" hooks out of Opts.Extra.
func NewFunction(o Opts) *Function {
	f := &Function{Base: Base{Opt: o}}
	if h, ok := o.Extra["serialize"].(SerializeHook); ok {
		f.SerializeFn = h
	} else if h, ok := o.Extra["serialize"].(func(ctx context.Context, v any) (any, error)); ok {
		f.SerializeFn = h
	}
	if h, ok := o.Extra["deserialize"].(DeserializeHook); ok {
		f.DeserializeFn = h
	} else if h, ok := o.Extra["deserialize"].(func(ctx context.Context, v any) (any, error)); ok {
		f.DeserializeFn = h
	}
	return f
}

func (f *Function) Deserialize(ctx context.Context, v any) (any, error) {
	if f.DeserializeFn != nil {
		return f.DeserializeFn(ctx, v)
	}
	return nil, nil
}

func (f *Function) Serialize(ctx context.Context, v any) (any, error) {
	if f.SerializeFn != nil {
		return f.SerializeFn(ctx, v)
	}
	return nil, nil
}

func (f *Function) JSONSchema() (*js.Schema, error) { return f.skeleton("", ""), nil }
