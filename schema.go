package structema

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/reoring/structema/i18n"
	js "github.com/reoring/structema/jsonschema"
)

// FieldSlot binds one wire key to its resolved field descriptor and the
// struct field it populates.
type FieldSlot struct {
	Key   string
	Field Field
	Index []int // reflect.Type.FieldByIndex path into the record struct
}

// Schema validates wire maps and constructs instances of one record struct
// type. Schemas are built once (see derive.SchemaOf), are immutable, and are
// safe for concurrent reuse.
type Schema struct {
	name  string
	typ   reflect.Type
	slots []FieldSlot
	byKey map[string]int
	meta  Meta
}

// NewSchema assembles a Schema from resolved slots. Callers normally go
// through derive.SchemaOf instead.
func NewSchema(name string, typ reflect.Type, meta Meta, slots []FieldSlot) *Schema {
	byKey := make(map[string]int, len(slots))
	for i, sl := range slots {
		byKey[sl.Key] = i
	}
	return &Schema{name: name, typ: typ, slots: slots, byKey: byKey, meta: meta}
}

// Name returns the record name the schema was derived from.
func (s *Schema) Name() string { return s.name }

// Type returns the record struct type.
func (s *Schema) Type() reflect.Type { return s.typ }

// Meta returns the behavioral configuration in effect.
func (s *Schema) Meta() Meta { return s.meta }

// Fields returns the slots in declaration order.
func (s *Schema) Fields() []FieldSlot {
	out := make([]FieldSlot, len(s.slots))
	copy(out, s.slots)
	return out
}

// FieldByKey returns the field descriptor for a wire key.
func (s *Schema) FieldByKey(key string) (Field, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	return s.slots[i].Field, true
}

// Keys returns the wire keys in declaration order.
func (s *Schema) Keys() []string {
	out := make([]string, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.Key
	}
	return out
}

// Load validates data and constructs a record instance from it. The returned
// value is of the record struct type. Validation failures are reported as
// Issues; the record-level Validator hook, when implemented, runs last.
func (s *Schema) Load(ctx context.Context, data map[string]any) (any, error) {
	if data == nil {
		data = map[string]any{}
	}
	iss := s.unknownKeyIssues(data)
	rv := reflect.New(s.typ).Elem()
	for _, sl := range s.slots {
		wire, ok := data[sl.Key]
		if !ok {
			fallback, has := sl.Field.MissingValue()
			if !has {
				fallback, has = sl.Field.DefaultValue()
			}
			if has {
				if err := convertAssign(rv.FieldByIndex(sl.Index), fallback); err != nil {
					iss = AppendIssues(iss, Issue{Path: "/" + sl.Key, Code: CodeInvalidType, Message: err.Error(), Cause: err})
				}
				continue
			}
			if sl.Field.Required() {
				iss = AppendIssues(iss, Issue{Path: "/" + sl.Key, Code: CodeRequired, Message: i18n.T(CodeRequired, map[string]string{"key": sl.Key})})
			}
			continue
		}
		if wire == nil && IsNullable(sl.Field) {
			continue // explicit null on an optional field keeps the zero value
		}
		v, err := sl.Field.Deserialize(ctx, wire)
		if err != nil {
			iss = append(iss, PrefixIssues("/"+sl.Key, err)...)
			continue
		}
		if err := convertAssign(rv.FieldByIndex(sl.Index), v); err != nil {
			iss = AppendIssues(iss, Issue{Path: "/" + sl.Key, Code: CodeInvalidType, Message: err.Error(), Cause: err})
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	if hook, ok := rv.Addr().Interface().(Validator); ok {
		if err := hook.ValidateRecord(ctx); err != nil {
			if hi, ok := AsIssues(err); ok {
				return nil, hi
			}
			return nil, Issues{Issue{Path: "/", Code: CodeSchemaRule, Message: err.Error(), Cause: err}}
		}
	}
	return rv.Interface(), nil
}

// Validate checks data against the schema without constructing a record and
// without running the record-level hook.
func (s *Schema) Validate(ctx context.Context, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	iss := s.unknownKeyIssues(data)
	for _, sl := range s.slots {
		wire, ok := data[sl.Key]
		if !ok {
			_, hasMissing := sl.Field.MissingValue()
			_, hasDefault := sl.Field.DefaultValue()
			if !hasMissing && !hasDefault && sl.Field.Required() {
				iss = AppendIssues(iss, Issue{Path: "/" + sl.Key, Code: CodeRequired, Message: i18n.T(CodeRequired, map[string]string{"key": sl.Key})})
			}
			continue
		}
		if wire == nil && IsNullable(sl.Field) {
			continue
		}
		if _, err := sl.Field.Deserialize(ctx, wire); err != nil {
			iss = append(iss, PrefixIssues("/"+sl.Key, err)...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// Dump serializes a record instance (value or pointer) into a wire map.
// Ordering is carried by Keys(); the map itself is unordered.
func (s *Schema) Dump(ctx context.Context, rec any) (map[string]any, error) {
	rv := reflect.ValueOf(rec)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, Issues{Issue{Path: "/", Code: CodeInvalidType, Message: "cannot dump nil " + s.name}}
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Type() != s.typ {
		got := "nil"
		if rv.IsValid() {
			got = rv.Type().String()
		}
		return nil, Issues{Issue{Path: "/", Code: CodeInvalidType, Message: fmt.Sprintf("expected %s, got %s", s.typ, got)}}
	}
	var iss Issues
	out := make(map[string]any, len(s.slots))
	for _, sl := range s.slots {
		fv := rv.FieldByIndex(sl.Index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				out[sl.Key] = nil
				continue
			}
			fv = fv.Elem()
		}
		w, err := sl.Field.Serialize(ctx, fv.Interface())
		if err != nil {
			iss = append(iss, PrefixIssues("/"+sl.Key, err)...)
			continue
		}
		out[sl.Key] = w
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// JSONSchema projects the schema into a JSON Schema object. Record schemas
// referenced anywhere in the field tree are rendered into a top-level $defs
// section so every "#/$defs/<name>" pointer resolves within the document.
func (s *Schema) JSONSchema() (*js.Schema, error) {
	root, err := s.jsonSchemaObject()
	if err != nil {
		return nil, err
	}
	defs := map[string]*js.Schema{}
	if err := s.collectDefs(defs); err != nil {
		return nil, err
	}
	if len(defs) > 0 {
		root.Defs = defs
	}
	return root, nil
}

// jsonSchemaObject renders the object schema itself, without definitions.
func (s *Schema) jsonSchemaObject() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(s.slots))
	var required []string
	for _, sl := range s.slots {
		fs, err := sl.Field.JSONSchema()
		if err != nil {
			return nil, err
		}
		props[sl.Key] = fs
		if sl.Field.Required() {
			required = append(required, sl.Key)
		}
	}
	sort.Strings(required)
	var addl any
	if s.meta.Unknown == UnknownStrict {
		addl = false
	}
	return &js.Schema{Type: "object", Properties: props, Required: required, AdditionalProperties: addl}, nil
}

// collectDefs renders every record schema referenced from the field tree,
// once per name. An entry is claimed before recursing into its own
// references so cyclic record graphs terminate.
func (s *Schema) collectDefs(defs map[string]*js.Schema) error {
	for _, sl := range s.slots {
		for _, r := range RecordRefsOf(sl.Field) {
			name := r.RecordName()
			if _, ok := defs[name]; ok {
				continue
			}
			defs[name] = nil
			inner, err := r.Schema()
			if err != nil {
				return err
			}
			body, err := inner.jsonSchemaObject()
			if err != nil {
				return err
			}
			defs[name] = body
			if err := inner.collectDefs(defs); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Schema) unknownKeyIssues(data map[string]any) Issues {
	if s.meta.Unknown != UnknownStrict {
		return nil
	}
	var unknown []string
	for k := range data {
		if _, ok := s.byKey[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	var iss Issues
	for _, k := range unknown {
		iss = AppendIssues(iss, Issue{Path: "/" + k, Code: CodeUnknownKey, Message: i18n.T(CodeUnknownKey, map[string]string{"key": k})})
	}
	return iss
}

// convertAssign writes a deserialized value into a struct field, converting
// between the field layer's canonical Go types (int64, float64, []any,
// map[string]any, nested record structs) and the declared field type.
func convertAssign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	sv := reflect.ValueOf(v)
	dt := dst.Type()
	if sv.Type().AssignableTo(dt) {
		dst.Set(sv)
		return nil
	}
	switch dst.Kind() {
	case reflect.Pointer:
		p := reflect.New(dt.Elem())
		if err := convertAssign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	case reflect.Slice:
		if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
			return fmt.Errorf("cannot assign %T to %s", v, dt)
		}
		out := reflect.MakeSlice(dt, sv.Len(), sv.Len())
		for i := 0; i < sv.Len(); i++ {
			if err := convertAssign(out.Index(i), sv.Index(i).Interface()); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	case reflect.Array:
		if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
			return fmt.Errorf("cannot assign %T to %s", v, dt)
		}
		if sv.Len() != dt.Len() {
			return fmt.Errorf("array length mismatch: need %d, got %d", dt.Len(), sv.Len())
		}
		for i := 0; i < sv.Len(); i++ {
			if err := convertAssign(dst.Index(i), sv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if sv.Kind() != reflect.Map {
			return fmt.Errorf("cannot assign %T to %s", v, dt)
		}
		out := reflect.MakeMapWithSize(dt, sv.Len())
		iter := sv.MapRange()
		for iter.Next() {
			mk := reflect.New(dt.Key()).Elem()
			if err := convertAssign(mk, iter.Key().Interface()); err != nil {
				return err
			}
			mv := reflect.New(dt.Elem()).Elem()
			if err := convertAssign(mv, iter.Value().Interface()); err != nil {
				return err
			}
			out.SetMapIndex(mk, mv)
		}
		dst.Set(out)
		return nil
	}
	if sv.Type().ConvertibleTo(dt) {
		dst.Set(sv.Convert(dt))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", v, dt)
}
