// Package derive maps record struct types to schemas by reflection. It is
// the resolution engine: Field turns one reflect.Type (plus default and
// metadata) into a field descriptor, SchemaOf assembles whole schemas, and
// Define/AddSchema are the declaration sugar on top.
package derive

import (
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	structema "github.com/reoring/structema"
	"github.com/reoring/structema/enumfield"
	"github.com/reoring/structema/fields"
	"github.com/reoring/structema/internal/tagmeta"
)

// exactFields is the fixed primitive table; an exact reflect.Type match wins
// over kind dispatch even for generic-shaped types (map[string]any).
var exactFields = map[reflect.Type]func(fields.Opts) structema.Field{
	reflect.TypeOf(int(0)):             func(o fields.Opts) structema.Field { return fields.NewInteger(o) },
	reflect.TypeOf(int8(0)):            func(o fields.Opts) structema.Field { return fields.NewInteger(o) },
	reflect.TypeOf(int16(0)):           func(o fields.Opts) structema.Field { return fields.NewInteger(o) },
	reflect.TypeOf(int32(0)):           func(o fields.Opts) structema.Field { return fields.NewInteger(o) },
	reflect.TypeOf(int64(0)):           func(o fields.Opts) structema.Field { return fields.NewInteger(o) },
	reflect.TypeOf(uint(0)):            func(o fields.Opts) structema.Field { return fields.NewInteger(o) },
	reflect.TypeOf(uint8(0)):           func(o fields.Opts) structema.Field { return fields.NewInteger(o) },
	reflect.TypeOf(uint16(0)):          func(o fields.Opts) structema.Field { return fields.NewInteger(o) },
	reflect.TypeOf(uint32(0)):          func(o fields.Opts) structema.Field { return fields.NewInteger(o) },
	reflect.TypeOf(uint64(0)):          func(o fields.Opts) structema.Field { return fields.NewInteger(o) },
	reflect.TypeOf(float32(0)):         func(o fields.Opts) structema.Field { return fields.NewFloat(o) },
	reflect.TypeOf(float64(0)):         func(o fields.Opts) structema.Field { return fields.NewFloat(o) },
	reflect.TypeOf(""):                 func(o fields.Opts) structema.Field { return fields.NewString(o) },
	reflect.TypeOf(false):              func(o fields.Opts) structema.Field { return fields.NewBoolean(o) },
	reflect.TypeOf(map[string]any{}):   func(o fields.Opts) structema.Field { return fields.NewDict(o) },
	reflect.TypeOf(time.Time{}):        func(o fields.Opts) structema.Field { return fields.NewDateTime(o) },
	reflect.TypeOf(time.Duration(0)):   func(o fields.Opts) structema.Field { return fields.NewDuration(o) },
	reflect.TypeOf(structema.Date{}):   func(o fields.Opts) structema.Field { return fields.NewDate(o) },
	reflect.TypeOf(structema.Clock{}):  func(o fields.Opts) structema.Field { return fields.NewClock(o) },
	reflect.TypeOf(decimal.Decimal{}):  func(o fields.Opts) structema.Field { return fields.NewDecimal(o) },
	reflect.TypeOf(uuid.UUID{}):        func(o fields.Opts) structema.Field { return fields.NewUUID(o) },
	reflect.TypeOf((*any)(nil)).Elem():             func(o fields.Opts) structema.Field { return fields.NewRaw(o) },
}

// kindBases maps primitive kinds to their unnamed base type, for unwrapping
// named aliases (type Meters float64).
var kindBases = map[reflect.Kind]reflect.Type{
	reflect.Int:     reflect.TypeOf(int(0)),
	reflect.Int8:    reflect.TypeOf(int8(0)),
	reflect.Int16:   reflect.TypeOf(int16(0)),
	reflect.Int32:   reflect.TypeOf(int32(0)),
	reflect.Int64:   reflect.TypeOf(int64(0)),
	reflect.Uint:    reflect.TypeOf(uint(0)),
	reflect.Uint8:   reflect.TypeOf(uint8(0)),
	reflect.Uint16:  reflect.TypeOf(uint16(0)),
	reflect.Uint32:  reflect.TypeOf(uint32(0)),
	reflect.Uint64:  reflect.TypeOf(uint64(0)),
	reflect.Float32: reflect.TypeOf(float32(0)),
	reflect.Float64: reflect.TypeOf(float64(0)),
	reflect.String:  reflect.TypeOf(""),
	reflect.Bool:    reflect.TypeOf(false),
}

// Field resolves a type expression, a default (structema.Missing for none),
// and field metadata into a descriptor. Resolution precedence:
//
//  1. normalize required/default from the arguments
//  2. a FieldOverride in metadata is returned verbatim
//  3. exact primitive-table match
//  4. kind dispatch: slice, map, func, pointer (optional)
//  5. registered enumeration types
//  6. named aliases over primitive kinds, unwrapped
//  7. nested record schema; anything else is a NotRecordError
func Field(t reflect.Type, def any, meta structema.Metadata, opts ...Option) (structema.Field, error) {
	return resolveField(newConfig(opts).bare(), t, def, meta)
}

func resolveField(cfg config, t reflect.Type, def any, meta structema.Metadata) (structema.Field, error) {
	if !structema.IsMissing(def) {
		if !meta.HasDefault() {
			meta.SetDefault(def)
		}
		if meta.Required == nil {
			f := false
			meta.Required = &f
		}
	} else if meta.Required == nil {
		r := true
		meta.Required = &r
	}

	if meta.FieldOverride != nil {
		return meta.FieldOverride, nil
	}
	if t == nil {
		return nil, &structema.NotRecordError{Type: nil}
	}

	// An explicit ref beats type inference: the field resolves against the
	// registry even when the declared type (say, any) has a table entry.
	if ctor, ok := exactFields[t]; ok && meta.Ref == "" {
		return ctor(optsOf(meta)), nil
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		elem, err := resolveField(cfg, t.Elem(), structema.Missing, structema.Metadata{Ref: meta.Ref, Format: meta.Format})
		if err != nil {
			return nil, err
		}
		return fields.NewList(elem, optsOf(meta)), nil
	case reflect.Map:
		key, err := resolveField(cfg, t.Key(), structema.Missing, structema.Metadata{})
		if err != nil {
			return nil, err
		}
		value, err := resolveField(cfg, t.Elem(), structema.Missing, structema.Metadata{Ref: meta.Ref, Format: meta.Format})
		if err != nil {
			return nil, err
		}
		return fields.NewMap(key, value, optsOf(meta)), nil
	case reflect.Func:
		return fields.NewFunction(optsOf(meta)), nil
	case reflect.Pointer:
		// A pointer type is an optional type: it carries a nil default and
		// fallback and is never required, whatever its own metadata says.
		if !meta.HasDefault() {
			meta.SetDefault(nil)
		}
		if !meta.HasMissing() {
			meta.SetMissing(nil)
		}
		f := false
		meta.Required = &f
		return resolveField(cfg, t.Elem(), structema.Missing, meta)
	}

	if f, ok := enumfield.For(t, optsOf(meta)); ok {
		return f, nil
	}

	if base, ok := kindBases[t.Kind()]; ok && t != base {
		if meta.Description == "" {
			meta.Description = t.Name()
		}
		return resolveField(cfg, base, def, meta)
	}

	if meta.Ref != "" {
		return fields.NewNestedRef(meta.Ref, cfg.registry, optsOf(meta)), nil
	}
	if t.Kind() == reflect.Struct {
		nested := t
		return fields.NewNested(t.Name(), func() (*structema.Schema, error) {
			return schemaOfType(cfg.bare(), nested)
		}, optsOf(meta)), nil
	}
	return nil, &structema.NotRecordError{Type: t}
}

func optsOf(meta structema.Metadata) fields.Opts {
	o := fields.Opts{
		Description: meta.Description,
		Format:      meta.Format,
		Extra:       meta.Extra,
	}
	o.Required = meta.Required != nil && *meta.Required
	if v, ok := meta.DefaultValue(); ok {
		o.Default, o.HasDefault = v, true
	}
	if v, ok := meta.MissingValue(); ok {
		o.Missing, o.HasMissing = v, true
	}
	return o
}

// SchemaOf derives (or fetches from the registry) the schema for the record
// value's type. A pointer is unwrapped to its struct type.
func SchemaOf(rc any, opts ...Option) (*structema.Schema, error) {
	if rc == nil {
		return nil, &structema.NotRecordError{Type: nil}
	}
	t := reflect.TypeOf(rc)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return SchemaOfType(t, opts...)
}

// SchemaOfType derives the schema for a record struct type.
func SchemaOfType(t reflect.Type, opts ...Option) (*structema.Schema, error) {
	return schemaOfType(newConfig(opts), t)
}

func schemaOfType(cfg config, t reflect.Type) (*structema.Schema, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &structema.NotRecordError{Type: t}
	}
	if !cfg.customized() {
		if s, ok := cfg.registry.LookupType(t); ok {
			return s, nil
		}
	}

	meta := recordMeta(cfg, t)
	var slots []structema.FieldSlot
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := structema.ResolveRecordKey(sf, cfg.tagKey)
		if key == "-" || key == "" {
			continue
		}
		fm, err := tagmeta.Parse(sf, cfg.tagKey)
		if err != nil {
			return nil, err
		}
		if over, ok := cfg.fieldMeta[key]; ok {
			mergeMetadata(&fm, over)
		}
		def := structema.Missing
		if v, ok := fm.DefaultValue(); ok {
			def = v
		}
		fld, err := resolveField(cfg, sf.Type, def, fm)
		if err != nil {
			return nil, err
		}
		slots = append(slots, structema.FieldSlot{Key: key, Field: fld, Index: sf.Index})
	}

	name := cfg.name
	if name == "" {
		name = t.Name()
	}
	s := structema.NewSchema(name, t, meta, slots)
	if cfg.customized() {
		cfg.registry.PublishNamed(s)
	} else {
		cfg.registry.Publish(t, s)
	}
	return s, nil
}

// recordMeta assembles the record's Meta block: the MetaProvider hook first,
// then per-call overrides.
func recordMeta(cfg config, t reflect.Type) structema.Meta {
	var meta structema.Meta
	if mp, ok := reflect.New(t).Interface().(structema.MetaProvider); ok {
		meta = mp.SchemaMeta()
	}
	if cfg.ordered != nil {
		meta.Ordered = *cfg.ordered
	}
	if cfg.unknown != nil {
		meta.Unknown = *cfg.unknown
	}
	return meta
}

// Define derives the schema for T and returns the typed handle. It is the
// declaration entry point: define the record, attach the schema.
func Define[T any](opts ...Option) (structema.Defined[T], error) {
	s, err := SchemaOfType(reflect.TypeOf((*T)(nil)).Elem(), opts...)
	if err != nil {
		return structema.Defined[T]{}, err
	}
	return structema.NewDefined[T](s), nil
}

// MustDefine is Define panicking on error, for package-level declarations.
func MustDefine[T any](opts ...Option) structema.Defined[T] {
	d, err := Define[T](opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// AddSchema derives T's schema and publishes it in the registry, returning
// the untyped schema. Use it when only registration matters (forward
// references to T resolve afterwards).
func AddSchema[T any](opts ...Option) (*structema.Schema, error) {
	return SchemaOfType(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}
