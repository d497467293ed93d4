package fields

import (
	"context"
	"sync"

	structema "github.com/reoring/structema"
	"github.com/reoring/structema/i18n"
	js "github.com/reoring/structema/jsonschema"
)

// SchemaResolver produces the inner schema of a Nested field on first use.
// The indirection is what keeps recursive and forward-referenced record
// graphs from recursing at construction time.
type SchemaResolver func() (*structema.Schema, error)

// Nested embeds another record's schema as a field. The inner schema is
// resolved lazily and the result cached.
type Nested struct {
	Base
	name    string
	resolve SchemaResolver

	mu     sync.Mutex
	cached *structema.Schema
}

// NewNested returns a Nested descriptor for the named record, resolved
// through r on first use.
func NewNested(name string, r SchemaResolver, o Opts) *Nested {
	return &Nested{Base: Base{Opt: o}, name: name, resolve: r}
}

// NewNestedRef returns a Nested descriptor bound by name only: the schema is
// looked up in the registry when first needed, so the record may be declared
// (and registered) later.
func NewNestedRef(name string, reg *structema.Registry, o Opts) *Nested {
	if reg == nil {
		reg = structema.DefaultRegistry()
	}
	return NewNested(name, func() (*structema.Schema, error) {
		s, ok := reg.Lookup(name)
		if !ok {
			return nil, structema.Issues{structema.Issue{
				Path:    "/",
				Code:    structema.CodeUnresolvedRef,
				Message: i18n.T(structema.CodeUnresolvedRef, map[string]string{"name": name}),
				Params:  map[string]any{"name": name},
			}}
		}
		return s, nil
	}, o)
}

// RecordName returns the nested record's name.
func (f *Nested) RecordName() string { return f.name }

// Schema resolves and returns the inner schema. Only successful resolutions
// are cached so a reference registered later still resolves.
func (f *Nested) Schema() (*structema.Schema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached != nil {
		return f.cached, nil
	}
	s, err := f.resolve()
	if err != nil {
		return nil, err
	}
	f.cached = s
	return s, nil
}

func (f *Nested) Deserialize(ctx context.Context, v any) (any, error) {
	m, err := toStringMap(v)
	if err != nil {
		return nil, err
	}
	s, err := f.Schema()
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, m.(map[string]any))
}

func (f *Nested) Serialize(ctx context.Context, v any) (any, error) {
	s, err := f.Schema()
	if err != nil {
		return nil, err
	}
	return s.Dump(ctx, v)
}

func (f *Nested) JSONSchema() (*js.Schema, error) {
	s := f.skeleton("", "")
	s.Ref = "#/$defs/" + f.name
	return s, nil
}
