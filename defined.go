package structema

import "context"

// Defined is the typed handle produced by derive.Define: the record type
// together with its attached schema. It is the Go stand-in for reading a
// schema off the class itself.
type Defined[T any] struct {
	schema *Schema
}

// NewDefined wraps a schema known to describe T. Callers normally obtain
// handles from derive.Define instead.
func NewDefined[T any](s *Schema) Defined[T] { return Defined[T]{schema: s} }

// Schema returns the underlying untyped schema.
func (d Defined[T]) Schema() *Schema { return d.schema }

// Load validates data and constructs a T from it.
func (d Defined[T]) Load(ctx context.Context, data map[string]any) (T, error) {
	var zero T
	v, err := d.schema.Load(ctx, data)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, Issues{Issue{Path: "/", Code: CodeInvalidType, Message: "schema does not describe the requested type"}}
	}
	return out, nil
}

// Dump serializes a T into a wire map.
func (d Defined[T]) Dump(ctx context.Context, v T) (map[string]any, error) {
	return d.schema.Dump(ctx, v)
}

// Validate checks data without constructing a record.
func (d Defined[T]) Validate(ctx context.Context, data map[string]any) error {
	return d.schema.Validate(ctx, data)
}
