// Package codec provides wire front ends over schemas: bytes in, records
// out, and back. JSON rides on goccy/go-json, YAML on gopkg.in/yaml.v3.
package codec

import (
	"bytes"
	"context"

	gojson "github.com/goccy/go-json"

	structema "github.com/reoring/structema"
)

// JSONCodec loads and dumps one schema's records as JSON documents.
type JSONCodec struct {
	s *structema.Schema
}

// JSON returns a JSON codec over s.
func JSON(s *structema.Schema) JSONCodec { return JSONCodec{s: s} }

// Schema returns the wrapped schema.
func (c JSONCodec) Schema() *structema.Schema { return c.s }

// Loads parses a JSON object and constructs a record from it.
func (c JSONCodec) Loads(ctx context.Context, data []byte) (any, error) {
	var m map[string]any
	if err := gojson.Unmarshal(data, &m); err != nil {
		return nil, structema.Issues{structema.Issue{
			Path: "/", Code: structema.CodeParseError, Message: err.Error(), Cause: err,
		}}
	}
	return c.s.Load(ctx, m)
}

// Dumps serializes a record into a JSON document. With Meta.Ordered set the
// keys follow declaration order; otherwise map marshaling order applies.
func (c JSONCodec) Dumps(ctx context.Context, rec any) ([]byte, error) {
	m, err := c.s.Dump(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !c.s.Meta().Ordered {
		return gojson.Marshal(m)
	}
	return marshalOrdered(c.s.Keys(), m)
}

// marshalOrdered writes an object with keys in the given order.
func marshalOrdered(keys []string, m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := gojson.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := gojson.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TypedJSON is the typed counterpart of JSONCodec.
type TypedJSON[T any] struct {
	d structema.Defined[T]
	c JSONCodec
}

// JSONFor returns a typed JSON codec over a defined record.
func JSONFor[T any](d structema.Defined[T]) TypedJSON[T] {
	return TypedJSON[T]{d: d, c: JSON(d.Schema())}
}

// Loads parses a JSON object into a T.
func (c TypedJSON[T]) Loads(ctx context.Context, data []byte) (T, error) {
	var zero T
	v, err := c.c.Loads(ctx, data)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, structema.Issues{structema.Issue{
			Path: "/", Code: structema.CodeInvalidType, Message: "schema does not describe the requested type",
		}}
	}
	return out, nil
}

// Dumps serializes a T into a JSON document.
func (c TypedJSON[T]) Dumps(ctx context.Context, v T) ([]byte, error) {
	return c.c.Dumps(ctx, v)
}
