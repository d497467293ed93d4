package codec

import (
	"context"

	"gopkg.in/yaml.v3"

	structema "github.com/reoring/structema"
)

// YAMLCodec loads and dumps one schema's records as YAML documents.
type YAMLCodec struct {
	s *structema.Schema
}

// YAML returns a YAML codec over s.
func YAML(s *structema.Schema) YAMLCodec { return YAMLCodec{s: s} }

// Schema returns the wrapped schema.
func (c YAMLCodec) Schema() *structema.Schema { return c.s }

// Loads parses a YAML mapping and constructs a record from it.
func (c YAMLCodec) Loads(ctx context.Context, data []byte) (any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, structema.Issues{structema.Issue{
			Path: "/", Code: structema.CodeParseError, Message: err.Error(), Cause: err,
		}}
	}
	return c.s.Load(ctx, m)
}

// Dumps serializes a record into a YAML document. With Meta.Ordered set the
// mapping is emitted in declaration order via an explicit node tree.
func (c YAMLCodec) Dumps(ctx context.Context, rec any) ([]byte, error) {
	m, err := c.s.Dump(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !c.s.Meta().Ordered {
		return yaml.Marshal(m)
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range c.s.Keys() {
		v, ok := m[k]
		if !ok {
			continue
		}
		kn := &yaml.Node{}
		if err := kn.Encode(k); err != nil {
			return nil, err
		}
		vn := &yaml.Node{}
		if err := vn.Encode(v); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, kn, vn)
	}
	return yaml.Marshal(node)
}

// TypedYAML is the typed counterpart of YAMLCodec.
type TypedYAML[T any] struct {
	d structema.Defined[T]
	c YAMLCodec
}

// YAMLFor returns a typed YAML codec over a defined record.
func YAMLFor[T any](d structema.Defined[T]) TypedYAML[T] {
	return TypedYAML[T]{d: d, c: YAML(d.Schema())}
}

// Loads parses a YAML mapping into a T.
func (c TypedYAML[T]) Loads(ctx context.Context, data []byte) (T, error) {
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

// Dumps serializes a T into a YAML document.
func (c TypedYAML[T]) Dumps(ctx context.Context, v T) ([]byte, error) {
	return c.c.Dumps(ctx, v)
}
