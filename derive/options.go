package derive

import (
	structema "github.com/reoring/structema"
)

// Option adjusts schema derivation for one call.
type Option func(*config)

type config struct {
	registry  *structema.Registry
	tagKey    string
	name      string
	ordered   *bool
	unknown   *structema.UnknownPolicy
	fieldMeta map[string]structema.Metadata
}

func newConfig(opts []Option) config {
	cfg := config{registry: structema.DefaultRegistry()}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// customized reports whether the call carries per-call overrides that make
// the per-type registry cache unusable. Customized derivations neither read
// nor write that cache; they register by name only.
func (c config) customized() bool {
	return c.name != "" || c.tagKey != "" || c.ordered != nil || c.unknown != nil || len(c.fieldMeta) > 0
}

// bare strips per-call overrides; nested schemas derive with it so that
// recursion hits the cache.
func (c config) bare() config {
	return config{registry: c.registry, tagKey: c.tagKey}
}

func (c *config) mergeFieldMeta(key string, m structema.Metadata) {
	if c.fieldMeta == nil {
		c.fieldMeta = map[string]structema.Metadata{}
	}
	cur := c.fieldMeta[key]
	mergeMetadata(&cur, m)
	c.fieldMeta[key] = cur
}

// WithRegistry derives against an explicit registry instead of the process
// default.
func WithRegistry(r *structema.Registry) Option {
	return func(c *config) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithTagKey reads field declarations from an alternate struct-tag namespace.
func WithTagKey(key string) Option {
	return func(c *config) { c.tagKey = key }
}

// WithName registers the schema under an explicit name instead of the struct
// type name.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithOrdered makes Dump output follow declaration order in the codecs.
func WithOrdered(ordered bool) Option {
	return func(c *config) { c.ordered = &ordered }
}

// WithUnknown sets the unknown-key policy on load.
func WithUnknown(p structema.UnknownPolicy) Option {
	return func(c *config) { c.unknown = &p }
}

// WithFieldMeta overlays metadata on one field (by wire key), on top of
// whatever the struct tag declares.
func WithFieldMeta(key string, m structema.Metadata) Option {
	return func(c *config) { c.mergeFieldMeta(key, m) }
}

// WithDefault declares a default value for one field, for defaults that have
// no tag-literal form.
func WithDefault(key string, v any) Option {
	return func(c *config) {
		var m structema.Metadata
		m.SetDefault(v)
		c.mergeFieldMeta(key, m)
	}
}

// WithFieldOverride installs a pre-built descriptor for one field; the
// resolver is bypassed entirely for it.
func WithFieldOverride(key string, f structema.Field) Option {
	return func(c *config) {
		c.mergeFieldMeta(key, structema.Metadata{FieldOverride: f})
	}
}

// mergeMetadata overlays set members of src onto dst.
func mergeMetadata(dst *structema.Metadata, src structema.Metadata) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Required != nil {
		dst.Required = src.Required
	}
	if v, ok := src.DefaultValue(); ok {
		dst.SetDefault(v)
	}
	if v, ok := src.MissingValue(); ok {
		dst.SetMissing(v)
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Ref != "" {
		dst.Ref = src.Ref
	}
	if src.FieldOverride != nil {
		dst.FieldOverride = src.FieldOverride
	}
	for k, v := range src.Extra {
		if dst.Extra == nil {
			dst.Extra = map[string]any{}
		}
		dst.Extra[k] = v
	}
}
