package structema

import (
	"reflect"
	"strings"
)

// missingType is the type of the Missing sentinel.
type missingType struct{}

// Missing is the "no value supplied" sentinel, distinct from nil. Passing it
// as a default means the field has no default at all; nil remains a valid
// default value in its own right.
var Missing any = missingType{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missingType)
	return ok
}

// Metadata carries the per-field declaration knobs recognized by the
// resolver, plus an open extension map forwarded verbatim to the field
// constructor. The zero value means "infer everything from the type".
//
// Default and Missing distinguish "explicitly nil" from "unset": use
// SetDefault/SetMissing (or pass the Missing sentinel) so that nil stays a
// legal value.
type Metadata struct {
	Name        string // wire key override; "-" skips the field
	Required    *bool  // nil means "decide from default/optionality"
	Default     any    // set via SetDefault; nil or Missing otherwise
	Missing     any    // load-time fallback, set via SetMissing
	Description string
	Format      string // wire-format variant (e.g. "date", "clock", a Go layout)
	Ref         string // forward reference: resolve the nested schema by name
	// FieldOverride short-circuits resolution entirely when non-nil.
	FieldOverride Field
	// Extra holds unrecognized keys, passed through to the field constructor.
	Extra map[string]any

	nilDefault bool // Default == nil was set explicitly
	nilMissing bool // Missing == nil was set explicitly
}

// SetDefault records v as the field default (nil allowed).
func (m *Metadata) SetDefault(v any) {
	m.Default = v
	m.nilDefault = v == nil
}

// SetMissing records v as the load-time fallback (nil allowed).
func (m *Metadata) SetMissing(v any) {
	m.Missing = v
	m.nilMissing = v == nil
}

// HasDefault reports whether a default value was supplied.
func (m Metadata) HasDefault() bool {
	if m.Default == nil {
		return m.nilDefault
	}
	return !IsMissing(m.Default)
}

// HasMissing reports whether a load-time fallback was supplied.
func (m Metadata) HasMissing() bool {
	if m.Missing == nil {
		return m.nilMissing
	}
	return !IsMissing(m.Missing)
}

// DefaultValue returns the default and whether one is present.
func (m Metadata) DefaultValue() (any, bool) {
	if !m.HasDefault() {
		return nil, false
	}
	return m.Default, true
}

// MissingValue returns the load fallback and whether one is present.
func (m Metadata) MissingValue() (any, bool) {
	if !m.HasMissing() {
		return nil, false
	}
	return m.Missing, true
}

// ResolveRecordKey applies the repository-wide rule to resolve a struct
// field's external key. Priority: <tagKey>:"name=..." > json tag name > field
// name; "-" disables the field. tagKey defaults to "structema".
func ResolveRecordKey(sf reflect.StructField, tagKey string) string {
	if tagKey == "" {
		tagKey = "structema"
	}
	if gt := sf.Tag.Get(tagKey); gt != "" {
		if gt == "-" {
			return "-"
		}
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}
