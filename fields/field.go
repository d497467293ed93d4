// Package fields is the field-descriptor catalog: one implementation of
// structema.Field per wire shape. Constructors take Opts, the normalized
// form of a field declaration's metadata; type-driven construction lives in
// derive.
package fields

import (
	"fmt"

	structema "github.com/reoring/structema"
	"github.com/reoring/structema/i18n"
	js "github.com/reoring/structema/jsonschema"
)

// Opts is the normalized per-field configuration shared by every descriptor.
type Opts struct {
	Required    bool
	Default     any
	HasDefault  bool
	Missing     any
	HasMissing  bool
	Description string
	Format      string // wire-format variant where the field supports one
	Extra       map[string]any
}

// Base carries Opts and implements the descriptor accessors.
type Base struct {
	Opt Opts
}

func (b Base) Required() bool { return b.Opt.Required }

func (b Base) DefaultValue() (any, bool) {
	if !b.Opt.HasDefault {
		return nil, false
	}
	return b.Opt.Default, true
}

func (b Base) MissingValue() (any, bool) {
	if !b.Opt.HasMissing {
		return nil, false
	}
	return b.Opt.Missing, true
}

// skeleton prefills the JSON Schema parts every descriptor shares.
func (b Base) skeleton(typ, format string) *js.Schema {
	s := &js.Schema{Type: typ, Format: format, Description: b.Opt.Description}
	if b.Opt.HasDefault {
		s.Default = b.Opt.Default
	}
	if b.Opt.HasMissing && !b.Opt.Required {
		s.Nullable = b.Opt.Missing == nil
	}
	return s
}

func invalidType(expected string, got any) structema.Issues {
	gotType := fmt.Sprintf("%T", got)
	return structema.Issues{structema.Issue{
		Path:    "/",
		Code:    structema.CodeInvalidType,
		Message: i18n.T(structema.CodeInvalidType, map[string]string{"expected": expected, "got": gotType}),
		Params:  map[string]any{"expected": expected, "got": gotType},
	}}
}

func invalidFormat(hint string, cause error) structema.Issues {
	return structema.Issues{structema.Issue{
		Path:    "/",
		Code:    structema.CodeInvalidFormat,
		Message: i18n.T(structema.CodeInvalidFormat, map[string]string{"format": hint}),
		Hint:    hint,
		Cause:   cause,
	}}
}
