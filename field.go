package structema

import (
	"context"

	js "github.com/reoring/structema/jsonschema"
)

// Field prescribes how one record field is validated, serialized, and
// deserialized. Implementations live in fields/ and enumfield/; resolution
// from a reflect.Type lives in derive/.
type Field interface {
	// Deserialize transforms a wire value into the field's canonical Go value.
	// Errors are reported as Issues with paths relative to the field ("/").
	Deserialize(ctx context.Context, v any) (any, error)
	// Serialize transforms a record value into its wire representation.
	Serialize(ctx context.Context, v any) (any, error)

	// Required reports whether the key must be present on load.
	Required() bool
	// DefaultValue returns the declared default, if any.
	DefaultValue() (any, bool)
	// MissingValue returns the load-time fallback applied when the key is
	// absent, if any.
	MissingValue() (any, bool)

	// JSONSchema projects the field into a JSON Schema representation.
	JSONSchema() (*js.Schema, error)
}

// IsNullable reports whether f accepts an explicit null: true when its
// load-time fallback is a declared nil, which is how optional (pointer)
// types resolve.
func IsNullable(f Field) bool {
	mv, ok := f.MissingValue()
	return ok && mv == nil
}

// RecordRef is the face of a nested record descriptor that schema export
// needs: the name behind its "$ref" and the inner schema it resolves to.
type RecordRef interface {
	RecordName() string
	Schema() (*Schema, error)
}

// RecordRefsOf returns the record references reachable from a descriptor:
// the descriptor itself when it is one, otherwise whatever a container
// reports for its element descriptors.
func RecordRefsOf(f Field) []RecordRef {
	if r, ok := f.(RecordRef); ok {
		return []RecordRef{r}
	}
	if c, ok := f.(interface{ RecordRefs() []RecordRef }); ok {
		return c.RecordRefs()
	}
	return nil
}
