package jsonschema

// Schema is a minimal JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	// Core
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Enum        []any  `json:"enum,omitempty"`

	// Reference by record name (used to cut recursive record graphs); the
	// referenced definitions live in the document root's Defs
	Ref  string             `json:"$ref,omitempty"`
	Defs map[string]*Schema `json:"$defs,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Map values (additional properties with a concrete value schema use
	// AdditionalProperties; Keys documents the key schema when it is not a
	// plain string)
	Keys *Schema `json:"x-keys,omitempty"`

	// Nullability (pointer-optional fields)
	Nullable bool `json:"nullable,omitempty"`
}
