package structema

import "context"

// UnknownPolicy controls how unknown keys are handled on load.
type UnknownPolicy int

const (
	UnknownStrict UnknownPolicy = iota // Reject unknown keys with an error.
	UnknownStrip                       // Drop unknown keys.
)

// Meta is the record-level behavioral configuration block. Records opt in by
// implementing MetaProvider; schema options can override it.
type Meta struct {
	Ordered bool          // Dump in declaration order.
	Unknown UnknownPolicy // Unknown-key policy on load.
}

// MetaProvider lets a record type declare its Meta configuration.
type MetaProvider interface {
	SchemaMeta() Meta
}

// Validator is an optional record-level hook executed after a successful
// load, once the record instance has been constructed. Returning an error
// fails the load with a schema_rule issue at "/".
type Validator interface {
	ValidateRecord(ctx context.Context) error
}
