package structema

// Package structema derives validating, serializing schemas from plain Go
// record structs via reflection.
//
// - Field descriptors (fields/) mirror the wire behavior of one struct field
// - derive.Field maps a reflect.Type (+ default + metadata) to a descriptor
// - derive.SchemaOf assembles a *Schema whose Load builds the record struct
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public runtime types in the root package; the resolver lives in
//   derive/, the field catalog in fields/, codecs under codec/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	person := derive.MustDefine[Person]()
//	p, err := person.Load(ctx, map[string]any{"name": "Ramirez"})
//
//	wire, err := codec.JSONFor(person).Dumps(ctx, p)
