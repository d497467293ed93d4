package fields

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	js "github.com/reoring/structema/jsonschema"
)

// Decimal validates arbitrary-precision decimal numbers. The wire form is a
// string so precision survives JSON round-trips.
type Decimal struct{ Base }

// NewDecimal returns a Decimal descriptor.
func NewDecimal(o Opts) *Decimal { return &Decimal{Base{Opt: o}} }

func (f *Decimal) Deserialize(ctx context.Context, v any) (any, error) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, nil
	case string:
		out, err := decimal.NewFromString(d)
		if err != nil {
			return nil, invalidFormat("decimal string", err)
		}
		return out, nil
	case json.Number:
		out, err := decimal.NewFromString(d.String())
		if err != nil {
			return nil, invalidFormat("decimal string", err)
		}
		return out, nil
	case float64:
		return decimal.NewFromFloat(d), nil
	case int:
		return decimal.NewFromInt(int64(d)), nil
	case int64:
		return decimal.NewFromInt(d), nil
	}
	return nil, invalidType("decimal", v)
}

func (f *Decimal) Serialize(ctx context.Context, v any) (any, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return nil, invalidType("decimal.Decimal", v)
	}
	return d.String(), nil
}

func (f *Decimal) JSONSchema() (*js.Schema, error) { return f.skeleton("string", "decimal"), nil }

// UUID validates RFC 4122 identifiers wired as canonical strings.
type UUID struct{ Base }

// NewUUID returns a UUID descriptor.
func NewUUID(o Opts) *UUID { return &UUID{Base{Opt: o}} }

func (f *UUID) Deserialize(ctx context.Context, v any) (any, error) {
	switch u := v.(type) {
	case uuid.UUID:
		return u, nil
	case string:
		out, err := uuid.Parse(u)
		if err != nil {
			return nil, invalidFormat("uuid string", err)
		}
		return out, nil
	case []byte:
		out, err := uuid.FromBytes(u)
		if err != nil {
			return nil, invalidFormat("uuid bytes", err)
		}
		return out, nil
	}
	return nil, invalidType("uuid", v)
}

func (f *UUID) Serialize(ctx context.Context, v any) (any, error) {
	u, ok := v.(uuid.UUID)
	if !ok {
		return nil, invalidType("uuid.UUID", v)
	}
	return u.String(), nil
}

func (f *UUID) JSONSchema() (*js.Schema, error) { return f.skeleton("string", "uuid"), nil }
