package fields

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	js "github.com/reoring/structema/jsonschema"
)

// Integer validates and converts whole numbers. The canonical Go value is
// int64; numeric strings are accepted on load so integers survive positions
// where the wire forces strings (for example map keys).
type Integer struct{ Base }

// NewInteger returns an Integer descriptor.
func NewInteger(o Opts) *Integer { return &Integer{Base{Opt: o}} }

func (f *Integer) Deserialize(ctx context.Context, v any) (any, error) { return toInt64(v) }

func (f *Integer) Serialize(ctx context.Context, v any) (any, error) { return toInt64(v) }

func (f *Integer) JSONSchema() (*js.Schema, error) { return f.skeleton("integer", ""), nil }

func toInt64(v any) (any, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil, invalidFormat("integer", err)
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil, invalidFormat("integer", err)
		}
		return i, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, invalidFormat("integer", nil)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		fl := rv.Float()
		if fl != math.Trunc(fl) || math.IsInf(fl, 0) || math.IsNaN(fl) {
			return nil, invalidType("integer", v)
		}
		return int64(fl), nil
	}
	return nil, invalidType("integer", v)
}

// Float validates and converts real numbers; the canonical Go value is
// float64.
type Float struct{ Base }

// NewFloat returns a Float descriptor.
func NewFloat(o Opts) *Float { return &Float{Base{Opt: o}} }

func (f *Float) Deserialize(ctx context.Context, v any) (any, error) { return toFloat64(v) }

func (f *Float) Serialize(ctx context.Context, v any) (any, error) { return toFloat64(v) }

func (f *Float) JSONSchema() (*js.Schema, error) { return f.skeleton("number", ""), nil }

func toFloat64(v any) (any, error) {
	switch n := v.(type) {
	case json.Number:
		fl, err := n.Float64()
		if err != nil {
			return nil, invalidFormat("number", err)
		}
		return fl, nil
	case string:
		fl, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil, invalidFormat("number", err)
		}
		return fl, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return nil, invalidType("number", v)
}

// String validates text values.
type String struct{ Base }

// NewString returns a String descriptor.
func NewString(o Opts) *String { return &String{Base{Opt: o}} }

func (f *String) Deserialize(ctx context.Context, v any) (any, error) { return toString(v) }

func (f *String) Serialize(ctx context.Context, v any) (any, error) { return toString(v) }

func (f *String) JSONSchema() (*js.Schema, error) { return f.skeleton("string", ""), nil }

func toString(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return nil, invalidType("string", v)
}

// Boolean validates truth values. The strings "true"/"false" are accepted on
// load for the same map-key reason as Integer.
type Boolean struct{ Base }

// NewBoolean returns a Boolean descriptor.
func NewBoolean(o Opts) *Boolean { return &Boolean{Base{Opt: o}} }

func (f *Boolean) Deserialize(ctx context.Context, v any) (any, error) { return toBool(v) }

func (f *Boolean) Serialize(ctx context.Context, v any) (any, error) { return toBool(v) }

func (f *Boolean) JSONSchema() (*js.Schema, error) { return f.skeleton("boolean", ""), nil }

func toBool(v any) (any, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch b {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, invalidType("boolean", v)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), nil
	}
	return nil, invalidType("boolean", v)
}

// Raw passes values through unvalidated in both directions (the Any type).
type Raw struct{ Base }

// NewRaw returns a Raw descriptor.
func NewRaw(o Opts) *Raw { return &Raw{Base{Opt: o}} }

func (f *Raw) Deserialize(ctx context.Context, v any) (any, error) { return v, nil }

func (f *Raw) Serialize(ctx context.Context, v any) (any, error) { return v, nil }

func (f *Raw) JSONSchema() (*js.Schema, error) { return f.skeleton("", ""), nil }

// Dict validates free-form string-keyed mappings without inspecting values.
// For typed key/value validation use Map.
type Dict struct{ Base }

// NewDict returns a Dict descriptor.
func NewDict(o Opts) *Dict { return &Dict{Base{Opt: o}} }

func (f *Dict) Deserialize(ctx context.Context, v any) (any, error) { return toStringMap(v) }

func (f *Dict) Serialize(ctx context.Context, v any) (any, error) { return toStringMap(v) }

func (f *Dict) JSONSchema() (*js.Schema, error) { return f.skeleton("object", ""), nil }

func toStringMap(v any) (any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, vv := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, invalidType("object", v)
			}
			out[ks] = vv
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	}
	return nil, invalidType("object", v)
}
