// Package tagmeta turns struct-tag declarations into structema.Metadata.
// The tag grammar is flat comma-separated items: recognized keys configure
// the resolver, everything else passes through verbatim in Extra.
//
//	Name string `structema:"name=city,required,desc=display name"`
//	Home *Addr  `structema:"default=nil"`
//	Born time.Time `structema:"format=date"`
package tagmeta

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	structema "github.com/reoring/structema"
)

// Parse extracts Metadata from a struct field's tag under tagKey (default
// "structema"). Unrecognized items land in Metadata.Extra.
func Parse(sf reflect.StructField, tagKey string) (structema.Metadata, error) {
	if tagKey == "" {
		tagKey = "structema"
	}
	var meta structema.Metadata
	tag := sf.Tag.Get(tagKey)
	if tag == "" || tag == "-" {
		return meta, nil
	}
	for _, item := range strings.Split(tag, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, val, hasVal := strings.Cut(item, "=")
		switch key {
		case "name":
			meta.Name = val
		case "required":
			t := true
			meta.Required = &t
		case "optional":
			f := false
			meta.Required = &f
		case "default":
			v, err := ParseLiteral(sf.Type, val)
			if err != nil {
				return meta, fmt.Errorf("tagmeta: field %s: bad default %q: %w", sf.Name, val, err)
			}
			meta.SetDefault(v)
		case "missing":
			v, err := ParseLiteral(sf.Type, val)
			if err != nil {
				return meta, fmt.Errorf("tagmeta: field %s: bad missing %q: %w", sf.Name, val, err)
			}
			meta.SetMissing(v)
		case "desc", "description":
			meta.Description = val
		case "format":
			meta.Format = val
		case "ref":
			meta.Ref = val
		default:
			if meta.Extra == nil {
				meta.Extra = map[string]any{}
			}
			if hasVal {
				meta.Extra[key] = val
			} else {
				meta.Extra[key] = true
			}
		}
	}
	return meta, nil
}

// ParseLiteral interprets a tag literal against the field's declared type.
// Pointers are unwrapped; "nil" is the untyped nil literal. Types without a
// literal form keep the raw string.
func ParseLiteral(t reflect.Type, s string) (any, error) {
	if s == "nil" {
		return nil, nil
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return s, nil
	}
	if t == reflect.TypeOf(time.Duration(0)) {
		return time.ParseDuration(s)
	}
	switch t.Kind() {
	case reflect.String:
		return s, nil
	case reflect.Bool:
		return strconv.ParseBool(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseInt(s, 10, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(s, 64)
	}
	return s, nil
}
