package structema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
	CodeParseError    = "parse_error"
	CodeUnresolvedRef = "unresolved_ref"
	// Record-level validation hook failures (the whole-record pass)
	CodeSchemaRule = "schema_rule"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /friends/2/name).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"expected":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// PrefixIssues rebases every issue path under the given JSON Pointer segment.
// Non-Issues errors are wrapped into a single parse_error issue at the prefix.
func PrefixIssues(prefix string, err error) Issues {
	if iss, ok := AsIssues(err); ok {
		out := make(Issues, 0, len(iss))
		for _, it := range iss {
			p := it.Path
			if p == "/" || p == "" {
				p = prefix
			} else {
				p = prefix + p
			}
			it.Path = p
			out = append(out, it)
		}
		return out
	}
	return Issues{Issue{Path: prefix, Code: CodeParseError, Message: err.Error(), Cause: err}}
}

// NotRecordError reports that a type cannot be used as a record struct. It is
// a distinct error kind so callers can tell schema-construction misuse apart
// from data validation failures.
type NotRecordError struct {
	Type reflect.Type
}

func (e *NotRecordError) Error() string {
	name := "nil"
	if e.Type != nil {
		name = e.Type.String()
	}
	return fmt.Sprintf("structema: %s is not a record struct and cannot be turned into one", name)
}

// IsNotRecord reports whether err is (or wraps) a NotRecordError.
func IsNotRecord(err error) bool {
	var nr *NotRecordError
	return errors.As(err, &nr)
}
