package structema_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	structema "github.com/reoring/structema"
)

func TestIssues_ErrorSummary(t *testing.T) {
	iss := structema.Issues{
		{Path: "/a", Code: structema.CodeInvalidType},
		{Path: "/b", Code: structema.CodeUnknownKey},
		{Path: "/c", Code: structema.CodeRequired},
		{Path: "/d", Code: structema.CodeInvalidEnum},
	}
	s := iss.Error()
	if s == "" {
		t.Fatalf("expected non-empty error summary")
	}
	if !strings.Contains(s, "invalid_type at /a") {
		t.Fatalf("summary should lead with the first issue: %q", s)
	}
	if !strings.Contains(s, "total 4") {
		t.Fatalf("summary should count overflow issues: %q", s)
	}
}

func TestAsIssues_UnwrapsWrappedErrors(t *testing.T) {
	iss := structema.Issues{{Path: "/", Code: structema.CodeParseError}}
	wrapped := fmt.Errorf("loading config: %w", iss)
	got, ok := structema.AsIssues(wrapped)
	if !ok || len(got) != 1 {
		t.Fatalf("expected to recover issues from wrapped error, got %v %v", got, ok)
	}
	if _, ok := structema.AsIssues(nil); ok {
		t.Fatalf("nil error must not yield issues")
	}
}

func TestPrefixIssues_RebasesPaths(t *testing.T) {
	iss := structema.Issues{
		{Path: "/", Code: structema.CodeInvalidType},
		{Path: "/0", Code: structema.CodeInvalidType},
	}
	got := structema.PrefixIssues("/friends", iss)
	if got[0].Path != "/friends" || got[1].Path != "/friends/0" {
		t.Fatalf("unexpected rebased paths: %q %q", got[0].Path, got[1].Path)
	}

	plain := structema.PrefixIssues("/x", errors.New("boom"))
	if len(plain) != 1 || plain[0].Code != structema.CodeParseError || plain[0].Path != "/x" {
		t.Fatalf("non-Issues error should wrap into parse_error: %+v", plain)
	}
}

func TestNotRecordError_NamesType(t *testing.T) {
	err := &structema.NotRecordError{Type: reflect.TypeOf(42)}
	if !strings.Contains(err.Error(), "int") {
		t.Fatalf("message should name the offending type: %q", err.Error())
	}
	if !structema.IsNotRecord(fmt.Errorf("building: %w", err)) {
		t.Fatalf("IsNotRecord should see through wrapping")
	}
	nilErr := &structema.NotRecordError{}
	if !strings.Contains(nilErr.Error(), "nil") {
		t.Fatalf("nil type should render as nil: %q", nilErr.Error())
	}
}
