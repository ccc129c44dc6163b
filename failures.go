package typereg

import (
	"errors"
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/typereg/i18n"
)

// Failure kinds. Every failure type reports one of them from Discriminant, so
// callers can route failures with enum.Match or result.MatchErr.
const (
	KindUnregistered = "unregistered" // programmer error: type name has no schema
	KindValidation   = "validation"   // data error: value does not conform
	KindNoMatch      = "no_match"     // no case of a match validated
)

// ErrEmptyTypeName is returned when registering under an empty name.
var ErrEmptyTypeName = errors.New("typereg: empty type name")

// UnregisteredTypeError is raised (as a panic) when a type name with no schema
// is checked, asserted or matched.
type UnregisteredTypeError struct {
	Type string
}

func (e *UnregisteredTypeError) Error() string {
	return fmt.Sprintf("typereg: missing schema %q", e.Type)
}

func (e *UnregisteredTypeError) Discriminant() string { return KindUnregistered }

// TypeError reports that a value failed validation against Type. Value is the
// serialized candidate, so the failure can be acted on without re-running
// validation.
type TypeError struct {
	Type   string
	Value  string
	Issues Issues
}

func (e *TypeError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s\nfailed validation against: %q\nwith errors:", e.Value, e.Type)
	for _, it := range e.Issues {
		fmt.Fprintf(b, "\n  - %s at %s: %s", i18n.T(it.Code, map[string]string{"keyword": it.Keyword}), it.Path, it.Message)
	}
	return b.String()
}

func (e *TypeError) Unwrap() error { return e.Issues }

func (e *TypeError) Discriminant() string { return KindValidation }

// NoMatchError reports that none of a match's cases validated. Known lists the
// type names the value is already recorded as satisfying, if any.
type NoMatchError struct {
	Value string
	Tried []string
	Known []string
}

func (e *NoMatchError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "type not matched: %s\ntried: %s", e.Value, strings.Join(e.Tried, ", "))
	if len(e.Known) > 0 {
		fmt.Fprintf(b, "\nit is, however: %s", strings.Join(e.Known, ", "))
	}
	return b.String()
}

func (e *NoMatchError) Discriminant() string { return KindNoMatch }

// Describe serializes v for diagnostics: indented JSON when possible, Go
// syntax otherwise.
func Describe(v any) string {
	b, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}
