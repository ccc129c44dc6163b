package typereg

import (
	"fmt"

	"github.com/reoring/typereg/assert"
)

// Case pairs a type name with the handler to run when a value validates
// against it.
type Case[R any] struct {
	Type   string
	Handle func(any) R
}

// On builds a Case.
func On[R any](name string, handle func(any) R) Case[R] {
	return Case[R]{Type: name, Handle: handle}
}

// Typed adapts a handler taking a concrete type. The value handed to the
// handler must have that type; anything else fails an assertion.
func Typed[T, R any](fn func(T) R) func(any) R {
	return func(v any) R {
		t, ok := v.(T)
		assert.Ok(ok, func() string { return fmt.Sprintf("typereg: handler expects %T, got %T", t, v) })
		return fn(t)
	}
}

// Match runs the handler of the first case, in the given order, whose type v
// validates against. Cases need not be exclusive: list more specific types
// before more general ones.
//
// When no case matches, Match returns a *NoMatchError carrying the serialized
// value and the type names it is known to satisfy. An empty case list, a nil
// handler or an unregistered type name panics.
func Match[R any](r *Registry, v any, cases ...Case[R]) (R, error) {
	assert.Ok(len(cases) > 0, func() string { return "typereg: Match needs at least one case" })
	for _, c := range cases {
		assert.Ok(c.Handle != nil, func() string { return fmt.Sprintf("typereg: invalid matching: nil handler for %q", c.Type) })
	}
	tried := make([]string, 0, len(cases))
	for _, c := range cases {
		if r.Check(v, c.Type).IsOk() {
			return c.Handle(v), nil
		}
		tried = append(tried, c.Type)
	}
	var zero R
	return zero, &NoMatchError{Value: Describe(v), Tried: tried, Known: r.Known(v)}
}

// MustMatch is Match that panics with an *assert.Error wrapping the
// *NoMatchError.
func MustMatch[R any](r *Registry, v any, cases ...Case[R]) R {
	out, err := Match(r, v, cases...)
	if err != nil {
		assert.FailWith(err)
	}
	return out
}
