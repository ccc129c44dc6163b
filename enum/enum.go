// Package enum dispatches on the discriminant of a value. It is the building
// block behind structured error handling in the result package: an error that
// carries its own discriminant can be routed to a handler by name.
package enum

import (
	"errors"
	"fmt"
	"sort"

	"github.com/reoring/typereg/assert"
)

// Others is the fallback case key. Its handler receives the whole value.
const Others = "_"

// Discriminated is implemented by values that name their own variant.
type Discriminated interface {
	Discriminant() string
}

// Cases maps discriminants to handlers.
type Cases[R any] map[string]func(any) R

// Of splits e into its discriminant and payload:
//   - a string is its own discriminant and payload;
//   - a map[string]any with exactly one key yields that key and its value;
//   - a Discriminated value (or an error wrapping one) yields Discriminant() and itself.
//
// ok is false for anything else.
func Of(e any) (name string, payload any, ok bool) {
	switch t := e.(type) {
	case string:
		return t, t, true
	case map[string]any:
		if len(t) != 1 {
			return "", nil, false
		}
		for k, v := range t {
			return k, v, true
		}
	case Discriminated:
		return t.Discriminant(), t, true
	case error:
		var d Discriminated
		if errors.As(t, &d) {
			return d.Discriminant(), t, true
		}
	}
	return "", nil, false
}

// Match invokes the handler registered for e's discriminant, falling back to
// Others. A value without a discriminant, or one with no matching case and no
// fallback, is a programmer error and fails an assertion.
func Match[R any](e any, cases Cases[R]) R {
	name, payload, ok := Of(e)
	if ok {
		if h, found := cases[name]; found {
			assert.Ok(h != nil, func() string { return fmt.Sprintf("nil handler for case %q", name) })
			return h(payload)
		}
	}
	if h, found := cases[Others]; found && h != nil {
		return h(e)
	}
	if !ok {
		assert.Failf("%+v has no discriminant", e)
	}
	assert.Failf("missing case %q in %v", name, cases.names())
	panic("unreachable")
}

func (c Cases[R]) names() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
