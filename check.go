package typereg

import (
	"fmt"

	"github.com/reoring/typereg/assert"
	"github.com/reoring/typereg/result"
)

// schema returns the schema of name. An unregistered name is a programmer
// error: it panics with an *assert.Error wrapping *UnregisteredTypeError.
func (r *Registry) schema(name string) Schema {
	r.mu.RLock()
	s, ok := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		assert.FailWith(&UnregisteredTypeError{Type: name})
	}
	return s
}

// Check validates v against the type name. Object-shaped values (non-nil
// maps and pointers) are validated at most once per name; the outcome is
// remembered for as long as the value lives. Other values are validated on
// every call.
//
// The result is Ok, or Err holding the validator's Issues. Checking an
// unregistered name panics.
func (r *Registry) Check(v any, name string) result.Result[result.Unit] {
	r.schema(name)
	iss, cached, hit := r.cache.lookupOrValidate(v, name, func() Issues {
		r.validations.Add(1)
		// Re-read under the entry lock so a replacement published before
		// this point is the one validated and recorded.
		return r.schema(name).Validate(v)
	})
	if cached {
		if hit {
			r.hits.Add(1)
		} else {
			r.misses.Add(1)
		}
	}
	if len(iss) == 0 {
		return result.Ok(result.Unit{})
	}
	return result.Err[result.Unit](iss)
}

// Is reports whether v validates against name.
func (r *Registry) Is(v any, name string) bool {
	return r.Check(v, name).IsOk()
}

// Assert checks v against each name in order and returns a *TypeError for the
// first one that fails. At least one name is required.
func (r *Registry) Assert(v any, names ...string) error {
	assert.Ok(len(names) > 0, func() string { return "typereg: Assert needs at least one type name" })
	for _, n := range names {
		res := r.Check(v, n)
		if res.IsOk() {
			continue
		}
		iss, _ := AsIssues(res.Err())
		return &TypeError{Type: n, Value: Describe(v), Issues: iss}
	}
	return nil
}

// MustAssert is Assert that panics with an *assert.Error wrapping the
// *TypeError.
func (r *Registry) MustAssert(v any, names ...string) {
	if err := r.Assert(v, names...); err != nil {
		assert.FailWith(err)
	}
}

// Known returns the type names v has been recorded as satisfying, in the order
// they were first checked. It is always empty for scalar-shaped values.
func (r *Registry) Known(v any) []string {
	return r.cache.known(v)
}

// Forget drops every outcome recorded for v. Use it after mutating a value
// that was already checked.
func (r *Registry) Forget(v any) {
	r.cache.forget(v)
}

func (r *Registry) String() string {
	st := r.Stats()
	return fmt.Sprintf("typereg.Registry{types: %d, entries: %d}", st.Types, st.CacheEntries)
}
