// Package result is a small success/failure channel. A Result is either Ok,
// holding a value, or Err, holding a non-nil error. Asking a Result for the
// payload of the other tag is a programmer error and fails an assertion.
package result

import (
	"errors"
	"fmt"

	"github.com/reoring/typereg/assert"
	"github.com/reoring/typereg/enum"
)

// Unit is the payload of results that only carry success.
type Unit = struct{}

// Result is a tagged union of Ok(value) and Err(error).
type Result[T any] struct {
	val T
	err error
}

// Ok wraps v as a success.
func Ok[T any](v T) Result[T] { return Result[T]{val: v} }

// Err wraps err as a failure. err must be non-nil.
func Err[T any](err error) Result[T] {
	assert.Ok(err != nil, func() string { return "result.Err called with nil error" })
	return Result[T]{err: err}
}

// Of builds a Result from a conventional (value, error) pair.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return Result[T]{err: err}
	}
	return Result[T]{val: v}
}

// IsOk reports whether r is a success.
func (r Result[T]) IsOk() bool { return r.err == nil }

// IsErr reports whether r is a failure.
func (r Result[T]) IsErr() bool { return r.err != nil }

// Value returns the success payload; it fails an assertion on Err.
func (r Result[T]) Value() T {
	assert.Ok(r.err == nil, func() string { return fmt.Sprintf("Value() on Err result: %v", r.err) })
	return r.val
}

// Err returns the failure payload; it fails an assertion on Ok.
func (r Result[T]) Err() error {
	assert.Ok(r.err != nil, func() string { return fmt.Sprintf("Err() on Ok result: %+v", r.val) })
	return r.err
}

// Get returns the conventional (value, error) pair.
func (r Result[T]) Get() (T, error) { return r.val, r.err }

func (r Result[T]) String() string {
	if r.err != nil {
		return fmt.Sprintf("Err(%v)", r.err)
	}
	return fmt.Sprintf("Ok(%+v)", r.val)
}

// Flatten collapses a Result nested in Ok into the inner Result, keeping the
// inner tag. An outer Err stays Err.
func Flatten[T any](r Result[Result[T]]) Result[T] {
	if r.err != nil {
		return Result[T]{err: r.err}
	}
	return r.val
}

// Match invokes exactly one of onOk and onErr.
func Match[T, R any](r Result[T], onOk func(T) R, onErr func(error) R) R {
	if r.err == nil {
		return onOk(r.val)
	}
	return onErr(r.err)
}

// MatchErr is Match with the error routed through enum dispatch, so that
// errors carrying a discriminant select their handler by name.
func MatchErr[T, R any](r Result[T], onOk func(T) R, cases enum.Cases[R]) R {
	if r.err == nil {
		return onOk(r.val)
	}
	return enum.Match(r.err, cases)
}

// Map transforms the success payload, passing failures through.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Result[U]{val: fn(r.val)}
}

// Try runs fn and captures its outcome. Panics, including assertion
// failures, are not captured.
func Try[T any](fn func() (T, error)) Result[T] {
	return Of(fn())
}

// Async runs fn on a new goroutine; the channel yields its Result once and is
// then closed.
func Async[T any](fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		ch <- Try(fn)
	}()
	return ch
}

// Collect turns a slice of Results into a Result of the slice. Any Err makes
// the whole Err, joining every failure in order.
func Collect[T any](rs []Result[T]) Result[[]T] {
	vals := make([]T, 0, len(rs))
	var errs []error
	for _, r := range rs {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		vals = append(vals, r.val)
	}
	if len(errs) > 0 {
		return Result[[]T]{err: errors.Join(errs...)}
	}
	return Result[[]T]{val: vals}
}
