// Package assert provides process-wide assertion helpers for programmer
// errors. A failed assertion panics with *Error; it is never meant to be
// handled as a data error. Top-level boundaries (tests, request handlers)
// may convert it back into an error with Recover.
package assert

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
)

// Error is the panic value of a failed assertion.
type Error struct {
	Message string
	Err     error // set by FailWith
	Stack   []byte
}

func (e *Error) Error() string { return "ASSERTION: " + e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Discriminant lets assertion failures participate in enum dispatch.
func (e *Error) Discriminant() string { return "assertion" }

// Fail panics with an *Error. msg is evaluated lazily and may be omitted.
func Fail(msg ...func() string) {
	panic(&Error{Message: message(msg), Stack: debug.Stack()})
}

// Failf panics with a formatted *Error.
func Failf(format string, args ...any) {
	panic(&Error{Message: fmt.Sprintf(format, args...), Stack: debug.Stack()})
}

// FailWith panics with err wrapped in an *Error, keeping err reachable
// through errors.As.
func FailWith(err error) {
	panic(&Error{Message: err.Error(), Err: err, Stack: debug.Stack()})
}

// Ok fails unless cond holds.
func Ok(cond bool, msg ...func() string) {
	if !cond {
		Fail(msg...)
	}
}

// Anything fails when v is nil (including typed nil pointers, maps, slices).
func Anything(v any, msg ...func() string) {
	if isNil(v) {
		Fail(orInspect(msg, v))
	}
}

// IsKind fails unless v's dynamic kind is k.
func IsKind(v any, k reflect.Kind, msg ...func() string) {
	if v == nil || reflect.TypeOf(v).Kind() != k {
		Fail(orInspect(msg, v))
	}
}

// IsObject fails unless v is object-like: a map, a struct or a pointer to one.
func IsObject(v any, msg ...func() string) {
	if _, ok := objectValue(v); !ok {
		Fail(orInspect(msg, v))
	}
}

// HasProperty fails unless v is object-like and has the named property
// (a map key, or an exported struct field or its json name).
func HasProperty(v any, prop string, msg ...func() string) {
	if _, ok := property(v, prop); !ok {
		Fail(orInspect(msg, v))
	}
}

// HasPropertyType fails unless the named property exists and its value has kind k.
func HasPropertyType(v any, prop string, k reflect.Kind, msg ...func() string) {
	p, ok := property(v, prop)
	if !ok || !p.IsValid() || p.Kind() != k {
		Fail(orInspect(msg, v))
	}
}

// Recover converts an assertion panic into *errp. Other panics propagate.
// Use as: defer assert.Recover(&err).
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if err, ok := r.(error); ok {
		var ae *Error
		if errors.As(err, &ae) {
			*errp = err
			return
		}
	}
	panic(r)
}

// Catch runs fn and returns the assertion failure it raised, if any.
func Catch(fn func()) (err error) {
	defer Recover(&err)
	fn()
	return nil
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func message(msg []func() string) string {
	if len(msg) == 0 || msg[0] == nil {
		return ""
	}
	return msg[0]()
}

func orInspect(msg []func() string, v any) func() string {
	if len(msg) > 0 && msg[0] != nil {
		return msg[0]
	}
	return func() string { return fmt.Sprintf("%+v", v) }
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func objectValue(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return rv, true
	}
	return reflect.Value{}, false
}

func property(v any, prop string) (reflect.Value, bool) {
	rv, ok := objectValue(v)
	if !ok {
		return reflect.Value{}, false
	}
	if rv.Kind() == reflect.Map {
		if rv.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		e := rv.MapIndex(reflect.ValueOf(prop).Convert(rv.Type().Key()))
		if !e.IsValid() {
			return reflect.Value{}, false
		}
		if e.Kind() == reflect.Interface {
			e = e.Elem()
		}
		return e, true
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Name == prop || jsonName(f) == prop {
			fv := rv.Field(i)
			if fv.Kind() == reflect.Interface {
				fv = fv.Elem()
			}
			return fv, true
		}
	}
	return reflect.Value{}, false
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	return tag
}
