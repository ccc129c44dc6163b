// Package typereg labels runtime values with named structural types.
//
// A type is a name bound to a schema document. A value carries the label of a
// type only after it validates against that schema, and one value may carry
// any number of unrelated labels at once: polymorphism is expressed by a value
// satisfying several independent schemas, not by a hierarchy.
//
// Design policy:
// - Keep the public API in the root package; put the validator engine and
// document decoding under internal/.
// - Validation is delegated to a pluggable Validator. The default binding is a
// JSON Schema engine; openapi/ provides an OpenAPI 3 binding.
// - Data errors (a value does not conform) are returned as Issues inside a
// result.Result or a *TypeError. Programmer errors (unknown type names, empty
// case lists, nil handlers) panic through the assert package.
// - Outcomes for maps and pointers are memoized per value identity, without
// keeping the value alive. Mutating a value after it was checked is not
// detected; call Forget to re-check.
//
// Typical usage:
//
//	reg := typereg.New()
//	_ = reg.Register("Positive", map[string]any{"type": "number", "exclusiveMinimum": 0})
//	reg.Check(5, "Positive").IsOk()     // true
//	err := reg.Assert(-1, "Positive")   // *TypeError naming -1 and Positive
//
//	out, err := typereg.Match(reg, v,
//	    typereg.On("Derived1", handleDerived),
//	    typereg.On("Base", handleBase),
//	)
package typereg
