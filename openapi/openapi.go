// Package openapi binds typereg to OpenAPI 3 schema objects. Use it when type
// documents are written in the OpenAPI dialect (nullable, exclusiveMinimum as
// a boolean, ...) or to register every component schema of an API document.
package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/reoring/typereg"
)

// Options configures the binding.
type Options struct {
	// FailFast stops at the first error instead of collecting all of them.
	FailFast bool
	// SkipSchemaValidation skips checking the schema document itself at
	// compile time.
	SkipSchemaValidation bool
}

// Validator compiles OpenAPI 3 schema objects.
type Validator struct {
	opts Options
}

// New returns an OpenAPI binding for typereg.Options.Validator.
func New(opt ...Options) *Validator {
	v := &Validator{}
	if len(opt) > 0 {
		v.opts = opt[0]
	}
	return v
}

// Compile implements typereg.Validator.
func (v *Validator) Compile(name string, doc any) (typereg.Schema, error) {
	raw, err := typereg.DocumentBytes(doc)
	if err != nil {
		return nil, err
	}
	s := &openapi3.Schema{}
	if err := s.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("openapi: %s: %w", name, err)
	}
	if !v.opts.SkipSchemaValidation {
		if err := s.Validate(context.Background()); err != nil {
			return nil, fmt.Errorf("openapi: %s: %w", name, err)
		}
	}
	return v.wrap(s), nil
}

func (v *Validator) wrap(s *openapi3.Schema) typereg.Schema {
	var opts []openapi3.SchemaValidationOption
	if !v.opts.FailFast {
		opts = append(opts, openapi3.MultiErrors())
	}
	return &schema{s: s, opts: opts}
}

type schema struct {
	s    *openapi3.Schema
	opts []openapi3.SchemaValidationOption
}

func (s *schema) Validate(v any) typereg.Issues {
	jv, err := typereg.JSONValue(v)
	if err != nil {
		return typereg.Issues{{Path: "/", Code: typereg.CodeInvalidType, Message: err.Error()}}
	}
	jv, _ = floats(jv)
	err = s.s.VisitJSON(jv, s.opts...)
	if err == nil {
		return nil
	}
	var out typereg.Issues
	collect(err, &out)
	return out
}

// floats replaces json.Number leaves with float64, the only number type the
// OpenAPI engine compares. Containers are copied only when a leaf changes.
func floats(v any) (any, bool) {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
	case []any:
		var cp []any
		for i, e := range t {
			ne, changed := floats(e)
			if changed && cp == nil {
				cp = make([]any, len(t))
				copy(cp, t[:i])
			}
			if cp != nil {
				cp[i] = ne
			}
		}
		if cp != nil {
			return cp, true
		}
	case map[string]any:
		var cp map[string]any
		for k, e := range t {
			ne, changed := floats(e)
			if changed && cp == nil {
				cp = make(map[string]any, len(t))
				for k2, e2 := range t {
					cp[k2] = e2
				}
			}
			if cp != nil {
				cp[k] = ne
			}
		}
		if cp != nil {
			return cp, true
		}
	}
	return v, false
}

func collect(err error, out *typereg.Issues) {
	var me openapi3.MultiError
	if errors.As(err, &me) {
		for _, e := range me {
			collect(e, out)
		}
		return
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		*out = append(*out, typereg.Issue{
			Path:    pointer(se.JSONPointer()),
			Code:    codeForField(se.SchemaField),
			Keyword: se.SchemaField,
			Message: se.Reason,
		})
		return
	}
	*out = append(*out, typereg.Issue{Path: "/", Code: typereg.CodeInvalidValue, Message: err.Error()})
}

func pointer(parts []string) string {
	if len(parts) == 0 {
		return "/"
	}
	esc := make([]string, len(parts))
	for i, p := range parts {
		esc[i] = strings.ReplaceAll(strings.ReplaceAll(p, "~", "~0"), "/", "~1")
	}
	return "/" + strings.Join(esc, "/")
}

var fieldCodes = map[string]string{
	"type":                 typereg.CodeInvalidType,
	"nullable":             typereg.CodeInvalidType,
	"required":             typereg.CodeRequired,
	"additionalProperties": typereg.CodeUnknownKey,
	"properties":           typereg.CodeUnknownKey,
	"minimum":              typereg.CodeTooSmall,
	"exclusiveMinimum":     typereg.CodeTooSmall,
	"minItems":             typereg.CodeTooSmall,
	"minProperties":        typereg.CodeTooSmall,
	"maximum":              typereg.CodeTooBig,
	"exclusiveMaximum":     typereg.CodeTooBig,
	"maxItems":             typereg.CodeTooBig,
	"maxProperties":        typereg.CodeTooBig,
	"minLength":            typereg.CodeTooShort,
	"maxLength":            typereg.CodeTooLong,
	"pattern":              typereg.CodePattern,
	"enum":                 typereg.CodeInvalidEnum,
	"format":               typereg.CodeInvalidFormat,
	"oneOf":                typereg.CodeUnionAmbiguous,
	"anyOf":                typereg.CodeUnionNoMatch,
}

func codeForField(f string) string {
	if c, ok := fieldCodes[f]; ok {
		return c
	}
	return typereg.CodeInvalidValue
}

// RegisterComponents loads an OpenAPI 3 document (JSON or YAML) and registers
// every entry of components.schemas in reg under its component name, with
// $refs between components resolved. It returns the registered names, sorted.
func RegisterComponents(reg *typereg.Registry, data []byte, opt ...Options) ([]string, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load: %w", err)
	}
	v := New(opt...)
	if !v.opts.SkipSchemaValidation {
		if err := doc.Validate(context.Background()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if doc.Components == nil {
		return nil, nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for n := range doc.Components.Schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		ref := doc.Components.Schemas[n]
		if ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("openapi: component %q has no schema", n)
		}
		if err := reg.RegisterSchema(n, v.wrap(ref.Value)); err != nil {
			return nil, err
		}
	}
	return names, nil
}
