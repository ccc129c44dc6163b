package typereg

import (
	"encoding/json"
	"sync"

	gojson "github.com/goccy/go-json"

	eng "github.com/reoring/typereg/internal/engine"
)

// Validator is the structural validator binding: it compiles a schema
// document into a Schema. Any structural schema engine can be plugged in.
type Validator interface {
	// Compile compiles doc as the schema of the type name. doc is a decoded
	// document (map[string]any, bool, a typed model such as *jsonschema.Schema)
	// or raw JSON bytes.
	Compile(name string, doc any) (Schema, error)
}

// DependentCompiler is implemented by validators whose schemas embed the
// schemas they reference. CompileAll compiles doc as name and recompiles every
// previously compiled type that references name, directly or transitively. It
// returns all of them keyed by type name, or an error and no changes.
type DependentCompiler interface {
	CompileAll(name string, doc any) (map[string]Schema, error)
}

// Schema is a compiled schema bound to one type name.
type Schema interface {
	// Validate returns nil (or an empty list) when v conforms.
	Validate(v any) Issues
}

// Draft selects the JSON Schema dialect assumed for documents without "$schema".
type Draft = eng.Draft

const (
	Draft7    = eng.Draft7
	Draft4    = eng.Draft4
	Draft6    = eng.Draft6
	Draft2019 = eng.Draft2019
	Draft2020 = eng.Draft2020
)

// NewJSONSchemaValidator returns the default binding, backed by a JSON Schema
// engine. Types compiled by the same validator share one resource space and
// may reference each other with relative refs such as {"$ref": "Base.json"}.
func NewJSONSchemaValidator(d Draft, assertFormat bool) Validator {
	return &jsonSchemaValidator{c: eng.NewCompiler(d, assertFormat)}
}

type jsonSchemaValidator struct {
	mu sync.Mutex
	c  *eng.Compiler
}

func (v *jsonSchemaValidator) Compile(name string, doc any) (Schema, error) {
	b, err := DocumentBytes(doc)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	cv, err := v.c.Compile(name, b)
	if err != nil {
		return nil, err
	}
	return jsonSchema{v: cv}, nil
}

func (v *jsonSchemaValidator) CompileAll(name string, doc any) (map[string]Schema, error) {
	b, err := DocumentBytes(doc)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	cvs, err := v.c.CompileAll(name, b)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Schema, len(cvs))
	for n, cv := range cvs {
		out[n] = jsonSchema{v: cv}
	}
	return out, nil
}

type jsonSchema struct {
	v *eng.Validator
}

func (s jsonSchema) Validate(v any) Issues {
	jv, err := JSONValue(v)
	if err != nil {
		return Issues{{Path: "/", Code: CodeInvalidType, Message: err.Error()}}
	}
	return fromEngineIssues(s.v.Validate(jv))
}

// DocumentBytes returns doc as raw JSON. Byte slices and json.RawMessage are
// taken as already encoded.
func DocumentBytes(doc any) ([]byte, error) {
	switch t := doc.(type) {
	case []byte:
		return t, nil
	case json.RawMessage:
		return t, nil
	}
	return gojson.Marshal(doc)
}

// JSONValue converts v into the JSON data model (nil, bool, string, float64,
// json.Number, []any, map[string]any). Values already in that model are
// returned as is; others are converted honoring json struct tags.
func JSONValue(v any) (any, error) { return eng.JSONValue(v) }
