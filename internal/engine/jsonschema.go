package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Draft selects the JSON Schema dialect assumed for documents without "$schema".
type Draft int

const (
	Draft7 Draft = iota // default; matches what most hand-written type documents target
	Draft4
	Draft6
	Draft2019
	Draft2020
)

func (d Draft) jsonDraft() *jsonschema.Draft {
	switch d {
	case Draft4:
		return jsonschema.Draft4
	case Draft6:
		return jsonschema.Draft6
	case Draft2019:
		return jsonschema.Draft2019
	case Draft2020:
		return jsonschema.Draft2020
	default:
		return jsonschema.Draft7
	}
}

const (
	resourceBase = "mem://" + typesPath
	typesPath    = "/types/"
)

// ResourceURL is the in-memory location of a type document. Documents refer
// to each other relatively, e.g. {"$ref": "Base.json"}.
func ResourceURL(name string) string { return resourceBase + url.PathEscape(name) + ".json" }

// Compiler compiles type documents. Every compilation sees the documents of all
// previously committed types, so $ref between registered types resolves, but a
// failed compilation never changes what later compilations see.
//
// Compiler is not safe for concurrent use; callers serialize access.
type Compiler struct {
	draft        Draft
	assertFormat bool
	docs         map[string][]byte
}

// NewCompiler returns an empty Compiler.
func NewCompiler(d Draft, assertFormat bool) *Compiler {
	return &Compiler{draft: d, assertFormat: assertFormat, docs: map[string][]byte{}}
}

// Compile compiles doc (raw JSON) as the type name and commits it on success.
func (c *Compiler) Compile(name string, doc []byte) (*Validator, error) {
	out, err := c.CompileAll(name, doc)
	if err != nil {
		return nil, err
	}
	return out[name], nil
}

// CompileAll compiles doc as the type name together with every committed type
// that references it, directly or through other types, so dependents embed the
// new document. Nothing is committed unless all of them compile. The result
// maps each compiled name to its validator.
func (c *Compiler) CompileAll(name string, doc []byte) (map[string]*Validator, error) {
	docs := make(map[string][]byte, len(c.docs)+1)
	for n, d := range c.docs {
		docs[n] = d
	}
	docs[name] = append([]byte(nil), doc...)

	v, err := c.compile(docs, name)
	if err != nil {
		return nil, err
	}
	out := map[string]*Validator{name: v}
	for _, dep := range dependents(docs, name) {
		dv, err := c.compile(docs, dep)
		if err != nil {
			return nil, fmt.Errorf("engine: recompile %q after %q changed: %w", dep, name, err)
		}
		out[dep] = dv
	}
	c.docs = docs
	return out, nil
}

func (c *Compiler) compile(docs map[string][]byte, name string) (*Validator, error) {
	jc := jsonschema.NewCompiler()
	jc.Draft = c.draft.jsonDraft()
	jc.AssertFormat = c.assertFormat
	jc.LoadURL = func(s string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("engine: %s does not name a registered type", s)
	}
	names := make([]string, 0, len(docs))
	for n := range docs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := jc.AddResource(ResourceURL(n), bytes.NewReader(docs[n])); err != nil {
			if n == name {
				return nil, err
			}
			return nil, fmt.Errorf("engine: reload %q: %w", n, err)
		}
	}
	s, err := jc.Compile(ResourceURL(name))
	if err != nil {
		return nil, err
	}
	return &Validator{s: s}, nil
}

// dependents returns, sorted, every type in docs whose document reaches name
// through $ref.
func dependents(docs map[string][]byte, name string) []string {
	referrers := map[string][]string{}
	for n, d := range docs {
		if n == name {
			continue
		}
		for _, target := range refTargets(n, d) {
			referrers[target] = append(referrers[target], n)
		}
	}
	seen := map[string]bool{name: true}
	queue := []string{name}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, r := range referrers[cur] {
			if seen[r] {
				continue
			}
			seen[r] = true
			out = append(out, r)
			queue = append(queue, r)
		}
	}
	sort.Strings(out)
	return out
}

// refTargets lists the registered types a document points at with $ref.
func refTargets(name string, doc []byte) []string {
	var v any
	if err := gojson.Unmarshal(doc, &v); err != nil {
		return nil
	}
	base, err := url.Parse(ResourceURL(name))
	if err != nil {
		return nil
	}
	var out []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			for k, e := range t {
				if s, ok := e.(string); ok && k == "$ref" {
					if target, ok := refType(base, s); ok {
						out = append(out, target)
					}
					continue
				}
				walk(e)
			}
		case []any:
			for _, e := range t {
				walk(e)
			}
		}
	}
	walk(v)
	return out
}

func refType(base *url.URL, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(u)
	if abs.Scheme != "mem" || !strings.HasPrefix(abs.Path, typesPath) || !strings.HasSuffix(abs.Path, ".json") {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(abs.Path, typesPath), ".json"), true
}

// Validator validates JSON-native values against one compiled document.
type Validator struct {
	s *jsonschema.Schema
}

// Validate returns nil when v conforms, otherwise one issue per failing leaf
// keyword. v must already be JSON-native (see JSONValue).
func (v *Validator) Validate(value any) []SimpleIssue {
	err := v.s.Validate(value)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []SimpleIssue{{Code: CodeInvalidType, Path: "/", Message: err.Error()}}
	}
	var out []SimpleIssue
	collectLeaves(ve, &out)
	return out
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]SimpleIssue) {
	if len(ve.Causes) == 0 {
		kw := lastKeyword(ve.KeywordLocation)
		*out = append(*out, SimpleIssue{
			Code:    CodeForKeyword(kw),
			Path:    pointer(ve.InstanceLocation),
			Keyword: kw,
			Message: ve.Message,
		})
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}
