package typereg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	eng "github.com/reoring/typereg/internal/engine"
)

// Options configures a Registry.
type Options struct {
	// Validator compiles schema documents. Defaults to the JSON Schema binding
	// configured by Draft and AssertFormat.
	Validator Validator
	// Logger receives one debug line per registration. Defaults to a no-op logger.
	Logger *zap.Logger
	// Draft is the JSON Schema dialect of the default binding.
	Draft Draft
	// AssertFormat makes the default binding enforce "format" keywords.
	AssertFormat bool
}

// Registry maps type names to compiled schemas and owns the association cache
// of the values checked against them.
//
// Registration is expected to happen at startup and must complete before
// concurrent checks start; checks may then run from any goroutine.
type Registry struct {
	mu        sync.RWMutex
	schemas   map[string]Schema
	validator Validator
	log       *zap.Logger
	cache     *cache

	validations atomic.Uint64
	hits        atomic.Uint64
	misses      atomic.Uint64
}

// New returns an empty Registry.
func New(opt ...Options) *Registry {
	var o Options
	if len(opt) > 0 {
		o = opt[0]
	}
	if o.Validator == nil {
		o.Validator = NewJSONSchemaValidator(o.Draft, o.AssertFormat)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return &Registry{
		schemas:   map[string]Schema{},
		validator: o.Validator,
		log:       o.Logger,
		cache:     newCache(),
	}
}

// Register compiles doc and binds it to name, replacing any previous schema.
// When the validator is a DependentCompiler, registered types that reference
// name are recompiled and replaced too. A document that fails to compile
// leaves the registry unchanged.
func (r *Registry) Register(name string, doc any) error {
	if name == "" {
		return ErrEmptyTypeName
	}
	r.mu.Lock()
	compiled, err := r.compile(name, doc)
	if err == nil && compiled[name] == nil {
		err = errors.New("validator returned no schema")
	}
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("typereg: register %q: %w", name, err)
	}
	var replaced []string
	if r.install(name, compiled[name]) {
		replaced = append(replaced, name)
	}
	deps := make([]string, 0, len(compiled)-1)
	for n := range compiled {
		if _, ok := r.schemas[n]; ok && n != name {
			deps = append(deps, n)
		}
	}
	sort.Strings(deps)
	for _, n := range deps {
		r.schemas[n] = compiled[n]
		replaced = append(replaced, n)
	}
	r.mu.Unlock()

	if len(deps) > 0 {
		r.log.Debug("dependents recompiled", zap.String("type", name), zap.Strings("dependents", deps))
	}
	r.dropOutcomes(replaced)
	return nil
}

func (r *Registry) compile(name string, doc any) (map[string]Schema, error) {
	if dc, ok := r.validator.(DependentCompiler); ok {
		return dc.CompileAll(name, doc)
	}
	s, err := r.validator.Compile(name, doc)
	if err != nil {
		return nil, err
	}
	return map[string]Schema{name: s}, nil
}

// RegisterSchema binds an already compiled schema to name.
func (r *Registry) RegisterSchema(name string, s Schema) error {
	if name == "" {
		return ErrEmptyTypeName
	}
	if s == nil {
		return fmt.Errorf("typereg: register %q: nil schema", name)
	}
	r.mu.Lock()
	replaced := r.install(name, s)
	r.mu.Unlock()
	if replaced {
		r.dropOutcomes([]string{name})
	}
	return nil
}

// install binds s to name and reports whether it replaced a schema. r.mu must
// be held.
func (r *Registry) install(name string, s Schema) bool {
	_, replaced := r.schemas[name]
	r.schemas[name] = s
	r.log.Debug("type registered", zap.String("type", name), zap.Bool("replaced", replaced))
	return replaced
}

// dropOutcomes forgets recorded outcomes of replaced types. It runs after the
// new schemas are published and r.mu is released: a check that validated
// against an old schema either records before the drop, and is dropped, or
// records after it using the schema it re-read under the entry lock.
func (r *Registry) dropOutcomes(names []string) {
	for _, n := range names {
		r.cache.dropType(n)
	}
}

// RegisterFile reads a JSON (.json) or YAML (.yaml, .yml) schema document
// and registers it under name. Duplicate keys in the document are rejected.
func (r *Registry) RegisterFile(name, path string) error {
	doc, err := eng.ReadDocument(path)
	if err != nil {
		return fmt.Errorf("typereg: register %q: %w", name, err)
	}
	return r.Register(name, doc)
}

// RegisterDir registers every schema document in dir, naming each type after
// its file name without extension (Base.json registers "Base"). Hidden files
// and subdirectories are skipped. Documents may reference each other in any
// order. It returns the registered names, sorted.
func (r *Registry) RegisterDir(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("typereg: %w", err)
	}
	docs := map[string]any{}
	for _, e := range ents {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || !eng.IsDocumentFile(n) {
			continue
		}
		doc, err := eng.ReadDocument(filepath.Join(dir, n))
		if err != nil {
			return nil, fmt.Errorf("typereg: %w", err)
		}
		name := strings.TrimSuffix(n, filepath.Ext(n))
		if _, dup := docs[name]; dup {
			return nil, fmt.Errorf("typereg: type %q defined by more than one file in %s", name, dir)
		}
		docs[name] = doc
	}
	names, err := r.registerAll(docs)
	r.log.Info("schema directory loaded", zap.String("dir", dir), zap.Int("types", len(names)))
	return names, err
}

// RegisterDocs registers a set of decoded documents keyed by type name, as
// produced by jsondir.Read. Documents may reference each other in any order.
func (r *Registry) RegisterDocs(docs map[string]map[string]any) error {
	pending := make(map[string]any, len(docs))
	for n, d := range docs {
		pending[n] = d
	}
	_, err := r.registerAll(pending)
	return err
}

// registerAll registers pending documents in passes until a pass makes no
// progress, so documents that reference types not yet registered are retried.
func (r *Registry) registerAll(pending map[string]any) ([]string, error) {
	var done []string
	for len(pending) > 0 {
		names := make([]string, 0, len(pending))
		for n := range pending {
			names = append(names, n)
		}
		sort.Strings(names)
		var errs []error
		progressed := false
		for _, n := range names {
			if err := r.Register(n, pending[n]); err != nil {
				errs = append(errs, err)
				continue
			}
			delete(pending, n)
			done = append(done, n)
			progressed = true
		}
		if !progressed {
			sort.Strings(done)
			return done, errors.Join(errs...)
		}
	}
	sort.Strings(done)
	return done, nil
}

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Stats is a point-in-time snapshot of registry activity.
type Stats struct {
	Types        int    // registered type names
	CacheEntries int    // live association entries
	Validations  uint64 // validator invocations
	CacheHits    uint64 // checks answered from the association cache
	CacheMisses  uint64 // object-shaped checks that had to validate
}

// Stats returns current counters.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	n := len(r.schemas)
	r.mu.RUnlock()
	return Stats{
		Types:        n,
		CacheEntries: r.cache.size(),
		Validations:  r.validations.Load(),
		CacheHits:    r.hits.Load(),
		CacheMisses:  r.misses.Load(),
	}
}
