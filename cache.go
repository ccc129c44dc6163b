package typereg

import (
	"reflect"
	"runtime"
	"sync"
	"unsafe"
	"weak"
)

// identity keys an object-shaped candidate: its address, held weakly, plus its
// dynamic type (a struct and its first field share an address).
type identity struct {
	ptr weak.Pointer[byte]
	typ reflect.Type
}

// association records, for one candidate, every type name checked so far and
// its outcome. A nil Issues outcome means valid.
type association struct {
	mu       sync.Mutex
	outcomes map[string]Issues
	order    []string
}

// cache is the association cache. Entries are keyed weakly and evicted by a
// runtime cleanup once their candidate is collected, so the cache never keeps
// a candidate alive.
//
// Outcomes are never invalidated by mutation of the candidate: a value changed
// after it was checked keeps its recorded labels.
type cache struct {
	mu      sync.Mutex
	entries map[identity]*association
}

func newCache() *cache {
	return &cache{entries: map[identity]*association{}}
}

// identityOf returns the identity of v when v is object-shaped: a non-nil map,
// or a non-nil pointer to a type with non-zero size (zero-size values may all
// share one address).
func identityOf(v any) (identity, unsafe.Pointer, bool) {
	if v == nil {
		return identity{}, nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return identity{}, nil, false
		}
	case reflect.Pointer:
		if rv.IsNil() || rv.Type().Elem().Size() == 0 {
			return identity{}, nil, false
		}
	default:
		return identity{}, nil, false
	}
	p := rv.UnsafePointer()
	return identity{ptr: weak.Make((*byte)(p)), typ: rv.Type()}, p, true
}

// lookupOrValidate returns the outcome of name for v. Scalar-shaped values are
// validated on every call. For object-shaped values the first check of each
// name runs validate and records the outcome; later checks return it. hit
// reports whether the outcome came from the cache.
func (c *cache) lookupOrValidate(v any, name string, validate func() Issues) (iss Issues, cached, hit bool) {
	id, p, ok := identityOf(v)
	if !ok {
		return validate(), false, false
	}
	a := c.entry(id, p)
	a.mu.Lock()
	defer a.mu.Unlock()
	if out, found := a.outcomes[name]; found {
		return out, true, true
	}
	out := validate()
	if len(out) == 0 {
		out = nil
	}
	a.outcomes[name] = out
	a.order = append(a.order, name)
	return out, true, false
}

func (c *cache) entry(id identity, p unsafe.Pointer) *association {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.entries[id]; ok {
		return a
	}
	a := &association{outcomes: map[string]Issues{}}
	c.entries[id] = a
	runtime.AddCleanup((*byte)(p), c.evict, id)
	return a
}

func (c *cache) evict(id identity) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

func (c *cache) lookup(v any) *association {
	id, _, ok := identityOf(v)
	if !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id]
}

// known returns the names recorded valid for v, in check order.
func (c *cache) known(v any) []string {
	a := c.lookup(v)
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, n := range a.order {
		if a.outcomes[n] == nil {
			out = append(out, n)
		}
	}
	return out
}

// forget drops v's association entry, if any.
func (c *cache) forget(v any) {
	id, _, ok := identityOf(v)
	if !ok {
		return
	}
	c.evict(id)
}

// dropType removes every recorded outcome for name; used when a type's schema
// is replaced.
func (c *cache) dropType(name string) {
	c.mu.Lock()
	all := make([]*association, 0, len(c.entries))
	for _, a := range c.entries {
		all = append(all, a)
	}
	c.mu.Unlock()
	for _, a := range all {
		a.mu.Lock()
		if _, ok := a.outcomes[name]; ok {
			delete(a.outcomes, name)
			for i, n := range a.order {
				if n == name {
					a.order = append(a.order[:i], a.order[i+1:]...)
					break
				}
			}
		}
		a.mu.Unlock()
	}
}

func (c *cache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
