// Package lazy memoizes values that are expensive to produce and may never be
// needed. The producer runs at most once, on first access.
package lazy

import (
	"sync"
	"sync/atomic"
)

// Value is a value produced on first Get. The zero Value is not usable; use New.
type Value[T any] struct {
	once   sync.Once
	loaded atomic.Bool
	fn     func() T
	v      T
}

// New returns a Value produced by fn.
func New[T any](fn func() T) *Value[T] {
	return &Value[T]{fn: fn}
}

// Get returns the value, running the producer on the first call. Concurrent
// first calls block until the producer returns.
func (l *Value[T]) Get() T {
	l.once.Do(func() {
		l.v = l.fn()
		l.fn = nil
		l.loaded.Store(true)
	})
	return l.v
}

// Loaded reports whether the producer has already run.
func (l *Value[T]) Loaded() bool { return l.loaded.Load() }

// Properties is a set of named lazy values, the equivalent of lazily computed
// object properties. It is safe for concurrent use.
type Properties struct {
	mu    sync.Mutex
	props map[string]*property
}

// property is pinned by the first Get; from then on its producer is final,
// even while it is still running.
type property struct {
	v      *Value[any]
	pinned bool
}

// Define registers producer under name. Defining a name again before it was
// read replaces the producer; once a read has started the first producer's
// value is kept.
func (p *Properties) Define(name string, producer func() any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.props == nil {
		p.props = map[string]*property{}
	}
	if cur, ok := p.props[name]; ok && cur.pinned {
		return
	}
	p.props[name] = &property{v: New(producer)}
}

// Get returns the value of name and whether it is defined.
func (p *Properties) Get(name string) (any, bool) {
	p.mu.Lock()
	prop, ok := p.props[name]
	if ok {
		prop.pinned = true
	}
	p.mu.Unlock()
	if !ok {
		return nil, false
	}
	return prop.v.Get(), true
}
