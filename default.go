package typereg

import (
	"github.com/reoring/typereg/lazy"
	"github.com/reoring/typereg/result"
)

var defaultRegistry = lazy.New(func() *Registry { return New() })

// Default returns the process-wide registry used by the package-level
// functions. It is created on first use.
func Default() *Registry { return defaultRegistry.Get() }

// Register registers doc under name in Default.
func Register(name string, doc any) error { return Default().Register(name, doc) }

// RegisterFile registers the schema document at path under name in Default.
func RegisterFile(name, path string) error { return Default().RegisterFile(name, path) }

// RegisterDir registers every schema document of dir in Default.
func RegisterDir(dir string) ([]string, error) { return Default().RegisterDir(dir) }

// Check validates v against name using Default.
func Check(v any, name string) result.Result[result.Unit] { return Default().Check(v, name) }

// Assert asserts v satisfies every name using Default.
func Assert(v any, names ...string) error { return Default().Assert(v, names...) }

// MustAssert is Assert that panics on failure.
func MustAssert(v any, names ...string) { Default().MustAssert(v, names...) }

// MatchType dispatches v over cases using Default.
func MatchType[R any](v any, cases ...Case[R]) (R, error) { return Match(Default(), v, cases...) }

// MustMatchType is MatchType that panics when nothing matches.
func MustMatchType[R any](v any, cases ...Case[R]) R { return MustMatch(Default(), v, cases...) }
