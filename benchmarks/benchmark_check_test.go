package typereg_test

import (
	"testing"

	"github.com/reoring/typereg"
	"github.com/reoring/typereg/openapi"
)

const orderDoc = `{
	"type": "object",
	"required": ["id", "lines"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"lines": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["sku", "qty"],
				"properties": {
					"sku": {"type": "string", "pattern": "^[A-Z]{3}-[0-9]+$"},
					"qty": {"type": "integer", "minimum": 1}
				}
			}
		}
	}
}`

func order() map[string]any {
	lines := make([]any, 0, 20)
	for i := 0; i < 20; i++ {
		lines = append(lines, map[string]any{"sku": "ABC-1", "qty": i + 1})
	}
	return map[string]any{"id": "o-1", "lines": lines}
}

func registry(tb testing.TB, opt ...typereg.Options) *typereg.Registry {
	tb.Helper()
	reg := typereg.New(opt...)
	if err := reg.Register("Order", []byte(orderDoc)); err != nil {
		tb.Fatalf("register: %v", err)
	}
	return reg
}

// --- Cached: the same object is checked repeatedly ---

func Benchmark_Check_Object_Cached(b *testing.B) {
	reg := registry(b)
	v := order()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !reg.Is(v, "Order") {
			b.Fatal("unexpected failure")
		}
	}
}

// --- Fresh: every check validates ---

func Benchmark_Check_Object_Fresh(b *testing.B) {
	reg := registry(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !reg.Is(order(), "Order") {
			b.Fatal("unexpected failure")
		}
	}
}

func Benchmark_Check_Slice_Uncached(b *testing.B) {
	reg := typereg.New()
	if err := reg.Register("Lines", []byte(`{"type":"array","items":{"type":"integer"}}`)); err != nil {
		b.Fatalf("register: %v", err)
	}
	v := []any{1, 2, 3, 4, 5, 6, 7, 8}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !reg.Is(v, "Lines") {
			b.Fatal("unexpected failure")
		}
	}
}

// --- Binding comparison ---

func Benchmark_Check_Object_Fresh_OpenAPI(b *testing.B) {
	reg := registry(b, typereg.Options{Validator: openapi.New()})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !reg.Is(order(), "Order") {
			b.Fatal("unexpected failure")
		}
	}
}
