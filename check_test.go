package typereg_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/reoring/typereg"
	"github.com/reoring/typereg/assert"
	"github.com/reoring/typereg/enum"
	"github.com/reoring/typereg/result"
)

var positiveDoc = map[string]any{
	"type":       "object",
	"properties": map[string]any{"value": map[string]any{"type": "number", "exclusiveMinimum": 0}},
	"required":   []any{"value"},
}

func shapes(t *testing.T) *typereg.Registry {
	t.Helper()
	reg := typereg.New()
	docs := []struct {
		name string
		doc  string
	}{
		{"Base", `{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`},
		{"Derived1", `{"allOf":[{"$ref":"Base.json"},{"properties":{"d1":{"type":"number"}},"required":["d1"]}]}`},
		{"Derived2", `{"allOf":[{"$ref":"Base.json"},{"properties":{"d2":{"type":"boolean"}},"required":["d2"]}]}`},
	}
	for _, d := range docs {
		if err := reg.Register(d.name, []byte(d.doc)); err != nil {
			t.Fatalf("register %s: %v", d.name, err)
		}
	}
	return reg
}

func TestCheck_OkAndErr(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("Positive", positiveDoc); err != nil {
		t.Fatalf("register: %v", err)
	}
	if r := reg.Check(map[string]any{"value": 5}, "Positive"); !r.IsOk() {
		t.Fatalf("expected Ok, got %v", r)
	}
	r := reg.Check(map[string]any{"value": -1}, "Positive")
	if !r.IsErr() {
		t.Fatalf("expected Err for -1")
	}
	iss, ok := typereg.AsIssues(r.Err())
	if !ok || len(iss) != 1 {
		t.Fatalf("expected exactly one issue, got %v", r.Err())
	}
	if iss[0].Path != "/value" || iss[0].Code != typereg.CodeTooSmall {
		t.Fatalf("unexpected issue %+v", iss[0])
	}
}

func TestAssert_TypeErrorNamesValueAndType(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("Positive", positiveDoc); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Assert(map[string]any{"value": 1}, "Positive"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := reg.Assert(map[string]any{"value": -1}, "Positive")
	var te *typereg.TypeError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TypeError, got %T", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "-1") || !strings.Contains(msg, "Positive") {
		t.Fatalf("message should name the value and the type: %s", msg)
	}
	if _, ok := typereg.AsIssues(err); !ok {
		t.Fatalf("TypeError should unwrap to Issues")
	}
}

func TestAssert_StopsAtFirstFailingName(t *testing.T) {
	reg := shapes(t)
	v := map[string]any{"name": "a", "d1": 1.0}
	err := reg.Assert(v, "Base", "Derived2", "Derived1")
	var te *typereg.TypeError
	if !errors.As(err, &te) || te.Type != "Derived2" {
		t.Fatalf("expected failure on Derived2, got %v", err)
	}
}

func TestPolymorphism_ValueCarriesSeveralLabels(t *testing.T) {
	reg := shapes(t)
	d1 := map[string]any{"name": "one", "d1": 1.0}
	d2 := map[string]any{"name": "two", "d2": true}

	if !reg.Is(d1, "Base") || !reg.Is(d1, "Derived1") || reg.Is(d1, "Derived2") {
		t.Fatalf("d1 labels wrong: %v", reg.Known(d1))
	}
	if !reg.Is(d2, "Derived2") || !reg.Is(d2, "Base") || reg.Is(d2, "Derived1") {
		t.Fatalf("d2 labels wrong: %v", reg.Known(d2))
	}
	if got := reg.Known(d1); len(got) != 2 || got[0] != "Base" || got[1] != "Derived1" {
		t.Fatalf("Known(d1) = %v", got)
	}
}

func TestCheck_StructPointerUsesJSONTags(t *testing.T) {
	type shape struct {
		Name string  `json:"name"`
		D1   float64 `json:"d1"`
	}
	reg := shapes(t)
	if !reg.Is(&shape{Name: "s", D1: 2}, "Derived1") {
		t.Fatalf("struct pointer should validate through its json form")
	}
}

func TestCheck_UnregisteredTypePanics(t *testing.T) {
	reg := typereg.New()
	err := assert.Catch(func() { reg.Check(map[string]any{}, "Nope") })
	if err == nil {
		t.Fatalf("expected assertion failure")
	}
	var ue *typereg.UnregisteredTypeError
	if !errors.As(err, &ue) || ue.Type != "Nope" {
		t.Fatalf("expected UnregisteredTypeError, got %v", err)
	}
}

func TestAssert_NoNamesPanics(t *testing.T) {
	reg := typereg.New()
	if err := assert.Catch(func() { _ = reg.Assert(1) }); err == nil {
		t.Fatalf("expected assertion failure")
	}
}

func TestMustAssert_PanicsWithTypeError(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("Positive", positiveDoc); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := assert.Catch(func() { reg.MustAssert(map[string]any{"value": 0}, "Positive") })
	var te *typereg.TypeError
	if !errors.As(err, &te) {
		t.Fatalf("expected wrapped *TypeError, got %v", err)
	}
}

func TestCheck_FailuresRouteByKind(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("Positive", positiveDoc); err != nil {
		t.Fatalf("register: %v", err)
	}
	got := result.MatchErr(reg.Check(map[string]any{"value": -3}, "Positive"),
		func(result.Unit) string { return "ok" },
		enum.Cases[string]{
			typereg.KindValidation: func(any) string { return "invalid" },
			enum.Others:            func(any) string { return "other" },
		})
	if got != "invalid" {
		t.Fatalf("got %q", got)
	}
}

func TestCheck_PositiveScalar(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("Positive", []byte(`{"type":"number","exclusiveMinimum":0}`)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.Check(5, "Positive").IsOk() {
		t.Fatalf("5 should be Positive")
	}
	r := reg.Check(-1, "Positive")
	iss, ok := typereg.AsIssues(r.Err())
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", r)
	}
	if again, _ := typereg.AsIssues(reg.Check(-1, "Positive").Err()); len(again) != 1 || again[0] != iss[0] {
		t.Fatalf("repeated check should report the same issues, got %v", again)
	}
	err := reg.Assert(-1, "Positive")
	if err == nil || !strings.Contains(err.Error(), "-1") || !strings.Contains(err.Error(), "Positive") {
		t.Fatalf("unexpected assertion failure %v", err)
	}
}

func TestCheck_LargeIntegersAreExact(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("Limit", []byte(`{"const": 9007199254740992}`)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("Bounded", []byte(`{"type": "integer", "maximum": 9007199254740992}`)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.Is(int64(9007199254740992), "Limit") {
		t.Fatalf("2^53 should equal the constant")
	}
	if reg.Is(int64(9007199254740993), "Limit") {
		t.Fatalf("2^53+1 must not equal 2^53")
	}
	if reg.Is(uint64(1<<53+1), "Bounded") {
		t.Fatalf("2^53+1 exceeds the maximum")
	}
	if err := reg.Register("Exact", []byte(`{"properties": {"id": {"const": 9007199254740993}}}`)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Is(map[string]any{"id": int64(9007199254740992)}, "Exact") || !reg.Is(map[string]any{"id": int64(9007199254740993)}, "Exact") {
		t.Fatalf("constant above 2^53 should only match itself")
	}
}
