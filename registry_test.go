package typereg_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/typereg"
	js "github.com/reoring/typereg/jsonschema"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestRegister_EmptyName(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("", map[string]any{}); !errors.Is(err, typereg.ErrEmptyTypeName) {
		t.Fatalf("expected ErrEmptyTypeName, got %v", err)
	}
	if err := reg.RegisterSchema("", nil); !errors.Is(err, typereg.ErrEmptyTypeName) {
		t.Fatalf("expected ErrEmptyTypeName, got %v", err)
	}
}

func TestRegister_TypedSchemaModel(t *testing.T) {
	reg := typereg.New()
	doc := js.Object(map[string]*js.Schema{
		"id":   {Type: "string", MinLength: js.Ptr(1)},
		"tags": js.Array(js.String()),
	}, "id")
	if err := reg.Register("Item", doc); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.Is(map[string]any{"id": "x", "tags": []any{"a"}}, "Item") {
		t.Fatalf("expected valid item")
	}
	r := reg.Check(map[string]any{"id": ""}, "Item")
	iss, _ := typereg.AsIssues(r.Err())
	if len(iss) != 1 || iss[0].Code != typereg.CodeTooShort || iss[0].Path != "/id" {
		t.Fatalf("unexpected issues %v", iss)
	}
}

func TestRegister_FailedCompileKeepsPreviousSchema(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("T", map[string]any{"type": "string"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("T", map[string]any{"type": 12}); err == nil {
		t.Fatalf("expected compile error")
	}
	if !reg.Is("text", "T") || reg.Is(1, "T") {
		t.Fatalf("previous schema should still be in effect")
	}
}

func TestRegister_UnknownRefFails(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("Orphan", map[string]any{"$ref": "Missing.json"}); err == nil {
		t.Fatalf("expected unresolved reference error")
	}
	if reg.Has("Orphan") {
		t.Fatalf("failed registration must not bind the name")
	}
}

func TestRegisterFile_JSONAndYAML(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"name.json": `{"type":"string","minLength":2}`,
		"age.yaml":  "type: integer\nminimum: 0\n",
	})
	reg := typereg.New()
	if err := reg.RegisterFile("Name", filepath.Join(dir, "name.json")); err != nil {
		t.Fatalf("json: %v", err)
	}
	if err := reg.RegisterFile("Age", filepath.Join(dir, "age.yaml")); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !reg.Is("ab", "Name") || reg.Is("a", "Name") {
		t.Fatalf("Name schema not applied")
	}
	if !reg.Is(3, "Age") || reg.Is(-1, "Age") || reg.Is(1.5, "Age") {
		t.Fatalf("Age schema not applied")
	}
}

func TestRegisterFile_RejectsDuplicateKeys(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"dup.json": `{"type":"string","type":"number"}`,
		"dup.yaml": "type: string\ntype: number\n",
	})
	reg := typereg.New()
	for _, f := range []string{"dup.json", "dup.yaml"} {
		err := reg.RegisterFile("Dup", filepath.Join(dir, f))
		if err == nil || !strings.Contains(err.Error(), "duplicate key") {
			t.Fatalf("%s: expected duplicate key error, got %v", f, err)
		}
	}
}

func TestRegisterDir_ResolvesReferencesInAnyOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"A_Derived.json": `{"allOf":[{"$ref":"Z_Base.json"},{"required":["extra"]}]}`,
		"Z_Base.yaml":    "type: object\nrequired: [name]\n",
		".hidden.json":   `not json`,
		"README.md":      "ignored",
	})
	reg := typereg.New()
	names, err := reg.RegisterDir(dir)
	if err != nil {
		t.Fatalf("RegisterDir: %v", err)
	}
	if diff := cmp.Diff([]string{"A_Derived", "Z_Base"}, names); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
	if !reg.Is(map[string]any{"name": "n", "extra": 1}, "A_Derived") {
		t.Fatalf("derived should validate")
	}
	if reg.Is(map[string]any{"extra": 1}, "A_Derived") {
		t.Fatalf("derived should inherit base requirements")
	}
}

func TestRegisterDir_ReportsUnresolvable(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"Good.json": `{"type":"string"}`,
		"Bad.json":  `{"$ref":"Nowhere.json"}`,
	})
	reg := typereg.New()
	names, err := reg.RegisterDir(dir)
	if err == nil {
		t.Fatalf("expected error for Bad")
	}
	if diff := cmp.Diff([]string{"Good"}, names); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}

func TestRegisterDocs(t *testing.T) {
	reg := typereg.New()
	err := reg.RegisterDocs(map[string]map[string]any{
		"Pair":  {"type": "array", "items": map[string]any{"$ref": "Point.json"}, "minItems": 2, "maxItems": 2},
		"Point": {"type": "object", "required": []any{"x", "y"}},
	})
	if err != nil {
		t.Fatalf("RegisterDocs: %v", err)
	}
	pair := []any{map[string]any{"x": 1, "y": 2}, map[string]any{"x": 3, "y": 4}}
	if !reg.Is(pair, "Pair") {
		t.Fatalf("expected valid pair")
	}
	if diff := cmp.Diff([]string{"Pair", "Point"}, reg.Names()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}

func TestRegister_LogsRegistrations(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&buf), zapcore.DebugLevel)
	reg := typereg.New(typereg.Options{Logger: zap.New(core)})
	if err := reg.Register("T", map[string]any{"type": "string"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("T", map[string]any{"type": "number"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	out := buf.String()
	if strings.Count(out, `"type registered"`) != 2 || !strings.Contains(out, `"replaced":true`) {
		t.Fatalf("unexpected log output:\n%s", out)
	}
}

func TestRegistry_String(t *testing.T) {
	reg := shapes(t)
	if s := reg.String(); s != "typereg.Registry{types: 3, entries: 0}" {
		t.Fatalf("got %q", s)
	}
}

func TestRegister_RecompilesDependents(t *testing.T) {
	reg := shapes(t)
	if err := reg.Register("Tagged", []byte(`{"allOf":[{"$ref":"Derived1.json"}],"required":["tag"]}`)); err != nil {
		t.Fatalf("register Tagged: %v", err)
	}
	seen := map[string]any{"name": "a", "d1": 1.0, "tag": "t"}
	for _, n := range []string{"Base", "Derived1", "Tagged"} {
		if !reg.Is(seen, n) {
			t.Fatalf("expected %s before the change", n)
		}
	}

	if err := reg.Register("Base", []byte(`{"type":"object","required":["id"]}`)); err != nil {
		t.Fatalf("re-register Base: %v", err)
	}
	fresh := map[string]any{"name": "a", "d1": 1.0, "tag": "t"}
	for _, v := range []map[string]any{seen, fresh} {
		for _, n := range []string{"Base", "Derived1", "Tagged"} {
			if reg.Is(v, n) {
				t.Fatalf("%s should use the new Base", n)
			}
		}
	}
	withID := map[string]any{"id": 1.0, "d1": 1.0, "tag": "t"}
	if !reg.Is(withID, "Tagged") || reg.Is(withID, "Derived2") {
		t.Fatalf("dependents should follow the new Base: %v", reg.Known(withID))
	}
}

func TestRegister_DependentFailureLeavesRegistryUnchanged(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("Base", []byte(`{"type":"object","definitions":{"label":{"type":"string"}}}`)); err != nil {
		t.Fatalf("register Base: %v", err)
	}
	if err := reg.Register("Label", []byte(`{"$ref":"Base.json#/definitions/label"}`)); err != nil {
		t.Fatalf("register Label: %v", err)
	}
	if err := reg.Register("Base", []byte(`{"type":"string"}`)); err == nil {
		t.Fatalf("expected error: Label no longer resolves")
	}
	if !reg.Is(map[string]any{}, "Base") || reg.Is("s", "Base") {
		t.Fatalf("previous Base should still be in effect")
	}
	if err := reg.Register("Caption", []byte(`{"$ref":"Base.json#/definitions/label"}`)); err != nil {
		t.Fatalf("later compilations should still see the previous Base: %v", err)
	}
	if !reg.Is("x", "Label") || !reg.Is("x", "Caption") {
		t.Fatalf("expected strings to be labels")
	}
}

func TestRegister_RefToEscapesName(t *testing.T) {
	reg := typereg.New()
	if err := reg.Register("Order Line", js.Object(map[string]*js.Schema{"sku": js.String()}, "sku")); err != nil {
		t.Fatalf("register Order Line: %v", err)
	}
	doc := js.Object(map[string]*js.Schema{"lines": js.Array(js.RefTo("Order Line"))}, "lines")
	if err := reg.Register("Order", doc); err != nil {
		t.Fatalf("register Order: %v", err)
	}
	if !reg.Is(map[string]any{"lines": []any{map[string]any{"sku": "A"}}}, "Order") {
		t.Fatalf("expected valid order")
	}
	if reg.Is(map[string]any{"lines": []any{map[string]any{}}}, "Order") {
		t.Fatalf("line without sku should fail through the reference")
	}
}
