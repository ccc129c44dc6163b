package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// DuplicateKeyError reports an object key that appears twice in a document.
// Line and Col are zero for JSON input.
type DuplicateKeyError struct {
	Path      string // JSON Pointer of the object holding the key
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("duplicate key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
	}
	return fmt.Sprintf("duplicate key %q in object at %s", e.Key, pointer(e.Path))
}

// IsDocumentFile reports whether path has an extension ReadDocument understands.
func IsDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// ReadDocument reads and decodes a JSON or YAML document, chosen by extension.
func ReadDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := DecodeDocument(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// DecodeDocument decodes data as YAML for ".yaml"/".yml" and as JSON otherwise.
// Duplicate keys are rejected in both formats.
func DecodeDocument(ext string, data []byte) (any, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		docs, err := NewStrictYAMLReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			return nil, err
		}
		if len(docs) != 1 {
			return nil, fmt.Errorf("expected exactly one YAML document, found %d", len(docs))
		}
		return docs[0], nil
	default:
		return DecodeJSON(data)
	}
}

// DecodeJSON decodes a single JSON value with go-json, rejecting duplicate
// object keys. Numbers become float64, except integers float64 cannot hold
// exactly and literals out of float64 range, which are kept as json.Number.
func DecodeJSON(data []byte) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	d := &jsonDoc{dec: dec}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	v, err := d.value(tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level JSON value")
	}
	return v, nil
}

type jsonDoc struct {
	dec *gojson.Decoder
}

func (d *jsonDoc) value(tok any, path string) (any, error) {
	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			return d.object(path)
		case '[':
			return d.array(path)
		}
		return nil, fmt.Errorf("unexpected %q at %s", rune(t), pointer(path))
	case gojson.Number:
		return numberLiteral(string(t)), nil
	case float64, string, bool, nil:
		return t, nil
	}
	return nil, fmt.Errorf("unexpected token %v at %s", tok, pointer(path))
}

func (d *jsonDoc) object(path string) (any, error) {
	m := map[string]any{}
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(gojson.Delim); ok && delim == '}' {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key at %s", pointer(path))
		}
		if _, dup := m[key]; dup {
			return nil, &DuplicateKeyError{Path: path, Key: key}
		}
		vt, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := d.value(vt, path+"/"+escapePointer(key))
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

func (d *jsonDoc) array(path string) (any, error) {
	arr := []any{}
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(gojson.Delim); ok && delim == ']' {
			return arr, nil
		}
		v, err := d.value(tok, path+"/"+strconv.Itoa(len(arr)))
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// escapePointer escapes a key per RFC 6901.
func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
