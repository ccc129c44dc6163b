// Package jsondir loads sets of JSON (or YAML) documents keyed by one of their
// fields, e.g. a directory of schema documents keyed by "name", or labeled
// fixtures keyed by "id".
package jsondir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	eng "github.com/reoring/typereg/internal/engine"
	"github.com/reoring/typereg/result"
)

// ErrMissingID is returned when a document lacks the identifying field.
var ErrMissingID = errors.New("jsondir: missing id field")

// Docs maps an id to the document carrying it.
type Docs = map[string]map[string]any

// Read parses every non-hidden .json, .yaml and .yml file of dir and keys the
// documents by idField. Files are read in name order; a later document with
// the same id replaces an earlier one.
func Read(dir, idField string) (Docs, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range ents {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || !eng.IsDocumentFile(n) {
			continue
		}
		paths = append(paths, filepath.Join(dir, n))
	}
	return ReadFiles(idField, paths...)
}

// ReadFiles parses the given files and keys the documents by idField. A file
// may hold a single object or an array of objects.
func ReadFiles(idField string, paths ...string) (Docs, error) {
	out := Docs{}
	for _, p := range paths {
		v, err := eng.ReadDocument(p)
		if err != nil {
			return nil, err
		}
		docs, err := objects(v)
		if err != nil {
			return nil, fmt.Errorf("jsondir: %s: %w", p, err)
		}
		if err := index(out, idField, docs); err != nil {
			return nil, fmt.Errorf("jsondir: %s: %w", p, err)
		}
	}
	return out, nil
}

// Index keys already decoded documents by idField.
func Index(idField string, docs ...map[string]any) (Docs, error) {
	out := Docs{}
	if err := index(out, idField, docs); err != nil {
		return nil, fmt.Errorf("jsondir: %w", err)
	}
	return out, nil
}

func index(out Docs, idField string, docs []map[string]any) error {
	for _, d := range docs {
		id, ok := d[idField]
		if !ok || id == nil {
			return fmt.Errorf("%w %q in %v", ErrMissingID, idField, d)
		}
		key, ok := id.(string)
		if !ok {
			key = fmt.Sprint(id)
		}
		out[key] = d
	}
	return nil
}

func objects(v any) ([]map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}, nil
	case []any:
		out := make([]map[string]any, 0, len(t))
		for i, e := range t {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not an object", i, e)
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, fmt.Errorf("document is %T, not an object or array of objects", v)
}

// Exists reports whether path exists and can be opened for reading, as a
// Result carrying the underlying error on failure.
func Exists(path string) result.Result[result.Unit] {
	f, err := os.Open(path)
	if err != nil {
		return result.Err[result.Unit](err)
	}
	_ = f.Close()
	return result.Ok(result.Unit{})
}
