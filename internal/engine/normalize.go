package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// JSONValue converts v into the JSON data model understood by validators:
// nil, bool, string, float64, json.Number, []any and map[string]any.
// Values already in that model are returned without copying. Integers become
// float64 when that is exact and json.Number otherwise. Anything else
// (structs, typed maps and slices, pointers) takes a round trip through
// go-json so json struct tags are honored.
func JSONValue(v any) (any, error) {
	out, _, err := normalize(v)
	return out, err
}

func normalize(v any) (any, bool, error) {
	switch t := v.(type) {
	case nil, bool, string, float64, json.Number:
		return v, false, nil
	case float32:
		return float64(t), true, nil
	case int:
		return intNumber(int64(t)), true, nil
	case int8:
		return intNumber(int64(t)), true, nil
	case int16:
		return intNumber(int64(t)), true, nil
	case int32:
		return intNumber(int64(t)), true, nil
	case int64:
		return intNumber(int64(t)), true, nil
	case uint:
		return uintNumber(uint64(t)), true, nil
	case uint8:
		return uintNumber(uint64(t)), true, nil
	case uint16:
		return uintNumber(uint64(t)), true, nil
	case uint32:
		return uintNumber(uint64(t)), true, nil
	case uint64:
		return uintNumber(uint64(t)), true, nil
	case []any:
		var cp []any
		for i, e := range t {
			ne, changed, err := normalize(e)
			if err != nil {
				return nil, false, err
			}
			if changed && cp == nil {
				cp = make([]any, len(t))
				copy(cp, t[:i])
			}
			if cp != nil {
				cp[i] = ne
			}
		}
		if cp == nil {
			return t, false, nil
		}
		return cp, true, nil
	case map[string]any:
		var cp map[string]any
		for k, e := range t {
			ne, changed, err := normalize(e)
			if err != nil {
				return nil, false, err
			}
			if changed && cp == nil {
				cp = make(map[string]any, len(t))
				for k2, e2 := range t {
					cp[k2] = e2
				}
			}
			if cp != nil {
				cp[k] = ne
			}
		}
		if cp == nil {
			return t, false, nil
		}
		return cp, true, nil
	}
	b, err := gojson.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("engine: value of type %T is not JSON-representable: %w", v, err)
	}
	dec := gojson.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, false, err
	}
	return settleNumbers(out), true, nil
}

// settleNumbers rewrites the json.Number leaves of a freshly decoded value in
// place, as numberLiteral does.
func settleNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		return numberLiteral(string(t))
	case []any:
		for i, e := range t {
			t[i] = settleNumbers(e)
		}
	case map[string]any:
		for k, e := range t {
			t[k] = settleNumbers(e)
		}
	}
	return v
}

// maxExact is the largest magnitude below which every integer has an exact
// float64 representation.
const maxExact = 1 << 53

func intNumber(i int64) any {
	if i >= -maxExact && i <= maxExact {
		return float64(i)
	}
	return json.Number(strconv.FormatInt(i, 10))
}

func uintNumber(u uint64) any {
	if u <= maxExact {
		return float64(u)
	}
	return json.Number(strconv.FormatUint(u, 10))
}

// numberLiteral returns a decoded number literal as float64 when that loses
// nothing, and as json.Number when the literal is out of float64 range or is
// an integer float64 cannot hold exactly.
func numberLiteral(lit string) any {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return json.Number(lit)
	}
	if !strings.ContainsAny(lit, ".eE") && strconv.FormatFloat(f, 'f', -1, 64) != lit {
		return json.Number(lit)
	}
	return f
}
