// Package normalize turns loosely-typed remote JSON into fixed-shape records.
//
// Every lookup is null-safe: walking through a missing key, a null, or a
// non-object node yields an absent Value instead of an error, so callers can
// chain Get calls without checks and fall back to defaults at the end.
package normalize

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Value is one node of a decoded JSON document, or the absent marker.
type Value struct {
	v       any
	present bool
}

// Of wraps an already decoded JSON value (map[string]any, []any, string,
// json.Number, float64, bool or nil).
func Of(v any) Value {
	return Value{v: v, present: true}
}

// Parse decodes body and reports whether it is a JSON object. Numbers are kept
// as json.Number so large opaque ids survive untouched.
func Parse(body []byte) (Value, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, false
	}
	if dec.More() {
		return Value{}, false
	}
	if _, ok := v.(map[string]any); !ok {
		return Value{}, false
	}
	return Of(v), true
}

// Get walks path through nested objects.
func (v Value) Get(path ...string) Value {
	cur := v
	for _, key := range path {
		obj, ok := cur.v.(map[string]any)
		if !cur.present || !ok {
			return Value{}
		}
		next, ok := obj[key]
		if !ok {
			return Value{}
		}
		cur = Of(next)
	}
	return cur
}

// Present is false for missing keys and explicit nulls.
func (v Value) Present() bool {
	return v.present && v.v != nil
}

// String returns scalars in text form. Objects, lists and absent values give
// ("", false).
func (v Value) String() (string, bool) {
	switch x := v.v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

// Bool coerces the value to a strict boolean. Only true, non-zero numbers and
// the strings "true", "1", "yes", "y", "on" (any case) are true.
func (v Value) Bool() bool {
	switch x := v.v.(type) {
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case float64:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "y", "on":
			return true
		}
	}
	return false
}

// Number returns numeric values and numeric strings.
func (v Value) Number() (float64, bool) {
	switch x := v.v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Keys returns the sorted keys of an object value.
func (v Value) Keys() []string {
	obj, ok := v.v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns the elements of a list value.
func (v Value) List() []Value {
	arr, ok := v.v.([]any)
	if !ok {
		return nil
	}
	out := make([]Value, len(arr))
	for i, item := range arr {
		out[i] = Of(item)
	}
	return out
}
