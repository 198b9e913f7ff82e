package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// OrderedMap is a decoded JSON object that remembers key order. Run files are
// written by a Python dict, and the panels list fields in that order.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap returns an empty map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]interface{})}
}

// Set adds or replaces a key. A new key goes to the end.
func (m *OrderedMap) Set(key string, value interface{}) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key.
func (m *OrderedMap) Get(key string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns keys in insertion order. The slice must not be modified.
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len returns the number of keys.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Float returns the value as float64 if it is a JSON number.
func (m *OrderedMap) Float(key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	return AsFloat(v)
}

// String returns the value if it is a JSON string.
func (m *OrderedMap) String(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// UnmarshalJSON decodes a JSON object, keeping key order at the top level.
// Nested objects decode to plain maps.
func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	m.keys = m.keys[:0]
	m.values = make(map[string]interface{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
		m.Set(key, normalize(value))
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// normalize converts json.Number to float64 so callers see one numeric type.
func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return f
	case map[string]interface{}:
		for k, inner := range x {
			x[k] = normalize(inner)
		}
		return x
	case []interface{}:
		for i, inner := range x {
			x[i] = normalize(inner)
		}
		return x
	}
	return v
}

// AsFloat reports whether v is numeric and returns it as float64.
// Booleans are not numbers.
func AsFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// IsIntegral reports whether f has no fractional part and fits an int64.
func IsIntegral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) && math.Abs(f) < 1<<53
}

// FormatConfigValue renders a config value for display: integral numbers
// without decimals, other numbers with four, strings and bools verbatim.
func FormatConfigValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := AsFloat(v); ok {
		if IsIntegral(f) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'f', 4, 64)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
