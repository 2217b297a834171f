package input

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// treeValue wraps one node of the generic value tree produced by the codec.
type treeValue struct{ raw any }

func (t treeValue) Kind() Kind {
	switch n := t.raw.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindString
	case json.Number:
		if numberIsIntegral(n) {
			return KindInt
		}
		return KindFloat
	case float64:
		return KindFloat
	case int, int64:
		return KindInt
	case map[string]any:
		return KindMap
	case []any:
		return KindList
	default:
		return KindOther
	}
}

func (t treeValue) IsNull() bool { return t.raw == nil }

func (t treeValue) Bool() (bool, bool) {
	b, ok := t.raw.(bool)
	return b, ok
}

func (t treeValue) Int() (int64, bool) {
	switch n := t.raw.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		if !numberIsIntegral(n) {
			return 0, false
		}
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func (t treeValue) Float() (float64, bool) {
	switch n := t.raw.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func (t treeValue) Str() (string, bool) {
	s, ok := t.raw.(string)
	return s, ok
}

func (t treeValue) Bytes() ([]byte, bool)           { return nil, false }
func (t treeValue) Time() (time.Time, bool)         { return time.Time{}, false }
func (t treeValue) Duration() (time.Duration, bool) { return 0, false }

func (t treeValue) Len() int {
	switch n := t.raw.(type) {
	case map[string]any:
		return len(n)
	case []any:
		return len(n)
	default:
		return -1
	}
}

func (t treeValue) Items() ([]Value, bool) {
	arr, ok := t.raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Value, len(arr))
	for i := range arr {
		out[i] = Wrap(arr[i])
	}
	return out, true
}

func (t treeValue) Entries() ([]Entry, bool) {
	m, ok := t.raw.(map[string]any)
	if !ok {
		return nil, false
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Key: k, Value: Wrap(m[k])}
	}
	return out, true
}

func (t treeValue) Field(name string) (Value, bool) {
	m, ok := t.raw.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	if !ok {
		return nil, false
	}
	return Wrap(v), true
}

func (t treeValue) Raw() any { return t.raw }

// numberIsIntegral reports whether a json.Number has neither a fractional nor
// an exponent part.
func numberIsIntegral(n json.Number) bool {
	s := string(n)
	return !strings.ContainsAny(s, ".eE")
}
