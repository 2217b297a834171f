package input

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// nativeValue wraps an arbitrary Go value (struct, typed map/slice, numeric
// kinds) behind the Value interface using reflection. Pointers and interfaces
// are unwrapped once at construction so a nil pointer reads as null.
type nativeValue struct {
	raw any
	rv  reflect.Value
}

func wrapNative(v any) Value {
	switch t := v.(type) {
	case time.Time:
		return nativeValue{raw: t}
	case time.Duration:
		return nativeValue{raw: t}
	case []byte:
		return nativeValue{raw: t}
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return treeValue{}
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return treeValue{}
	}
	// Unwrapping may expose a fast-path or special type again.
	if rv.CanInterface() {
		switch rv.Interface().(type) {
		case time.Time, time.Duration, []byte:
			return nativeValue{raw: rv.Interface()}
		}
	}
	return nativeValue{raw: v, rv: rv}
}

func (n nativeValue) Kind() Kind {
	switch n.raw.(type) {
	case time.Time:
		return KindTime
	case time.Duration:
		return KindDuration
	case []byte:
		return KindBytes
	}
	switch n.rv.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindString
	case reflect.Slice, reflect.Array:
		if n.rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindBytes
		}
		return KindList
	case reflect.Map:
		return KindMap
	case reflect.Struct:
		return KindMap
	default:
		return KindOther
	}
}

func (n nativeValue) IsNull() bool { return false }

func (n nativeValue) Bool() (bool, bool) {
	if n.rv.Kind() == reflect.Bool {
		return n.rv.Bool(), true
	}
	return false, false
}

func (n nativeValue) Int() (int64, bool) {
	if _, ok := n.raw.(time.Duration); ok {
		return 0, false
	}
	switch n.rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return n.rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := n.rv.Uint()
		if u > 1<<63-1 {
			return 0, false
		}
		return int64(u), true
	default:
		return 0, false
	}
}

func (n nativeValue) Float() (float64, bool) {
	switch n.rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return n.rv.Float(), true
	default:
		return 0, false
	}
}

func (n nativeValue) Str() (string, bool) {
	if _, ok := n.raw.([]byte); ok {
		return "", false
	}
	if n.rv.Kind() == reflect.String {
		return n.rv.String(), true
	}
	return "", false
}

func (n nativeValue) Bytes() ([]byte, bool) {
	if b, ok := n.raw.([]byte); ok {
		return b, true
	}
	if (n.rv.Kind() == reflect.Slice || n.rv.Kind() == reflect.Array) && n.rv.Type().Elem().Kind() == reflect.Uint8 {
		out := make([]byte, n.rv.Len())
		reflect.Copy(reflect.ValueOf(out), n.rv)
		return out, true
	}
	return nil, false
}

func (n nativeValue) Time() (time.Time, bool) {
	t, ok := n.raw.(time.Time)
	return t, ok
}

func (n nativeValue) Duration() (time.Duration, bool) {
	d, ok := n.raw.(time.Duration)
	return d, ok
}

func (n nativeValue) Len() int {
	switch n.Kind() {
	case KindList:
		return n.rv.Len()
	case KindMap:
		if n.rv.Kind() == reflect.Map {
			return n.rv.Len()
		}
		return len(structFields(n.rv.Type()))
	default:
		return -1
	}
}

func (n nativeValue) Items() ([]Value, bool) {
	if n.Kind() != KindList {
		return nil, false
	}
	out := make([]Value, n.rv.Len())
	for i := range out {
		out[i] = Wrap(n.rv.Index(i).Interface())
	}
	return out, true
}

func (n nativeValue) Entries() ([]Entry, bool) {
	switch n.rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, n.rv.Len())
		vals := make(map[string]reflect.Value, n.rv.Len())
		iter := n.rv.MapRange()
		for iter.Next() {
			k, ok := mapKeyString(iter.Key())
			if !ok {
				return nil, false
			}
			keys = append(keys, k)
			vals[k] = iter.Value()
		}
		sort.Strings(keys)
		out := make([]Entry, len(keys))
		for i, k := range keys {
			out[i] = Entry{Key: k, Value: Wrap(vals[k].Interface())}
		}
		return out, true
	case reflect.Struct:
		if _, ok := n.raw.(time.Time); ok {
			return nil, false
		}
		fields := structFields(n.rv.Type())
		out := make([]Entry, 0, len(fields))
		for _, f := range fields {
			out = append(out, Entry{Key: f.name, Value: Wrap(n.rv.FieldByIndex(f.index).Interface())})
		}
		return out, true
	default:
		return nil, false
	}
}

func (n nativeValue) Field(name string) (Value, bool) {
	switch n.rv.Kind() {
	case reflect.Map:
		kt := n.rv.Type().Key()
		if kt.Kind() != reflect.String {
			return nil, false
		}
		mv := n.rv.MapIndex(reflect.ValueOf(name).Convert(kt))
		if !mv.IsValid() {
			return nil, false
		}
		return Wrap(mv.Interface()), true
	case reflect.Struct:
		for _, f := range structFields(n.rv.Type()) {
			if f.name == name {
				return Wrap(n.rv.FieldByIndex(f.index).Interface()), true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

func (n nativeValue) Raw() any { return n.raw }

func mapKeyString(k reflect.Value) (string, bool) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", k.Int()), true
	default:
		return "", false
	}
}

type fieldInfo struct {
	name  string
	index []int
}

// structFields lists exported fields in declaration order, honoring `json`
// tag renames and skipping `json:"-"`.
func structFields(t reflect.Type) []fieldInfo {
	out := make([]fieldInfo, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			base, _, _ := strings.Cut(tag, ",")
			if base == "-" {
				continue
			}
			if base != "" {
				name = base
			}
		}
		out = append(out, fieldInfo{name: name, index: f.Index})
	}
	return out
}
