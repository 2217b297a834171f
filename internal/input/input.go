// Package input provides the uniform read interface the validator tree uses
// to inspect heterogeneous inputs. Two concrete representations are covered:
// the generic value tree produced by the codec (map[string]any, []any,
// json.Number, ...) and native Go values read through reflection. No code
// outside this package branches on the concrete representation.
package input

import (
	"encoding/json"
	"time"
)

// Kind is the coarse classification of an input value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
	KindTime
	KindDuration
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "mapping"
	case KindTime:
		return "datetime"
	case KindDuration:
		return "duration"
	default:
		return "other"
	}
}

// Match grades how much coercion a successful read required. Exact beats
// strict beats lax; smart unions use the grade to pick the closest member.
type Match int

const (
	MatchExact Match = iota
	MatchStrict
	MatchLax
)

// Entry is one mapping entry.
type Entry struct {
	Key   string
	Value Value
}

// Value is the uniform, side-effect-free read interface over one input value.
// Accessors return ok=false when the value is not exactly of the requested
// kind; coercion lives in the As* helpers, not here.
type Value interface {
	Kind() Kind
	IsNull() bool
	Bool() (bool, bool)
	// Int reports integral values: native ints and json.Number without a
	// fractional or exponent part.
	Int() (int64, bool)
	Float() (float64, bool)
	Str() (string, bool)
	Bytes() ([]byte, bool)
	Time() (time.Time, bool)
	Duration() (time.Duration, bool)
	// Len returns the element/entry count for lists and mappings, -1 otherwise.
	Len() int
	// Items returns sequence elements in input order.
	Items() ([]Value, bool)
	// Entries returns mapping entries. Unordered representations (Go maps)
	// are returned in sorted key order for determinism; struct fields keep
	// declaration order.
	Entries() ([]Entry, bool)
	// Field looks up a mapping entry or struct field by name.
	Field(name string) (Value, bool)
	// Raw returns the wrapped value unchanged.
	Raw() any
}

// Wrap adapts any supported Go value to the Value interface. Generic-tree
// shapes take a fast path; everything else goes through reflection.
func Wrap(v any) Value {
	switch t := v.(type) {
	case nil:
		return treeValue{}
	case Value:
		return t
	case bool, string, json.Number, float64, int, int64, map[string]any, []any:
		return treeValue{raw: t}
	default:
		return wrapNative(v)
	}
}
