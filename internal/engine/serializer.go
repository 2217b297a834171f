package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"
	"time"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/i18n"
)

// serializer is one node of the compiled serializer tree. It mirrors the
// validator tree node for node; the compiler builds both from the same
// description.
type serializer interface {
	serialize(ctx context.Context, v any, sc *sctx) (any, skemacore.Issues)
}

// sctx is the per-call serialization context.
type sctx struct {
	jsonMode        bool
	excludeDefaults bool
	excludeNone     bool
	maxDepth        int
	include         *filter
	exclude         *filter
	userCtx         any

	// recursion guard: currently-entered definition names with depth counts.
	// Shared across child contexts so cyclic value graphs are caught
	// regardless of which subtree they enter through.
	entered map[string]int
}

func newSctx(opt skemacore.SerializeOpt) *sctx {
	maxDepth := opt.MaxDepth
	if maxDepth <= 0 {
		maxDepth = skemacore.DefaultMaxDepth
	}
	return &sctx{
		jsonMode:        opt.Mode == skemacore.SerializeJSON,
		excludeDefaults: opt.ExcludeDefaults && !opt.RoundTrip,
		excludeNone:     opt.ExcludeNone,
		maxDepth:        maxDepth,
		include:         newFilter(opt.Include),
		exclude:         newFilter(opt.Exclude),
		userCtx:         opt.Context,
		entered:         make(map[string]int, 4),
	}
}

// enter registers one level of recursion for a definition, reporting false
// once the configured depth limit is exceeded.
func (sc *sctx) enter(name string) bool {
	if sc.entered[name] >= sc.maxDepth {
		return false
	}
	sc.entered[name]++
	return true
}

func (sc *sctx) exit(name string) {
	if n := sc.entered[name]; n > 1 {
		sc.entered[name] = n - 1
	} else {
		delete(sc.entered, name)
	}
}

func (sc *sctx) funcContext() skemacore.FuncContext {
	return skemacore.FuncContext{Context: sc.userCtx}
}

// child derives the context for a model field, descending both filters.
func (sc *sctx) child(name string) *sctx {
	inc := sc.include.descend(name)
	exc := sc.exclude.descend(name)
	if inc == sc.include && exc == sc.exclude {
		return sc
	}
	c := *sc
	c.include = inc
	c.exclude = exc
	return &c
}

// keep reports whether a model field passes the include/exclude filters.
func (sc *sctx) keep(name string) bool {
	if sc.include != nil && !sc.include.has(name) {
		return false
	}
	if sc.exclude != nil && sc.exclude.dropsLeaf(name) {
		return false
	}
	return true
}

// filter is a tree of field names built from dotted paths ("a", "a.b.c").
// A nil child set means the entry is a leaf covering the whole subtree.
type filter struct {
	children map[string]*filter
}

func newFilter(paths []string) *filter {
	if len(paths) == 0 {
		return nil
	}
	root := &filter{children: map[string]*filter{}}
	for _, p := range paths {
		node := root
		for _, seg := range strings.Split(p, ".") {
			if seg == "" {
				continue
			}
			if node.children == nil {
				// an earlier path already covers this whole subtree
				break
			}
			next, ok := node.children[seg]
			if !ok {
				next = &filter{children: map[string]*filter{}}
				node.children[seg] = next
			}
			node = next
		}
		node.children = nil
	}
	return root
}

func (f *filter) has(name string) bool {
	if f == nil || f.children == nil {
		return true
	}
	_, ok := f.children[name]
	return ok
}

// dropsLeaf reports whether an exclude filter removes the field outright, as
// opposed to merely excluding parts of its subtree.
func (f *filter) dropsLeaf(name string) bool {
	if f == nil || f.children == nil {
		return false
	}
	c, ok := f.children[name]
	return ok && c.children == nil
}

// descend returns the sub-filter governing a field's subtree. A leaf match or
// a miss yields nil, which imposes no constraint below.
func (f *filter) descend(name string) *filter {
	if f == nil || f.children == nil {
		return nil
	}
	c, ok := f.children[name]
	if !ok || c.children == nil {
		return nil
	}
	return c
}

func shapeIssue(expected string, got any) skemacore.Issues {
	return skemacore.Issues{skemacore.Issue{
		Code:    skemacore.CodeInvalidShape,
		Message: i18n.T(skemacore.CodeInvalidShape, nil),
		Params:  map[string]any{"expected": expected, "got": typeName(got)},
	}}
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case bool:
		return "bool"
	case int, int64, json.Number:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case []byte:
		return "bytes"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	case time.Time:
		return "datetime"
	case time.Duration:
		return "duration"
	}
	return "other"
}

// inferSerialize renders a value without schema guidance: the fallback for
// any-typed nodes and allowed extras. Value mode passes data through; JSON
// mode rewrites non-JSON shapes recursively, bounded by the call's depth
// limit so cyclic value graphs fail instead of overflowing the stack.
func inferSerialize(v any, sc *sctx) (any, skemacore.Issues) {
	return inferValue(v, sc, 0)
}

func inferValue(v any, sc *sctx, depth int) (any, skemacore.Issues) {
	if !sc.jsonMode {
		return v, nil
	}
	if depth >= sc.maxDepth {
		return nil, skemacore.Issues{issue(skemacore.CodeRecursionLimit, map[string]any{
			"limit": sc.maxDepth,
		})}
	}
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case time.Duration:
		return t.String(), nil
	case []byte:
		return base64.StdEncoding.EncodeToString(t), nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ev, iss := inferValue(e, sc, depth+1)
			if len(iss) > 0 {
				return nil, iss.At(skemacore.Index(i))
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ev, iss := inferValue(e, sc, depth+1)
			if len(iss) > 0 {
				return nil, iss.At(skemacore.Key(k))
			}
			out[k] = ev
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		keys := make([]string, 0, len(t))
		byKey := make(map[string]any, len(t))
		for k, e := range t {
			ks := stringifyKey(k)
			keys = append(keys, ks)
			byKey[ks] = e
		}
		sort.Strings(keys)
		for _, k := range keys {
			ev, iss := inferValue(byKey[k], sc, depth+1)
			if len(iss) > 0 {
				return nil, iss.At(skemacore.Key(k))
			}
			out[k] = ev
		}
		return out, nil
	}
	return v, nil
}

func stringifyKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	b, err := json.Marshal(k)
	if err != nil {
		return "?"
	}
	return strings.Trim(string(b), `"`)
}
