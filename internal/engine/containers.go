package engine

import (
	"context"
	"reflect"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/internal/input"
)

// lenBounds carries min/max element-count constraints (-1 when unset).
type lenBounds struct{ min, max int }

func (lb lenBounds) check(n int) skemacore.Issues {
	var iss skemacore.Issues
	if lb.min >= 0 && n < lb.min {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodeTooShort, map[string]any{"min_length": lb.min, "got": n}))
	}
	if lb.max >= 0 && n > lb.max {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodeTooLong, map[string]any{"max_length": lb.max, "got": n}))
	}
	return iss
}

type listValidator struct {
	item   validator
	bounds lenBounds
}

func (listValidator) kind() string { return "list" }

func (n listValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	items, ok := v.Items()
	if !ok {
		return nil, typeIssue("list", v)
	}
	if iss := n.bounds.check(len(items)); len(iss) > 0 {
		return nil, iss
	}
	out := make([]any, 0, len(items))
	var iss skemacore.Issues
	for i, el := range items {
		ev, ei := n.item.validate(ctx, el, vc)
		if len(ei) > 0 {
			iss = skemacore.AppendIssues(iss, ei.At(skemacore.Index(i))...)
			if vc.fatal || vc.failFast {
				return nil, iss
			}
			continue
		}
		out = append(out, ev)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

type tupleValidator struct {
	items []validator
}

func (tupleValidator) kind() string { return "tuple" }

func (n tupleValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	items, ok := v.Items()
	if !ok {
		return nil, typeIssue("tuple", v)
	}
	// arity first, so a wrong-length tuple fails before element validation
	if len(items) != len(n.items) {
		code := skemacore.CodeTooLong
		if len(items) < len(n.items) {
			code = skemacore.CodeTooShort
		}
		return nil, skemacore.Issues{issue(code, map[string]any{"expected": len(n.items), "got": len(items)})}
	}
	out := make([]any, 0, len(items))
	var iss skemacore.Issues
	for i, el := range items {
		ev, ei := n.items[i].validate(ctx, el, vc)
		if len(ei) > 0 {
			iss = skemacore.AppendIssues(iss, ei.At(skemacore.Index(i))...)
			if vc.fatal || vc.failFast {
				return nil, iss
			}
			continue
		}
		out = append(out, ev)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

type setValidator struct {
	item   validator
	bounds lenBounds
}

func (setValidator) kind() string { return "set" }

func (n setValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	items, ok := v.Items()
	if !ok {
		return nil, typeIssue("set", v)
	}
	out := make([]any, 0, len(items))
	seen := make(map[any]struct{}, len(items))
	var iss skemacore.Issues
	for i, el := range items {
		ev, ei := n.item.validate(ctx, el, vc)
		if len(ei) > 0 {
			iss = skemacore.AppendIssues(iss, ei.At(skemacore.Index(i))...)
			if vc.fatal || vc.failFast {
				return nil, iss
			}
			continue
		}
		if hashable(ev) {
			if _, dup := seen[ev]; dup {
				continue
			}
			seen[ev] = struct{}{}
		}
		out = append(out, ev)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	// size constraints apply to the deduplicated result
	if iss := n.bounds.check(len(out)); len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func hashable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

type dictValidator struct {
	key    validator // nil means any string key
	value  validator
	bounds lenBounds
}

func (dictValidator) kind() string { return "dict" }

func (n dictValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	entries, ok := v.Entries()
	if !ok {
		return nil, typeIssue("mapping", v)
	}
	if iss := n.bounds.check(len(entries)); len(iss) > 0 {
		return nil, iss
	}
	out := make(map[string]any, len(entries))
	var iss skemacore.Issues
	for _, e := range entries {
		outKey := e.Key
		if n.key != nil {
			kv, ki := n.key.validate(ctx, input.Wrap(e.Key), vc)
			if len(ki) > 0 {
				iss = skemacore.AppendIssues(iss, ki.At(skemacore.Key(e.Key))...)
				if vc.fatal || vc.failFast {
					return nil, iss
				}
				continue
			}
			if ks, ok := kv.(string); ok {
				outKey = ks
			}
		}
		ev, ei := n.value.validate(ctx, e.Value, vc)
		if len(ei) > 0 {
			iss = skemacore.AppendIssues(iss, ei.At(skemacore.Key(e.Key))...)
			if vc.fatal || vc.failFast {
				return nil, iss
			}
			continue
		}
		out[outKey] = ev
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}
