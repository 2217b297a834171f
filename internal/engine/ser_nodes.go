package engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"reflect"
	"sort"
	"time"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/internal/input"
)

type anySerializer struct{}

func (anySerializer) serialize(_ context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	return inferSerialize(v, sc)
}

type noneSerializer struct{}

func (noneSerializer) serialize(_ context.Context, v any, _ *sctx) (any, skemacore.Issues) {
	if v != nil {
		return nil, shapeIssue("null", v)
	}
	return nil, nil
}

type boolSerializer struct{}

func (boolSerializer) serialize(_ context.Context, v any, _ *sctx) (any, skemacore.Issues) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return nil, shapeIssue("bool", v)
}

type intSerializer struct{}

func (intSerializer) serialize(_ context.Context, v any, _ *sctx) (any, skemacore.Issues) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	}
	return nil, shapeIssue("int", v)
}

type floatSerializer struct{}

func (floatSerializer) serialize(_ context.Context, v any, _ *sctx) (any, skemacore.Issues) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	}
	return nil, shapeIssue("float", v)
}

type strSerializer struct{}

func (strSerializer) serialize(_ context.Context, v any, _ *sctx) (any, skemacore.Issues) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, shapeIssue("string", v)
}

type bytesSerializer struct {
	format input.BytesFormat
}

func (n bytesSerializer) serialize(_ context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	b, ok := v.([]byte)
	if !ok {
		return nil, shapeIssue("bytes", v)
	}
	if !sc.jsonMode {
		return b, nil
	}
	if n.format == input.BytesUTF8 {
		return string(b), nil
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

type datetimeSerializer struct{}

func (datetimeSerializer) serialize(_ context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, shapeIssue("datetime", v)
	}
	if sc.jsonMode {
		return t.Format(time.RFC3339Nano), nil
	}
	return t, nil
}

type dateSerializer struct{}

func (dateSerializer) serialize(_ context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, shapeIssue("date", v)
	}
	if sc.jsonMode {
		return t.Format("2006-01-02"), nil
	}
	return t, nil
}

type clockSerializer struct{}

func (clockSerializer) serialize(_ context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	d, ok := v.(time.Duration)
	if !ok {
		return nil, shapeIssue("time", v)
	}
	if sc.jsonMode {
		return formatClock(d), nil
	}
	return d, nil
}

func formatClock(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	if d == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%06d", h, m, s, d/time.Microsecond)
}

type durationSerializer struct{}

func (durationSerializer) serialize(_ context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	d, ok := v.(time.Duration)
	if !ok {
		return nil, shapeIssue("duration", v)
	}
	if sc.jsonMode {
		return d.String(), nil
	}
	return d, nil
}

type literalSerializer struct{}

func (literalSerializer) serialize(_ context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	return inferSerialize(v, sc)
}

type listSerializer struct {
	item serializer
}

func (n listSerializer) serialize(ctx context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	items, ok := v.([]any)
	if !ok {
		return nil, shapeIssue("list", v)
	}
	out := make([]any, len(items))
	var iss skemacore.Issues
	for i, e := range items {
		ev, ei := n.item.serialize(ctx, e, sc)
		if len(ei) > 0 {
			iss = skemacore.AppendIssues(iss, ei.At(skemacore.Index(i))...)
			continue
		}
		out[i] = ev
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

type tupleSerializer struct {
	items []serializer
}

func (n tupleSerializer) serialize(ctx context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	items, ok := v.([]any)
	if !ok {
		return nil, shapeIssue("tuple", v)
	}
	if len(items) != len(n.items) {
		return nil, shapeIssue(fmt.Sprintf("tuple of %d", len(n.items)), v)
	}
	out := make([]any, len(items))
	var iss skemacore.Issues
	for i, e := range items {
		ev, ei := n.items[i].serialize(ctx, e, sc)
		if len(ei) > 0 {
			iss = skemacore.AppendIssues(iss, ei.At(skemacore.Index(i))...)
			continue
		}
		out[i] = ev
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

type dictSerializer struct {
	value serializer
}

func (n dictSerializer) serialize(ctx context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, shapeIssue("mapping", v)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]any, len(m))
	var iss skemacore.Issues
	for _, k := range keys {
		ev, ei := n.value.serialize(ctx, m[k], sc)
		if len(ei) > 0 {
			iss = skemacore.AppendIssues(iss, ei.At(skemacore.Key(k))...)
			continue
		}
		out[k] = ev
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

type modelSerializer struct {
	fields       []*field
	extrasTarget string
}

func (n modelSerializer) serialize(ctx context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, shapeIssue("mapping", v)
	}
	out := make(map[string]any, len(m))
	var iss skemacore.Issues
	declared := make(map[string]struct{}, len(n.fields))
	for _, f := range n.fields {
		declared[f.name] = struct{}{}
		if f.serExclude || !sc.keep(f.name) {
			continue
		}
		fv, present := m[f.name]
		if !present {
			continue
		}
		if sc.excludeNone && fv == nil {
			continue
		}
		if sc.excludeDefaults && f.hasDefault && reflect.DeepEqual(fv, f.defValue) {
			continue
		}
		ev, ei := f.serializer.serialize(ctx, fv, sc.child(f.name))
		if len(ei) > 0 {
			iss = skemacore.AppendIssues(iss, ei.At(skemacore.Key(f.name))...)
			continue
		}
		out[f.outName()] = ev
	}
	// extras allowed through validation are rendered without schema guidance
	extras := make([]string, 0)
	for k := range m {
		if _, ok := declared[k]; !ok {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	for _, k := range extras {
		if !sc.keep(k) {
			continue
		}
		ev, ei := inferSerialize(m[k], sc.child(k))
		if len(ei) > 0 {
			iss = skemacore.AppendIssues(iss, ei.At(skemacore.Key(k))...)
			continue
		}
		out[k] = ev
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (f *field) outName() string {
	if f.serAlias != "" {
		return f.serAlias
	}
	return f.name
}

type nullableSerializer struct {
	inner serializer
}

func (n nullableSerializer) serialize(ctx context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	if v == nil {
		return nil, nil
	}
	return n.inner.serialize(ctx, v, sc)
}

type funcSerializer struct {
	fn skemacore.SerializeFunc
}

func (n funcSerializer) serialize(ctx context.Context, v any, sc *sctx) (out any, iss skemacore.Issues) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			iss = skemacore.Issues{skemacore.Issue{
				Code:    skemacore.CodeCustom,
				Message: fmt.Sprintf("panic in custom serializer: %v", r),
			}}
		}
	}()
	res, err := n.fn(ctx, v, sc.funcContext())
	if err != nil {
		return nil, issuesFromErr(err)
	}
	return inferSerialize(res, sc)
}

type refSerializer struct {
	name string
	reg  *Registry
}

func (n refSerializer) serialize(ctx context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	target, ok := n.reg.resolveSerializer(n.name)
	if !ok {
		return nil, skemacore.Issues{issue(skemacore.CodeSchemaUnknownRef, map[string]any{"name": n.name})}
	}
	if !sc.enter(n.name) {
		return nil, skemacore.Issues{issue(skemacore.CodeRecursionLimit, map[string]any{
			"name":  n.name,
			"limit": sc.maxDepth,
		})}
	}
	defer sc.exit(n.name)
	return target.serialize(ctx, v, sc)
}

type unionSerializer struct {
	members []serializer
}

func (n unionSerializer) serialize(ctx context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	for _, m := range n.members {
		if out, iss := m.serialize(ctx, v, sc); len(iss) == 0 {
			return out, nil
		}
	}
	return inferSerialize(v, sc)
}

type taggedUnionSerializer struct {
	discriminator string
	variants      map[any]serializer
}

func (n taggedUnionSerializer) serialize(ctx context.Context, v any, sc *sctx) (any, skemacore.Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, shapeIssue("mapping", v)
	}
	tag, ok := canonLiteral(input.Wrap(m[n.discriminator]))
	if ok {
		if member, hit := n.variants[tag]; hit {
			return member.serialize(ctx, v, sc)
		}
	}
	return inferSerialize(v, sc)
}
