package engine

import (
	"context"
	"fmt"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/internal/input"
)

// nullableValidator accepts null before delegating, so a present null is
// never routed through the inner node's stricter logic.
type nullableValidator struct {
	inner validator
}

func (nullableValidator) kind() string { return "nullable" }

func (n nullableValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	if v.IsNull() {
		return nil, nil
	}
	return n.inner.validate(ctx, v, vc)
}

// defaulter is implemented by nodes that can stand in for a missing value;
// model fields consult it before reporting "required".
type defaulter interface {
	defaultValue(ctx context.Context, vc *vctx) (any, skemacore.Issues, bool)
}

type onError int

const (
	onErrorRaise onError = iota
	onErrorDefault
)

// defaultValidator supplies a compiled default for missing values and can
// optionally swallow inner validation errors.
type defaultValidator struct {
	inner   validator
	def     any
	onError onError
}

func (defaultValidator) kind() string { return "default" }

func (n defaultValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	out, iss := n.inner.validate(ctx, v, vc)
	if len(iss) > 0 && n.onError == onErrorDefault && !vc.fatal {
		return n.def, nil
	}
	return out, iss
}

func (n defaultValidator) defaultValue(context.Context, *vctx) (any, skemacore.Issues, bool) {
	return n.def, nil, true
}

// ---- caller-supplied function nodes ----

// runFunc invokes custom logic, converting foreign errors and panics into the
// engine's structured issue shape.
func runFunc(ctx context.Context, fn skemacore.Func, v any, fc skemacore.FuncContext) (out any, iss skemacore.Issues) {
	defer func() {
		if r := recover(); r != nil {
			iss = skemacore.Issues{skemacore.Issue{
				Code:    skemacore.CodeCustom,
				Message: fmt.Sprintf("panic in custom function: %v", r),
			}}
		}
	}()
	res, err := fn(ctx, v, fc)
	if err != nil {
		return nil, issuesFromErr(err)
	}
	return res, nil
}

// funcBeforeValidator transforms the raw input before the inner node sees it.
type funcBeforeValidator struct {
	inner validator
	fn    skemacore.Func
}

func (funcBeforeValidator) kind() string { return "function-before" }

func (n funcBeforeValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	out, iss := runFunc(ctx, n.fn, v.Raw(), vc.funcContext())
	if len(iss) > 0 {
		return nil, iss
	}
	return n.inner.validate(ctx, input.Wrap(out), vc)
}

// funcAfterValidator transforms the validated value produced by the inner node.
type funcAfterValidator struct {
	inner validator
	fn    skemacore.Func
}

func (funcAfterValidator) kind() string { return "function-after" }

func (n funcAfterValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	out, iss := n.inner.validate(ctx, v, vc)
	if len(iss) > 0 {
		return nil, iss
	}
	return runFunc(ctx, n.fn, out, vc.funcContext())
}

// funcPlainValidator replaces validation entirely with custom logic.
type funcPlainValidator struct {
	fn skemacore.Func
}

func (funcPlainValidator) kind() string { return "function-plain" }

func (n funcPlainValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	return runFunc(ctx, n.fn, v.Raw(), vc.funcContext())
}

// funcWrapValidator hands the custom logic explicit control over whether and
// when the inner node runs.
type funcWrapValidator struct {
	inner validator
	fn    skemacore.WrapFunc
}

func (funcWrapValidator) kind() string { return "function-wrap" }

func (n funcWrapValidator) validate(ctx context.Context, v input.Value, vc *vctx) (out any, iss skemacore.Issues) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			iss = skemacore.Issues{skemacore.Issue{
				Code:    skemacore.CodeCustom,
				Message: fmt.Sprintf("panic in custom function: %v", r),
			}}
		}
	}()
	next := func(inner any) (any, error) {
		res, ni := n.inner.validate(ctx, input.Wrap(inner), vc)
		if len(ni) > 0 {
			return nil, ni
		}
		return res, nil
	}
	res, err := n.fn(ctx, v.Raw(), next, vc.funcContext())
	if err != nil {
		return nil, issuesFromErr(err)
	}
	return res, nil
}
