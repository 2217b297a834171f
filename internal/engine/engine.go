// Package engine holds the schema compiler, the validator and serializer node
// sets, the definitions registry and the per-call validation context. Only the
// root and schema packages are expected to import it.
package engine

import (
	"context"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/i18n"
	"github.com/skemacore/skemacore/internal/input"
)

// validator is one node of the compiled validator tree. The node set is
// closed: every implementation lives in this package, and the compiler is the
// only constructor. Issues returned by validate carry paths relative to the
// node; parents rebase them on the way out.
type validator interface {
	kind() string
	validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues)
}

// vctx is the per-call validation context. It is never shared between calls.
type vctx struct {
	mode     skemacore.Mode
	failFast bool
	maxDepth int
	userCtx  any

	// recursion guard: currently-entered definition names with depth counts
	entered map[string]int

	// fatal is set when the call must abort immediately (recursion limit);
	// container nodes stop validating siblings once it is set.
	fatal bool

	// grade tracks the worst coercion grade seen since the last reset; smart
	// unions use it to score member attempts.
	grade input.Match
}

func newVctx(opt skemacore.ValidateOpt) *vctx {
	maxDepth := opt.MaxDepth
	if maxDepth <= 0 {
		maxDepth = skemacore.DefaultMaxDepth
	}
	return &vctx{
		mode:     opt.Mode,
		failFast: opt.FailFast,
		maxDepth: maxDepth,
		userCtx:  opt.Context,
	}
}

func (vc *vctx) strict() bool { return vc.mode == skemacore.Strict }

func (vc *vctx) noteMatch(m input.Match) {
	if m > vc.grade {
		vc.grade = m
	}
}

func (vc *vctx) funcContext() skemacore.FuncContext {
	return skemacore.FuncContext{Mode: vc.mode, Context: vc.userCtx}
}

// enter registers one level of recursion for a definition, reporting false
// once the configured depth limit is exceeded.
func (vc *vctx) enter(name string) bool {
	if vc.entered == nil {
		vc.entered = make(map[string]int, 4)
	}
	if vc.entered[name] >= vc.maxDepth {
		return false
	}
	vc.entered[name]++
	return true
}

func (vc *vctx) exit(name string) {
	if n := vc.entered[name]; n > 1 {
		vc.entered[name] = n - 1
	} else {
		delete(vc.entered, name)
	}
}

// Registry is the definitions registry: name-keyed validator/serializer pairs
// set exactly once during compilation and read-only afterwards. Reference
// nodes hold a name into it instead of owning their target, which keeps the
// tree ownership acyclic however cyclic the logical schema graph is.
type Registry struct {
	vdefs map[string]validator
	sdefs map[string]serializer
}

func newRegistry() *Registry {
	return &Registry{vdefs: map[string]validator{}, sdefs: map[string]serializer{}}
}

func (r *Registry) resolveValidator(name string) (validator, bool) {
	v, ok := r.vdefs[name]
	return v, ok
}

func (r *Registry) resolveSerializer(name string) (serializer, bool) {
	s, ok := r.sdefs[name]
	return s, ok
}

// ---- issue helpers ----

func issue(code string, params map[string]any) skemacore.Issue {
	return skemacore.Issue{Code: code, Message: i18n.T(code, nil), Params: params}
}

func issueAt(p skemacore.Path, code string, params map[string]any) skemacore.Issue {
	return skemacore.Issue{Path: p, Code: code, Message: i18n.T(code, nil), Params: params}
}

func typeIssue(expected string, v input.Value) skemacore.Issues {
	return skemacore.Issues{issue(skemacore.CodeInvalidType, map[string]any{
		"expected": expected,
		"actual":   v.Kind().String(),
	})}
}

// issuesFromErr normalizes an error from caller-supplied logic into Issues.
func issuesFromErr(err error) skemacore.Issues {
	if err == nil {
		return nil
	}
	if iss, ok := skemacore.AsIssues(err); ok {
		return iss
	}
	return skemacore.Issues{skemacore.Issue{Code: skemacore.CodeCustom, Message: err.Error(), Cause: err}}
}
