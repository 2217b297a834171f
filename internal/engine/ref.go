package engine

import (
	"context"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/internal/input"
)

// definitionRefValidator resolves a named definition at validation time, so
// recursive schemas never hold a direct pointer cycle. Depth per name is
// bounded; crossing the limit aborts the whole run.
type definitionRefValidator struct {
	name string
	reg  *Registry
}

func (definitionRefValidator) kind() string { return "definition-ref" }

func (n definitionRefValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	target, ok := n.reg.resolveValidator(n.name)
	if !ok {
		return nil, skemacore.Issues{issue(skemacore.CodeSchemaUnknownRef, map[string]any{
			"name": n.name,
		})}
	}
	if !vc.enter(n.name) {
		vc.fatal = true
		return nil, skemacore.Issues{issue(skemacore.CodeRecursionLimit, map[string]any{
			"name":  n.name,
			"limit": vc.maxDepth,
		})}
	}
	defer vc.exit(n.name)
	return target.validate(ctx, v, vc)
}
