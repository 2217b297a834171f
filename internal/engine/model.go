package engine

import (
	"context"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/internal/input"
)

// field is one named member of a model node, with its serialization
// descriptor attached at compile time.
type field struct {
	name       string
	alias      string // validation alias; lookup tries it before the name
	serAlias   string // output name; falls back to name
	required   bool
	validator  validator
	serializer serializer
	serExclude bool

	// compiled default, recorded for exclude-defaults comparison
	hasDefault bool
	defValue   any
}

// lookup resolves the field in the input, trying the alias first and falling
// back to the declared name when populateByName is set (or no alias exists).
func (f *field) lookup(v input.Value, populateByName bool) (input.Value, bool) {
	if f.alias != "" {
		if fv, ok := v.Field(f.alias); ok {
			return fv, true
		}
		if !populateByName {
			return nil, false
		}
	}
	return v.Field(f.name)
}

type modelValidator struct {
	fields         []*field
	known          map[string]struct{} // names and aliases, for the unknown-key scan
	extra          skemacore.ExtraPolicy
	extrasTarget   string // catch-all key for ExtraAllow; empty keeps extras inline
	populateByName bool
}

func (modelValidator) kind() string { return "model" }

func (n modelValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	if v.Kind() != input.KindMap {
		return nil, typeIssue("mapping", v)
	}
	out := make(map[string]any, len(n.fields))
	var iss skemacore.Issues

	// pass 1: declared fields in schema order
	for _, f := range n.fields {
		if fv, ok := f.lookup(v, n.populateByName); ok {
			ev, ei := f.validator.validate(ctx, fv, vc)
			if len(ei) > 0 {
				iss = skemacore.AppendIssues(iss, ei.At(skemacore.Key(f.name))...)
				if vc.fatal || vc.failFast {
					return nil, iss
				}
				continue
			}
			out[f.name] = ev
			continue
		}
		// missing: a with-default field fills in, otherwise required fails
		if d, ok := f.validator.(defaulter); ok {
			dv, di, applied := d.defaultValue(ctx, vc)
			if applied {
				if len(di) > 0 {
					iss = skemacore.AppendIssues(iss, di.At(skemacore.Key(f.name))...)
					if vc.fatal || vc.failFast {
						return nil, iss
					}
					continue
				}
				out[f.name] = dv
				continue
			}
		}
		if f.required {
			iss = skemacore.AppendIssues(iss, issueAt(skemacore.Path{skemacore.Key(f.name)}, skemacore.CodeRequired, nil))
			if vc.failFast {
				return nil, iss
			}
		}
	}

	// pass 2: unknown keys, independent of the field pass
	if n.extra != skemacore.ExtraIgnore {
		entries, _ := v.Entries()
		var extras map[string]any
		for _, e := range entries {
			if _, known := n.known[e.Key]; known {
				continue
			}
			switch n.extra {
			case skemacore.ExtraForbid:
				iss = skemacore.AppendIssues(iss, issueAt(skemacore.Path{skemacore.Key(e.Key)}, skemacore.CodeExtraForbidden, nil))
				if vc.failFast {
					return nil, iss
				}
			case skemacore.ExtraAllow:
				if n.extrasTarget != "" {
					if extras == nil {
						extras = make(map[string]any)
					}
					extras[e.Key] = e.Value.Raw()
				} else {
					out[e.Key] = e.Value.Raw()
				}
			}
		}
		if extras != nil {
			out[n.extrasTarget] = extras
		}
	}

	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}
