package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/internal/input"
)

// taggedUnionValidator routes on a discriminator key and reports a single
// focused issue when routing fails, never the fan-out of every variant.
type taggedUnionValidator struct {
	discriminator string
	variants      map[any]validator
}

func (taggedUnionValidator) kind() string { return "tagged-union" }

func (n taggedUnionValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	if v.Kind() != input.KindMap {
		return nil, typeIssue("object", v)
	}
	tag, ok := v.Field(n.discriminator)
	if !ok || tag.IsNull() {
		return nil, skemacore.Issues{issue(skemacore.CodeDiscriminatorMissing, map[string]any{
			"discriminator": n.discriminator,
		})}
	}
	key, _ := canonLiteral(tag)
	member, hit := n.variants[key]
	if !hit {
		return nil, skemacore.Issues{issueAt(
			skemacore.Path{skemacore.Key(n.discriminator)},
			skemacore.CodeDiscriminatorUnknown,
			map[string]any{
				"discriminator": n.discriminator,
				"got":           fmt.Sprintf("%v", key),
				"expected":      n.allowedTags(),
			},
		)}
	}
	return member.validate(ctx, v, vc)
}

func (n taggedUnionValidator) allowedTags() string {
	tags := make([]string, 0, len(n.variants))
	for k := range n.variants {
		tags = append(tags, fmt.Sprintf("%v", k))
	}
	sort.Strings(tags)
	return strings.Join(tags, ", ")
}

type unionMember struct {
	label     string
	validator validator
}

// smartUnionValidator tries members in declaration order and keeps the result
// that needed the least coercion. An exact match wins immediately; ties go to
// the earlier member.
type smartUnionValidator struct {
	members []unionMember
}

func (smartUnionValidator) kind() string { return "union" }

func (n smartUnionValidator) validate(ctx context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	outer := vc.grade

	var (
		best      any
		bestGrade input.Match
		found     bool
		all       skemacore.Issues
	)
	for _, m := range n.members {
		vc.grade = input.MatchExact
		out, iss := m.validator.validate(ctx, v, vc)
		if vc.fatal {
			vc.noteOuter(outer, vc.grade)
			return nil, iss.At(skemacore.Key(m.label))
		}
		if len(iss) > 0 {
			all = skemacore.AppendIssues(all, iss.At(skemacore.Key(m.label))...)
			continue
		}
		grade := vc.grade
		if grade == input.MatchExact {
			vc.noteOuter(outer, grade)
			return out, nil
		}
		if !found || grade < bestGrade {
			best, bestGrade, found = out, grade, true
		}
	}
	if found {
		vc.noteOuter(outer, bestGrade)
		return best, nil
	}
	vc.grade = outer
	if len(all) == 0 {
		all = skemacore.Issues{issue(skemacore.CodeUnionNoMatch, nil)}
	}
	return nil, all
}

// noteOuter restores the caller's running grade and folds in the subtree's.
func (vc *vctx) noteOuter(outer, sub input.Match) {
	vc.grade = outer
	vc.noteMatch(sub)
}
