package engine

import (
	"context"
	"fmt"
	"strings"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/internal/input"
)

// canonLiteral normalizes an input value into the comparable shape literal and
// enum members are stored in at compile time.
func canonLiteral(v input.Value) (any, bool) {
	switch v.Kind() {
	case input.KindNull:
		return nil, true
	case input.KindBool:
		b, _ := v.Bool()
		return b, true
	case input.KindInt:
		i, _ := v.Int()
		return i, true
	case input.KindFloat:
		f, _ := v.Float()
		return f, true
	case input.KindString:
		s, _ := v.Str()
		return s, true
	}
	return nil, false
}

type literalValidator struct {
	members []any
	allowed map[any]struct{}
}

func newLiteralValidator(members []any) literalValidator {
	allowed := make(map[any]struct{}, len(members))
	for _, m := range members {
		allowed[m] = struct{}{}
	}
	return literalValidator{members: members, allowed: allowed}
}

func (literalValidator) kind() string { return "literal" }

func (n literalValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	got, ok := canonLiteral(v)
	if ok {
		if _, hit := n.allowed[got]; hit {
			vc.noteMatch(input.MatchExact)
			return got, nil
		}
	}
	return nil, skemacore.Issues{issue(skemacore.CodeInvalidLiteral, map[string]any{
		"expected": memberList(n.members),
	})}
}

type enumValidator struct {
	members []any
	allowed map[any]struct{}
}

func newEnumValidator(members []any) enumValidator {
	allowed := make(map[any]struct{}, len(members))
	for _, m := range members {
		allowed[m] = struct{}{}
	}
	return enumValidator{members: members, allowed: allowed}
}

func (enumValidator) kind() string { return "enum" }

func (n enumValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	got, ok := canonLiteral(v)
	if ok {
		if _, hit := n.allowed[got]; hit {
			vc.noteMatch(input.MatchExact)
			return got, nil
		}
	}
	return nil, skemacore.Issues{issue(skemacore.CodeInvalidEnum, map[string]any{
		"expected": memberList(n.members),
	})}
}

func memberList(members []any) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, fmt.Sprintf("%v", m))
	}
	return strings.Join(parts, ", ")
}
