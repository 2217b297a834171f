package engine

import (
	"context"
	"math"
	"regexp"
	"strings"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/internal/input"
)

// anyValidator accepts every input unchanged.
type anyValidator struct{}

func (anyValidator) kind() string { return "any" }

func (anyValidator) validate(_ context.Context, v input.Value, _ *vctx) (any, skemacore.Issues) {
	return v.Raw(), nil
}

// noneValidator accepts only null.
type noneValidator struct{}

func (noneValidator) kind() string { return "none" }

func (noneValidator) validate(_ context.Context, v input.Value, _ *vctx) (any, skemacore.Issues) {
	if v.IsNull() {
		return nil, nil
	}
	return nil, typeIssue("null", v)
}

type boolValidator struct{}

func (boolValidator) kind() string { return "bool" }

func (boolValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	b, m, ok := input.AsBool(v, vc.strict())
	if !ok {
		return nil, typeIssue("bool", v)
	}
	vc.noteMatch(m)
	return b, nil
}

// numBounds carries the shared numeric constraint set; checks run strictly
// after the type check so range errors never mask type errors.
type numBounds struct {
	ge, gt, le, lt *float64
	multipleOf     *float64
}

func (nb numBounds) check(f float64) skemacore.Issues {
	var iss skemacore.Issues
	if nb.ge != nil && !(f >= *nb.ge) {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodeTooSmall, map[string]any{"ge": *nb.ge, "got": f}))
	}
	if nb.gt != nil && !(f > *nb.gt) {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodeTooSmall, map[string]any{"gt": *nb.gt, "got": f}))
	}
	if nb.le != nil && !(f <= *nb.le) {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodeTooBig, map[string]any{"le": *nb.le, "got": f}))
	}
	if nb.lt != nil && !(f < *nb.lt) {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodeTooBig, map[string]any{"lt": *nb.lt, "got": f}))
	}
	if nb.multipleOf != nil && *nb.multipleOf != 0 {
		q := f / *nb.multipleOf
		if q != math.Trunc(q) {
			iss = skemacore.AppendIssues(iss, issue(skemacore.CodeMultipleOf, map[string]any{"multiple_of": *nb.multipleOf, "got": f}))
		}
	}
	return iss
}

type intValidator struct {
	bounds numBounds
}

func (intValidator) kind() string { return "int" }

func (n intValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	i, m, ok := input.AsInt(v, vc.strict())
	if !ok {
		return nil, typeIssue("int", v)
	}
	if iss := n.bounds.check(float64(i)); len(iss) > 0 {
		return nil, iss
	}
	vc.noteMatch(m)
	return i, nil
}

type floatValidator struct {
	bounds      numBounds
	allowInfNan bool
}

func (floatValidator) kind() string { return "float" }

func (n floatValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	f, m, ok := input.AsFloat(v, vc.strict())
	if !ok {
		return nil, typeIssue("float", v)
	}
	if !n.allowInfNan && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil, skemacore.Issues{issue(skemacore.CodeFiniteNumber, nil)}
	}
	if iss := n.bounds.check(f); len(iss) > 0 {
		return nil, iss
	}
	vc.noteMatch(m)
	return f, nil
}

type strValidator struct {
	minLen, maxLen  int // -1 when unset
	pattern         *regexp.Regexp
	patternSource   string
	stripWhitespace bool
	toLower         bool
	toUpper         bool
	coerceNumbers   bool
}

func (strValidator) kind() string { return "str" }

func (n strValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	s, m, ok := input.AsString(v, vc.strict(), n.coerceNumbers)
	if !ok {
		return nil, typeIssue("string", v)
	}
	if n.stripWhitespace {
		s = strings.TrimSpace(s)
	}
	if n.toLower {
		s = strings.ToLower(s)
	}
	if n.toUpper {
		s = strings.ToUpper(s)
	}
	var iss skemacore.Issues
	rn := len([]rune(s))
	if n.minLen >= 0 && rn < n.minLen {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodeTooShort, map[string]any{"min_length": n.minLen, "got": rn}))
	}
	if n.maxLen >= 0 && rn > n.maxLen {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodeTooLong, map[string]any{"max_length": n.maxLen, "got": rn}))
	}
	if n.pattern != nil && !n.pattern.MatchString(s) {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodePattern, map[string]any{"pattern": n.patternSource}))
	}
	if len(iss) > 0 {
		return nil, iss
	}
	vc.noteMatch(m)
	return s, nil
}

type bytesValidator struct {
	minLen, maxLen int
	format         input.BytesFormat
}

func (bytesValidator) kind() string { return "bytes" }

func (n bytesValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	b, m, ok := input.AsBytes(v, n.format)
	if !ok {
		return nil, typeIssue("bytes", v)
	}
	var iss skemacore.Issues
	if n.minLen >= 0 && len(b) < n.minLen {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodeTooShort, map[string]any{"min_length": n.minLen, "got": len(b)}))
	}
	if n.maxLen >= 0 && len(b) > n.maxLen {
		iss = skemacore.AppendIssues(iss, issue(skemacore.CodeTooLong, map[string]any{"max_length": n.maxLen, "got": len(b)}))
	}
	if len(iss) > 0 {
		return nil, iss
	}
	vc.noteMatch(m)
	return b, nil
}
