package engine

import (
	"context"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/internal/input"
)

type datetimeValidator struct{}

func (datetimeValidator) kind() string { return "datetime" }

func (datetimeValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	t, m, ok := input.AsTime(v, vc.strict())
	if !ok {
		return nil, typeIssue("datetime", v)
	}
	vc.noteMatch(m)
	return t, nil
}

type dateValidator struct{}

func (dateValidator) kind() string { return "date" }

func (dateValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	t, m, ok := input.AsDate(v, vc.strict())
	if !ok {
		return nil, typeIssue("date", v)
	}
	vc.noteMatch(m)
	return t, nil
}

type timeValidator struct{}

func (timeValidator) kind() string { return "time" }

func (timeValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	d, m, ok := input.AsClock(v, vc.strict())
	if !ok {
		return nil, typeIssue("time", v)
	}
	vc.noteMatch(m)
	return d, nil
}

type durationValidator struct{}

func (durationValidator) kind() string { return "duration" }

func (durationValidator) validate(_ context.Context, v input.Value, vc *vctx) (any, skemacore.Issues) {
	d, m, ok := input.AsDuration(v, vc.strict())
	if !ok {
		return nil, typeIssue("duration", v)
	}
	vc.noteMatch(m)
	return d, nil
}
