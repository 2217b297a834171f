// Package schema compiles declarative schema descriptions into immutable
// validator/serializer pairs. Compile once, then validate and serialize from
// any number of goroutines.
package schema

import (
	"context"

	"strconv"
	"strings"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/codec"
	"github.com/skemacore/skemacore/i18n"
	"github.com/skemacore/skemacore/internal/engine"
)

// Compile builds a Compiled value from a description. The description is a
// map[string]any tree of typed nodes; every schema error is reported, not
// just the first, as skemacore.Issues inside the returned error.
func Compile(def any) (skemacore.Compiled, error) {
	s, iss := engine.Compile(def)
	if len(iss) > 0 {
		return nil, iss
	}
	return &compiled{schema: s}, nil
}

// MustCompile is Compile for descriptions known good at build time.
func MustCompile(def any) skemacore.Compiled {
	c, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return c
}

type compiled struct {
	schema *engine.Schema
}

func pickValidateOpt(opts []skemacore.ValidateOpt) skemacore.ValidateOpt {
	var opt skemacore.ValidateOpt
	for _, o := range opts {
		opt = o
	}
	return opt
}

func pickSerializeOpt(opts []skemacore.SerializeOpt) skemacore.SerializeOpt {
	var opt skemacore.SerializeOpt
	for _, o := range opts {
		opt = o
	}
	return opt
}

func (c *compiled) Validate(ctx context.Context, v any, opts ...skemacore.ValidateOpt) (any, error) {
	out, iss := c.schema.Validate(ctx, v, pickValidateOpt(opts))
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (c *compiled) ValidateJSON(ctx context.Context, data []byte, opts ...skemacore.ValidateOpt) (any, error) {
	opt := pickValidateOpt(opts)
	v, err := codec.Decode(data)
	if err != nil {
		return nil, skemacore.Issues{{
			Code:    skemacore.CodeParseError,
			Message: err.Error(),
			Cause:   err,
		}}
	}
	if opt.ForbidDuplicateKeys {
		dups, err := codec.DetectDuplicateKeys(data, -1)
		if err == nil && len(dups) > 0 {
			var iss skemacore.Issues
			for _, d := range dups {
				iss = skemacore.AppendIssues(iss, skemacore.Issue{
					Path:    append(parsePointer(d.Path), skemacore.Key(d.Key)),
					Code:    skemacore.CodeDuplicateKey,
					Params:  map[string]any{"key": d.Key},
					Message: i18n.T(skemacore.CodeDuplicateKey, nil),
				})
			}
			return nil, iss
		}
	}
	out, iss := c.schema.Validate(ctx, v, opt)
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (c *compiled) Serialize(ctx context.Context, v any, opts ...skemacore.SerializeOpt) (any, error) {
	out, iss := c.schema.Serialize(ctx, v, pickSerializeOpt(opts))
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (c *compiled) SerializeJSON(ctx context.Context, v any, opts ...skemacore.SerializeOpt) ([]byte, error) {
	opt := pickSerializeOpt(opts)
	opt.Mode = skemacore.SerializeJSON
	out, iss := c.schema.Serialize(ctx, v, opt)
	if len(iss) > 0 {
		return nil, iss
	}
	return codec.Encode(out)
}

// parsePointer turns a JSON Pointer back into structured path segments.
func parsePointer(p string) skemacore.Path {
	if p == "" || p == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	out := make(skemacore.Path, 0, len(parts))
	for _, raw := range parts {
		s := strings.ReplaceAll(strings.ReplaceAll(raw, "~1", "/"), "~0", "~")
		if i, err := strconv.Atoi(s); err == nil && s == strconv.Itoa(i) {
			out = append(out, skemacore.Index(i))
			continue
		}
		out = append(out, skemacore.Key(s))
	}
	return out
}
