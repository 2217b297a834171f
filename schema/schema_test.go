package schema_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/schema"
)

func mustCompile(t *testing.T, def any) skemacore.Compiled {
	t.Helper()
	c, err := schema.Compile(def)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return c
}

func issuesOf(t *testing.T, err error) skemacore.Issues {
	t.Helper()
	iss, ok := skemacore.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got: %v", err)
	}
	return iss
}

func hasIssue(iss skemacore.Issues, code, pointer string) bool {
	for _, it := range iss {
		if it.Code == code && it.Path.Pointer() == pointer {
			return true
		}
	}
	return false
}

func userSchema() map[string]any {
	return map[string]any{
		"type": "model",
		"fields": []any{
			map[string]any{"name": "name", "schema": map[string]any{"type": "str"}},
			map[string]any{"name": "age", "schema": map[string]any{"type": "int"}, "default": 0},
		},
		"extra": "forbid",
	}
}

func TestModel_RequiredAndDefault(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, userSchema())

	_, err := c.ValidateJSON(ctx, []byte(`{"age": 5}`))
	iss := issuesOf(t, err)
	if !hasIssue(iss, skemacore.CodeRequired, "/name") {
		t.Fatalf("expected required at /name, got: %v", iss)
	}

	out, err := c.Validate(ctx, map[string]any{"name": "alice"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	got, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected map output, got %T", out)
	}
	if got["name"] != "alice" || got["age"] != int64(0) {
		t.Fatalf("unexpected output: %#v", got)
	}
}

func TestModel_ExtraForbidden(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, userSchema())

	_, err := c.ValidateJSON(ctx, []byte(`{"name":"a","zzz":true}`))
	iss := issuesOf(t, err)
	if !hasIssue(iss, skemacore.CodeExtraForbidden, "/zzz") {
		t.Fatalf("expected extra_forbidden at /zzz, got: %v", iss)
	}
}

func TestModel_AliasLookup(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type": "model",
		"fields": []any{
			map[string]any{"name": "userName", "alias": "user_name", "schema": map[string]any{"type": "str"}},
		},
	})
	out, err := c.ValidateJSON(ctx, []byte(`{"user_name":"bob"}`))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if out.(map[string]any)["userName"] != "bob" {
		t.Fatalf("unexpected output: %#v", out)
	}
}

func TestStrictVsLax(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{"type": "int"})

	out, err := c.Validate(ctx, "5")
	if err != nil || out != int64(5) {
		t.Fatalf("lax int from string: out=%v err=%v", out, err)
	}
	_, err = c.Validate(ctx, "5", skemacore.ValidateOpt{Mode: skemacore.Strict})
	iss := issuesOf(t, err)
	if !hasIssue(iss, skemacore.CodeInvalidType, "/") {
		t.Fatalf("expected invalid_type in strict mode, got: %v", iss)
	}
}

func TestNumericConstraints_AfterTypeCheck(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{"type": "int", "ge": 0, "lt": 10})

	if _, err := c.Validate(ctx, int64(3)); err != nil {
		t.Fatalf("expected 3 in range: %v", err)
	}
	_, err := c.Validate(ctx, int64(-1))
	if !hasIssue(issuesOf(t, err), skemacore.CodeTooSmall, "/") {
		t.Fatalf("expected too_small, got: %v", err)
	}
	// a non-integer never reports a range issue
	_, err = c.Validate(ctx, "nope")
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Code != skemacore.CodeInvalidType {
		t.Fatalf("expected a lone invalid_type, got: %v", iss)
	}
}

func TestList_ErrorOrderAndFailFast(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type":  "list",
		"items": map[string]any{"type": "int"},
	})

	_, err := c.ValidateJSON(ctx, []byte(`[1, "x", 3, "y"]`))
	iss := issuesOf(t, err)
	if len(iss) != 2 {
		t.Fatalf("expected two issues, got: %v", iss)
	}
	if iss[0].Path.Pointer() != "/1" || iss[1].Path.Pointer() != "/3" {
		t.Fatalf("expected issues at /1 then /3, got: %v", iss)
	}

	_, err = c.ValidateJSON(ctx, []byte(`[1, "x", 3, "y"]`), skemacore.ValidateOpt{FailFast: true})
	iss = issuesOf(t, err)
	if len(iss) != 1 || iss[0].Path.Pointer() != "/1" {
		t.Fatalf("expected a single issue at /1, got: %v", iss)
	}
}

func TestTuple_ArityBeforeElements(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type": "tuple",
		"items": []any{
			map[string]any{"type": "int"},
			map[string]any{"type": "str"},
		},
	})
	_, err := c.ValidateJSON(ctx, []byte(`["x"]`))
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Code != skemacore.CodeTooShort {
		t.Fatalf("expected a lone too_short, got: %v", iss)
	}
}

func TestDict_KeyAndValueValidation(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type":   "dict",
		"keys":   map[string]any{"type": "str", "min_length": 2},
		"values": map[string]any{"type": "int"},
	})
	_, err := c.ValidateJSON(ctx, []byte(`{"a": 1, "bb": "x"}`))
	iss := issuesOf(t, err)
	if !hasIssue(iss, skemacore.CodeTooShort, "/a") {
		t.Fatalf("expected too_short at /a, got: %v", iss)
	}
	if !hasIssue(iss, skemacore.CodeInvalidType, "/bb") {
		t.Fatalf("expected invalid_type at /bb, got: %v", iss)
	}
}

func TestSmartUnion_PrefersExactMember(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type": "union",
		"choices": []any{
			map[string]any{"type": "int"},
			map[string]any{"type": "str"},
		},
	})

	// "5" coerces to int in lax mode, but the str member matches exactly
	out, err := c.Validate(ctx, "5")
	if err != nil || out != "5" {
		t.Fatalf("expected exact str win: out=%v err=%v", out, err)
	}
	out, err = c.Validate(ctx, int64(5))
	if err != nil || out != int64(5) {
		t.Fatalf("expected exact int win: out=%v err=%v", out, err)
	}
}

func TestSmartUnion_Idempotent(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type": "union",
		"choices": []any{
			map[string]any{"type": "int"},
			map[string]any{"type": "str"},
		},
	})
	out1, err := c.Validate(ctx, "5")
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	out2, err := c.Validate(ctx, out1)
	if err != nil || out2 != out1 {
		t.Fatalf("expected idempotent result, got %v then %v (err=%v)", out1, out2, err)
	}
}

func TestSmartUnion_AllMembersFail(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type": "union",
		"choices": []any{
			map[string]any{"type": "str"},
			map[string]any{"type": "list", "items": map[string]any{"type": "int"}},
		},
	})
	_, err := c.ValidateJSON(ctx, []byte(`{"x":1}`))
	iss := issuesOf(t, err)
	if !hasIssue(iss, skemacore.CodeInvalidType, "/str") || !hasIssue(iss, skemacore.CodeInvalidType, "/list") {
		t.Fatalf("expected per-member issues, got: %v", iss)
	}
}

func TestTaggedUnion_Routing(t *testing.T) {
	ctx := context.Background()
	cat := map[string]any{
		"type": "model",
		"fields": []any{
			map[string]any{"name": "kind", "schema": map[string]any{"type": "str"}},
			map[string]any{"name": "lives", "schema": map[string]any{"type": "int"}},
		},
	}
	dog := map[string]any{
		"type": "model",
		"fields": []any{
			map[string]any{"name": "kind", "schema": map[string]any{"type": "str"}},
			map[string]any{"name": "good", "schema": map[string]any{"type": "bool"}},
		},
	}
	c := mustCompile(t, map[string]any{
		"type":          "tagged-union",
		"discriminator": "kind",
		"choices":       map[string]any{"cat": cat, "dog": dog},
	})

	out, err := c.ValidateJSON(ctx, []byte(`{"kind":"cat","lives":9}`))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if out.(map[string]any)["lives"] != int64(9) {
		t.Fatalf("unexpected output: %#v", out)
	}

	_, err = c.ValidateJSON(ctx, []byte(`{"lives":9}`))
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Code != skemacore.CodeDiscriminatorMissing {
		t.Fatalf("expected a lone discriminator_missing, got: %v", iss)
	}

	_, err = c.ValidateJSON(ctx, []byte(`{"kind":"fish"}`))
	iss = issuesOf(t, err)
	if len(iss) != 1 || !hasIssue(iss, skemacore.CodeDiscriminatorUnknown, "/kind") {
		t.Fatalf("expected a lone discriminator_unknown at /kind, got: %v", iss)
	}
}

func TestRecursion_LimitAborts(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type":   "definitions",
		"schema": map[string]any{"type": "definition-ref", "schema_ref": "tree"},
		"definitions": []any{
			map[string]any{
				"ref":   "tree",
				"type":  "list",
				"items": map[string]any{"type": "definition-ref", "schema_ref": "tree"},
			},
		},
	})

	var doc any = []any{}
	for i := 0; i < 10; i++ {
		doc = []any{doc}
	}
	if _, err := c.Validate(ctx, doc); err != nil {
		t.Fatalf("expected depth 11 under default limit: %v", err)
	}
	_, err := c.Validate(ctx, doc, skemacore.ValidateOpt{MaxDepth: 4})
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Code != skemacore.CodeRecursionLimit {
		t.Fatalf("expected a single recursion_limit issue, got: %v", iss)
	}
}

func nodeSchema() map[string]any {
	return map[string]any{
		"type":   "definitions",
		"schema": map[string]any{"type": "definition-ref", "schema_ref": "node"},
		"definitions": []any{
			map[string]any{
				"ref":  "node",
				"type": "model",
				"fields": []any{
					map[string]any{"name": "v", "schema": map[string]any{"type": "int"}},
					map[string]any{"name": "next", "schema": map[string]any{
						"type":   "nullable",
						"schema": map[string]any{"type": "definition-ref", "schema_ref": "node"},
					}, "default": nil},
				},
			},
		},
	}
}

func TestRecursion_CyclicValueGraph(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, nodeSchema())

	node := map[string]any{"v": int64(1)}
	node["next"] = node
	_, err := c.Validate(ctx, node)
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Code != skemacore.CodeRecursionLimit {
		t.Fatalf("expected a single recursion_limit issue, got: %v", iss)
	}
}

func TestDefault_OnError(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type":     "default",
		"schema":   map[string]any{"type": "int"},
		"default":  7,
		"on_error": "default",
	})
	out, err := c.Validate(ctx, "not a number")
	if err != nil || out != int64(7) {
		t.Fatalf("expected fallback default: out=%v err=%v", out, err)
	}
}

func TestNullable(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type":   "nullable",
		"schema": map[string]any{"type": "str"},
	})
	out, err := c.Validate(ctx, nil)
	if err != nil || out != nil {
		t.Fatalf("expected null pass-through: out=%v err=%v", out, err)
	}
	if _, err := c.Validate(ctx, int64(1)); err == nil {
		t.Fatalf("expected non-null to hit the inner node")
	}
}

func TestLiteralAndEnum(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{"type": "literal", "expected": []any{"a", 1}})
	if _, err := c.Validate(ctx, "a"); err != nil {
		t.Fatalf("literal a: %v", err)
	}
	if _, err := c.ValidateJSON(ctx, []byte(`1`)); err != nil {
		t.Fatalf("literal 1: %v", err)
	}
	_, err := c.Validate(ctx, "b")
	if !hasIssue(issuesOf(t, err), skemacore.CodeInvalidLiteral, "/") {
		t.Fatalf("expected invalid_literal, got: %v", err)
	}

	e := mustCompile(t, map[string]any{"type": "enum", "members": []any{"red", "green"}})
	_, err = e.Validate(ctx, "blue")
	if !hasIssue(issuesOf(t, err), skemacore.CodeInvalidEnum, "/") {
		t.Fatalf("expected invalid_enum, got: %v", err)
	}
}

func TestFunctionAfter_CustomError(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type":   "function-after",
		"schema": map[string]any{"type": "int"},
		"fn": skemacore.Func(func(_ context.Context, v any, _ skemacore.FuncContext) (any, error) {
			if v.(int64) < 0 {
				return nil, errors.New("must not be negative")
			}
			return v, nil
		}),
	})
	if _, err := c.Validate(ctx, int64(3)); err != nil {
		t.Fatalf("positive: %v", err)
	}
	_, err := c.Validate(ctx, int64(-3))
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Code != skemacore.CodeCustom {
		t.Fatalf("expected custom issue, got: %v", iss)
	}
}

func TestFunction_PanicNormalized(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type":   "function-after",
		"schema": map[string]any{"type": "int"},
		"fn": skemacore.Func(func(_ context.Context, v any, _ skemacore.FuncContext) (any, error) {
			panic("boom")
		}),
	})
	_, err := c.Validate(ctx, int64(1))
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Code != skemacore.CodeCustom {
		t.Fatalf("expected panic converted to a custom issue, got: %v", iss)
	}
}

func TestFunctionWrap_ShortCircuit(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type":   "function-wrap",
		"schema": map[string]any{"type": "int"},
		"fn": skemacore.WrapFunc(func(_ context.Context, v any, next func(any) (any, error), _ skemacore.FuncContext) (any, error) {
			if s, ok := v.(string); ok && s == "skip" {
				return int64(-1), nil
			}
			return next(v)
		}),
	})
	out, err := c.Validate(ctx, "skip")
	if err != nil || out != int64(-1) {
		t.Fatalf("expected short-circuit: out=%v err=%v", out, err)
	}
	out, err = c.Validate(ctx, int64(2))
	if err != nil || out != int64(2) {
		t.Fatalf("expected pass-through: out=%v err=%v", out, err)
	}
}

func TestDuplicateKeys_Reported(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, map[string]any{
		"type":   "dict",
		"values": map[string]any{"type": "int"},
	})
	data := []byte(`{"a": 1, "a": 2}`)

	if _, err := c.ValidateJSON(ctx, data); err != nil {
		t.Fatalf("duplicates tolerated by default: %v", err)
	}
	_, err := c.ValidateJSON(ctx, data, skemacore.ValidateOpt{ForbidDuplicateKeys: true})
	iss := issuesOf(t, err)
	if !hasIssue(iss, skemacore.CodeDuplicateKey, "/a") {
		t.Fatalf("expected duplicate_key at /a, got: %v", iss)
	}
}

func TestCompileYAML_EquivalentToMapForm(t *testing.T) {
	ctx := context.Background()
	yml := []byte(`
type: model
fields:
  - name: name
    schema: {type: str}
  - name: age
    schema: {type: int}
    default: 0
extra: forbid
`)
	cy, err := schema.CompileYAML(yml)
	if err != nil {
		t.Fatalf("compile yaml: %v", err)
	}
	cm := mustCompile(t, userSchema())

	doc := []byte(`{"name":"alice","age":30}`)
	oy, err := cy.ValidateJSON(ctx, doc)
	if err != nil {
		t.Fatalf("yaml-compiled validate: %v", err)
	}
	om, err := cm.ValidateJSON(ctx, doc)
	if err != nil {
		t.Fatalf("map-compiled validate: %v", err)
	}
	if !reflect.DeepEqual(oy, om) {
		t.Fatalf("expected identical outputs: %#v vs %#v", oy, om)
	}
}

func TestConcurrentValidation(t *testing.T) {
	ctx := context.Background()
	c := mustCompile(t, userSchema())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				doc := []byte(fmt.Sprintf(`{"name":"u%d","age":%d}`, g, i))
				out, err := c.ValidateJSON(ctx, doc)
				if err != nil {
					t.Errorf("goroutine %d: %v", g, err)
					return
				}
				if out.(map[string]any)["age"] != int64(i) {
					t.Errorf("goroutine %d: wrong age: %#v", g, out)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}
