package skemacore_test

import (
	"context"
	"testing"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/schema"
)

func TestIsAndSafeValidate(t *testing.T) {
	ctx := context.Background()
	c := schema.MustCompile(map[string]any{"type": "int", "ge": 0})

	if !skemacore.Is(ctx, c, int64(3)) {
		t.Fatalf("expected 3 to conform")
	}
	if skemacore.Is(ctx, c, int64(-1)) {
		t.Fatalf("expected -1 to fail")
	}

	out, ok := skemacore.SafeValidate(ctx, c, "42")
	if !ok || out != int64(42) {
		t.Fatalf("expected lax success: out=%v ok=%v", out, ok)
	}
	if _, ok := skemacore.SafeValidate(ctx, c, "nope"); ok {
		t.Fatalf("expected failure to report ok=false")
	}
}

func TestValidateOpt_LastWins(t *testing.T) {
	ctx := context.Background()
	c := schema.MustCompile(map[string]any{"type": "int"})

	_, err := c.Validate(ctx, "5",
		skemacore.ValidateOpt{Mode: skemacore.Lax},
		skemacore.ValidateOpt{Mode: skemacore.Strict})
	if err == nil {
		t.Fatalf("expected the last option to pick strict mode")
	}
}
