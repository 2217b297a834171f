package input_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/skemacore/skemacore/internal/input"
)

func TestAsBool_Ladder(t *testing.T) {
	if b, m, ok := input.AsBool(input.Wrap(true), true); !ok || !b || m != input.MatchExact {
		t.Fatalf("exact bool: b=%v m=%v ok=%v", b, m, ok)
	}
	for _, s := range []string{"true", "YES", "on", "1"} {
		if b, m, ok := input.AsBool(input.Wrap(s), false); !ok || !b || m != input.MatchLax {
			t.Fatalf("lax %q: b=%v m=%v ok=%v", s, b, m, ok)
		}
	}
	if b, _, ok := input.AsBool(input.Wrap("off"), false); !ok || b {
		t.Fatalf("lax off: b=%v ok=%v", b, ok)
	}
	if _, _, ok := input.AsBool(input.Wrap("2"), false); ok {
		t.Fatalf("string outside the closed set must fail")
	}
	for _, s := range []string{" true", "true ", "\ttrue"} {
		if _, _, ok := input.AsBool(input.Wrap(s), false); ok {
			t.Fatalf("padded %q must fail, the set is closed", s)
		}
	}
	if _, _, ok := input.AsBool(input.Wrap("true"), true); ok {
		t.Fatalf("strict mode must reject string input")
	}
	if b, _, ok := input.AsBool(input.Wrap(int64(1)), false); !ok || !b {
		t.Fatalf("lax 1: b=%v ok=%v", b, ok)
	}
	if _, _, ok := input.AsBool(input.Wrap(int64(2)), false); ok {
		t.Fatalf("int 2 must fail")
	}
}

func TestAsInt_Ladder(t *testing.T) {
	if i, m, ok := input.AsInt(input.Wrap(json.Number("42")), true); !ok || i != 42 || m != input.MatchExact {
		t.Fatalf("integral number: i=%v m=%v ok=%v", i, m, ok)
	}
	if i, m, ok := input.AsInt(input.Wrap("7"), false); !ok || i != 7 || m != input.MatchLax {
		t.Fatalf("lax string: i=%v m=%v ok=%v", i, m, ok)
	}
	if i, _, ok := input.AsInt(input.Wrap("2.0"), false); !ok || i != 2 {
		t.Fatalf("integral-float string: i=%v ok=%v", i, ok)
	}
	if _, _, ok := input.AsInt(input.Wrap("1_000"), false); ok {
		t.Fatalf("underscored string must fail")
	}
	if _, _, ok := input.AsInt(input.Wrap(2.5), false); ok {
		t.Fatalf("fractional float must fail")
	}
	if i, _, ok := input.AsInt(input.Wrap(2.0), false); !ok || i != 2 {
		t.Fatalf("integral float: i=%v ok=%v", i, ok)
	}
	if i, _, ok := input.AsInt(input.Wrap(true), false); !ok || i != 1 {
		t.Fatalf("lax bool: i=%v ok=%v", i, ok)
	}
	if _, _, ok := input.AsInt(input.Wrap("7"), true); ok {
		t.Fatalf("strict mode must reject string input")
	}
}

func TestAsFloat_IntGradesStrict(t *testing.T) {
	if f, m, ok := input.AsFloat(input.Wrap(1.5), true); !ok || f != 1.5 || m != input.MatchExact {
		t.Fatalf("exact float: f=%v m=%v ok=%v", f, m, ok)
	}
	// ints are accepted even in strict mode but graded below exact
	if f, m, ok := input.AsFloat(input.Wrap(int64(2)), true); !ok || f != 2 || m != input.MatchStrict {
		t.Fatalf("int into float: f=%v m=%v ok=%v", f, m, ok)
	}
	if f, m, ok := input.AsFloat(input.Wrap(json.Number("3")), true); !ok || f != 3 || m != input.MatchStrict {
		t.Fatalf("integral number into float: f=%v m=%v ok=%v", f, m, ok)
	}
	if f, m, ok := input.AsFloat(input.Wrap("2.5"), false); !ok || f != 2.5 || m != input.MatchLax {
		t.Fatalf("lax string: f=%v m=%v ok=%v", f, m, ok)
	}
}

func TestAsString_NumbersOnlyWhenOptedIn(t *testing.T) {
	if _, _, ok := input.AsString(input.Wrap(int64(3)), false, false); ok {
		t.Fatalf("numbers must not stringify without the opt-in")
	}
	if s, m, ok := input.AsString(input.Wrap(int64(3)), false, true); !ok || s != "3" || m != input.MatchLax {
		t.Fatalf("opted-in: s=%q m=%v ok=%v", s, m, ok)
	}
	if _, _, ok := input.AsString(input.Wrap(int64(3)), true, true); ok {
		t.Fatalf("strict mode must reject even opted-in numbers")
	}
}

func TestAsBytes_Formats(t *testing.T) {
	if b, m, ok := input.AsBytes(input.Wrap("hi"), input.BytesUTF8); !ok || string(b) != "hi" || m != input.MatchStrict {
		t.Fatalf("utf8: b=%q m=%v ok=%v", b, m, ok)
	}
	if b, _, ok := input.AsBytes(input.Wrap("aGVsbG8="), input.BytesBase64); !ok || string(b) != "hello" {
		t.Fatalf("base64 std: b=%q ok=%v", b, ok)
	}
	// URL-safe alphabet as the fallback
	if b, _, ok := input.AsBytes(input.Wrap("-_-_"), input.BytesBase64); !ok || len(b) != 3 {
		t.Fatalf("base64 url: b=%q ok=%v", b, ok)
	}
	if b, m, ok := input.AsBytes(input.Wrap([]byte{1, 2}), input.BytesBase64); !ok || len(b) != 2 || m != input.MatchExact {
		t.Fatalf("native bytes: b=%v m=%v ok=%v", b, m, ok)
	}
}

func TestAsTime_EpochOnlyInLax(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if tm, m, ok := input.AsTime(input.Wrap("2024-01-02T03:04:05Z"), true); !ok || !tm.Equal(want) || m != input.MatchStrict {
		t.Fatalf("rfc3339: t=%v m=%v ok=%v", tm, m, ok)
	}
	epoch := want.Unix()
	if tm, m, ok := input.AsTime(input.Wrap(epoch), false); !ok || !tm.Equal(want) || m != input.MatchLax {
		t.Fatalf("epoch: t=%v m=%v ok=%v", tm, m, ok)
	}
	if _, _, ok := input.AsTime(input.Wrap(epoch), true); ok {
		t.Fatalf("strict mode must reject epoch input")
	}
	if tm, _, ok := input.AsTime(input.Wrap(want), true); !ok || !tm.Equal(want) {
		t.Fatalf("native time: t=%v ok=%v", tm, ok)
	}
}

func TestAsDate_MidnightRule(t *testing.T) {
	if tm, _, ok := input.AsDate(input.Wrap("2024-06-01"), true); !ok || tm.Day() != 1 {
		t.Fatalf("date string: t=%v ok=%v", tm, ok)
	}
	midnight := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, _, ok := input.AsDate(input.Wrap(midnight), true); !ok {
		t.Fatalf("midnight timestamp must qualify")
	}
	noon := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, _, ok := input.AsDate(input.Wrap(noon), false); ok {
		t.Fatalf("non-midnight timestamp must fail")
	}
}

func TestAsClock(t *testing.T) {
	want := 13*time.Hour + 30*time.Minute
	if d, _, ok := input.AsClock(input.Wrap("13:30:00"), true); !ok || d != want {
		t.Fatalf("clock string: d=%v ok=%v", d, ok)
	}
	if d, m, ok := input.AsClock(input.Wrap(int64(90)), false); !ok || d != 90*time.Second || m != input.MatchLax {
		t.Fatalf("lax seconds: d=%v m=%v ok=%v", d, m, ok)
	}
	if _, _, ok := input.AsClock(input.Wrap(int64(86400)), false); ok {
		t.Fatalf("out-of-day seconds must fail")
	}
}

func TestAsDuration_Forms(t *testing.T) {
	want := 90 * time.Minute
	if d, m, ok := input.AsDuration(input.Wrap("1h30m"), true); !ok || d != want || m != input.MatchStrict {
		t.Fatalf("go form: d=%v m=%v ok=%v", d, m, ok)
	}
	if d, _, ok := input.AsDuration(input.Wrap("PT1H30M"), true); !ok || d != want {
		t.Fatalf("iso form: d=%v ok=%v", d, ok)
	}
	if d, _, ok := input.AsDuration(input.Wrap("P1DT1H"), true); !ok || d != 25*time.Hour {
		t.Fatalf("iso with days: d=%v ok=%v", d, ok)
	}
	if d, m, ok := input.AsDuration(input.Wrap(int64(5)), false); !ok || d != 5*time.Second || m != input.MatchLax {
		t.Fatalf("lax seconds: d=%v m=%v ok=%v", d, m, ok)
	}
	if _, _, ok := input.AsDuration(input.Wrap(int64(5)), true); ok {
		t.Fatalf("strict mode must reject seconds input")
	}
	if d, m, ok := input.AsDuration(input.Wrap(want), true); !ok || d != want || m != input.MatchExact {
		t.Fatalf("native duration: d=%v m=%v ok=%v", d, m, ok)
	}
}

type person struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Quiet bool   `json:"-"`
}

func TestWrap_NativeStruct(t *testing.T) {
	v := input.Wrap(person{Name: "alice", Age: 30, Quiet: true})
	if v.Kind() != input.KindMap {
		t.Fatalf("expected mapping kind, got %v", v.Kind())
	}
	f, ok := v.Field("name")
	if !ok {
		t.Fatalf("expected renamed field lookup")
	}
	if s, ok := f.Str(); !ok || s != "alice" {
		t.Fatalf("unexpected field value: %v", f.Raw())
	}
	entries, _ := v.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected json:\"-\" skipped, got: %v", entries)
	}
	// declaration order preserved
	if entries[0].Key != "name" || entries[1].Key != "age" {
		t.Fatalf("unexpected order: %v, %v", entries[0].Key, entries[1].Key)
	}
}

func TestWrap_NativePointerAndMap(t *testing.T) {
	n := 5
	v := input.Wrap(&n)
	if i, ok := v.Int(); !ok || i != 5 {
		t.Fatalf("pointer unwrap: i=%v ok=%v", i, ok)
	}
	var p *int
	if !input.Wrap(p).IsNull() {
		t.Fatalf("nil pointer must read as null")
	}

	m := input.Wrap(map[string]int{"b": 2, "a": 1})
	entries, ok := m.Entries()
	if !ok || len(entries) != 2 || entries[0].Key != "a" {
		t.Fatalf("expected sorted map entries, got: %v", entries)
	}
}
