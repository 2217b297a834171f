package codec_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/skemacore/skemacore/codec"
)

func TestDecode_NumbersStayExact(t *testing.T) {
	v, err := codec.Decode([]byte(`{"big": 9007199254740993, "frac": 0.1}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := v.(map[string]any)
	big, ok := m["big"].(json.Number)
	if !ok || big.String() != "9007199254740993" {
		t.Fatalf("expected json.Number to preserve the literal, got: %#v", m["big"])
	}
}

func TestDecode_TrailingGarbage(t *testing.T) {
	if _, err := codec.Decode([]byte(`{"a":1} trailing`)); err == nil {
		t.Fatalf("expected trailing content to fail")
	}
	if _, err := codec.Decode([]byte(`{"a":1}{"b":2}`)); err == nil {
		t.Fatalf("expected a second document to fail")
	}
}

func TestDecodeReader(t *testing.T) {
	v, err := codec.DecodeReader(strings.NewReader(`[1, 2, 3]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if arr, ok := v.([]any); !ok || len(arr) != 3 {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestDetectDuplicateKeys(t *testing.T) {
	data := []byte(`{"a":1,"b":{"c":2,"c":3},"arr":[{"d":1,"d":2}],"a":9}`)
	dups, err := codec.DetectDuplicateKeys(data, -1)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(dups) != 3 {
		t.Fatalf("expected three duplicates, got: %#v", dups)
	}
	want := map[string]string{"c": "/b", "d": "/arr/0", "a": "/"}
	for _, d := range dups {
		if want[d.Key] != d.Path {
			t.Fatalf("unexpected duplicate location %q at %q", d.Key, d.Path)
		}
	}
}

func TestDetectDuplicateKeys_Limits(t *testing.T) {
	data := []byte(`{"a":1,"a":2,"a":3}`)
	dups, err := codec.DetectDuplicateKeys(data, 1)
	if err != nil || len(dups) != 1 {
		t.Fatalf("expected the scan capped at one, got: %#v err=%v", dups, err)
	}
	dups, err = codec.DetectDuplicateKeys(data, 0)
	if err != nil || dups != nil {
		t.Fatalf("expected detection disabled, got: %#v err=%v", dups, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := map[string]any{"s": "v", "n": int64(3)}
	b, err := codec.Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := codec.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := out.(map[string]any)
	if m["s"] != "v" {
		t.Fatalf("unexpected value: %#v", m)
	}
}
