// Package codec is the text-codec collaborator of the validation engine. It
// converts between raw bytes and the generic value tree (map[string]any,
// []any, json.Number, string, bool, nil) the engine operates on. The engine
// itself never tokenizes text.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
)

// Decode parses JSON bytes into a generic value tree. Numbers are preserved
// as json.Number so the engine can distinguish integral from fractional
// values without precision loss.
func Decode(data []byte) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// Reject trailing garbage after the first document.
	if err := ensureEOF(dec); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeReader parses a JSON document from r into a generic value tree.
func DecodeReader(r io.Reader) (any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Encode renders a generic value tree as JSON bytes.
func Encode(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

// EncodeIndent renders a generic value tree as indented JSON bytes.
func EncodeIndent(v any, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

func ensureEOF(dec *gojson.Decoder) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("codec: unexpected trailing token %v", tok)
}

// Number re-exports json.Number for callers constructing value trees by hand.
type Number = json.Number
