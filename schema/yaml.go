package schema

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	skemacore "github.com/skemacore/skemacore"
)

// CompileYAML compiles a YAML-authored schema description. Only the first
// document of a multi-document stream is used; YAML map shapes are normalized
// to the map[string]any form Compile expects.
func CompileYAML(data []byte) (skemacore.Compiled, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var node any
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, skemacore.Issues{{
				Code:    skemacore.CodeSchemaError,
				Message: "empty schema document",
			}}
		}
		return nil, skemacore.Issues{{
			Code:    skemacore.CodeParseError,
			Message: err.Error(),
			Cause:   err,
		}}
	}
	return Compile(yamlNormalize(node))
}

// yamlNormalize rewrites YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively.
func yamlNormalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = yamlNormalize(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalize(t[i])
		}
		return arr
	default:
		return v
	}
}
