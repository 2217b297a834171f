package skemacore

// Package skemacore provides:
//
// - Compile-once/execute-many validation: a declarative schema description is
//   compiled into an immutable validator tree that is applied to arbitrary
//   untyped input (Validate/ValidateJSON)
// - A stable error model via Issues (structured location paths, code, message)
// - Strict and lax validation modes with a fixed, documented coercion ladder
//   per primitive kind
// - A mirrored serializer tree (Serialize/SerializeJSON) honoring field
//   filtering, aliases, default omission and round-trip fidelity
//
// Design policy:
// - Keep only public APIs in the root package; put the compiler, the node set
//   and the input abstraction under internal/.
// - Place the compile entry points under schema/, the text codec under codec/,
//   and the CLI under cmd/skemacore.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	c, err := schema.Compile(def)
//	v, err := c.Validate(ctx, input)
//	v, err := c.ValidateJSON(ctx, data, skemacore.ValidateOpt{Mode: skemacore.Strict})
//
//	out, err := c.Serialize(ctx, v, skemacore.SerializeOpt{ExcludeDefaults: true})
