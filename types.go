package skemacore

import "context"

// Mode selects how far the engine may coerce input values.
type Mode int

const (
	Lax    Mode = iota // Apply the fixed per-kind coercion ladder.
	Strict             // Accept only exact-kind values.
)

// ExtraPolicy controls how unknown model fields are handled.
type ExtraPolicy int

const (
	ExtraIgnore ExtraPolicy = iota // Drop unknown fields.
	ExtraForbid                    // Reject unknown fields with an error.
	ExtraAllow                     // Collect unknown fields into a catch-all map.
)

// DefaultMaxDepth bounds recursive-reference nesting when the per-call
// MaxDepth option is left at zero.
const DefaultMaxDepth = 255

// ValidateOpt bundles per-call validation options.
type ValidateOpt struct {
	Mode     Mode
	FailFast bool
	MaxDepth int // Recursion limit for definition references; 0 means DefaultMaxDepth.
	Context  any // Opaque value passed through to custom validator functions.

	// ForbidDuplicateKeys makes ValidateJSON report repeated object keys in
	// the raw document instead of silently keeping the last value.
	ForbidDuplicateKeys bool
}

// SerializeMode selects the serializer output representation.
type SerializeMode int

const (
	SerializeValue SerializeMode = iota // Generic value tree (map/slice/scalars).
	SerializeJSON                       // JSON bytes via the codec.
)

// SerializeOpt bundles per-call serialization options.
type SerializeOpt struct {
	Mode            SerializeMode
	MaxDepth        int      // Recursion limit for definition references; 0 means DefaultMaxDepth.
	ExcludeDefaults bool     // Omit fields equal to their compiled default.
	ExcludeNone     bool     // Omit fields whose value is nil.
	Include         []string // Dotted field paths; when non-empty, only these are emitted.
	Exclude         []string // Dotted field paths removed from the output.
	RoundTrip       bool     // Preserve everything needed to re-validate the output; suppresses ExcludeDefaults.
	Context         any      // Opaque value passed through to custom serialize functions.
}

// FuncContext is handed to custom validator and serializer functions.
type FuncContext struct {
	Mode    Mode
	Context any // ValidateOpt.Context / SerializeOpt.Context, unchanged.
}

// Func is a caller-supplied transformation used by function-before,
// function-after and function-plain schema nodes.
type Func func(ctx context.Context, v any, fc FuncContext) (any, error)

// WrapFunc is used by function-wrap nodes. The callback decides whether and
// when the inner node runs via next, and may substitute the value entirely.
type WrapFunc func(ctx context.Context, v any, next func(any) (any, error), fc FuncContext) (any, error)

// SerializeFunc overrides serialization for a node.
type SerializeFunc func(ctx context.Context, v any, fc FuncContext) (any, error)
