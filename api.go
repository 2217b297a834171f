package skemacore

import "context"

// Compiled is an immutable validator/serializer pair produced by the schema
// compiler. A Compiled value is safe for concurrent use; every call owns its
// own context and error accumulation.
type Compiled interface {
	// Validate applies the validator tree to an arbitrary untyped input and
	// returns the validated (possibly coerced) value, or Issues as error.
	Validate(ctx context.Context, v any, opts ...ValidateOpt) (any, error)
	// ValidateJSON decodes JSON bytes through the codec and validates the
	// resulting value tree.
	ValidateJSON(ctx context.Context, data []byte, opts ...ValidateOpt) (any, error)
	// Serialize converts an assumed-valid value to the output representation.
	Serialize(ctx context.Context, v any, opts ...SerializeOpt) (any, error)
	// SerializeJSON serializes and encodes the result to JSON bytes.
	SerializeJSON(ctx context.Context, v any, opts ...SerializeOpt) ([]byte, error)
}

// SafeValidate validates v, returning (zero, false) on validation error.
func SafeValidate(ctx context.Context, c Compiled, v any, opts ...ValidateOpt) (any, bool) {
	out, err := c.Validate(ctx, v, opts...)
	if err != nil {
		return nil, false
	}
	return out, true
}

// Is returns true if v conforms to the compiled schema.
func Is(ctx context.Context, c Compiled, v any, opts ...ValidateOpt) bool {
	_, err := c.Validate(ctx, v, opts...)
	return err == nil
}
