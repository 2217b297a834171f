package skemacore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeExtraForbidden       = "extra_forbidden"
	CodeDuplicateKey         = "duplicate_key"
	CodeTooSmall             = "too_small"
	CodeTooBig               = "too_big"
	CodeTooShort             = "too_short"
	CodeTooLong              = "too_long"
	CodeMultipleOf           = "multiple_of"
	CodePattern              = "pattern"
	CodeInvalidLiteral       = "invalid_literal"
	CodeInvalidEnum          = "invalid_enum"
	CodeInvalidFormat        = "invalid_format"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeUnionNoMatch         = "union_no_match"
	CodeParseError           = "parse_error"
	CodeOverflow             = "overflow"
	CodeFiniteNumber         = "finite_number"
	CodeRecursionLimit       = "recursion_limit"
	CodeCustom               = "custom"
	CodeInvalidShape         = "invalid_shape"
	// Schema errors (raised only at compile time)
	CodeSchemaUnknownType = "schema_unknown_type"
	CodeSchemaUnknownKey  = "schema_unknown_key"
	CodeSchemaUnknownRef  = "schema_unknown_ref"
	CodeSchemaConstraint  = "schema_constraint"
	CodeSchemaError       = "schema_error"
)

// Seg is one step of a location path: a field/key name or an element index.
// Smart-union member labels are recorded as key segments, matching the
// rendered error locations callers see.
type Seg struct {
	key   string
	index int
	isIdx bool
}

// Key constructs a field-name path segment.
func Key(k string) Seg { return Seg{key: k} }

// Index constructs an element-index path segment.
func Index(i int) Seg { return Seg{index: i, isIdx: true} }

// IsIndex reports whether the segment addresses a sequence element.
func (s Seg) IsIndex() bool { return s.isIdx }

// KeyName returns the field/key name ("" for index segments).
func (s Seg) KeyName() string { return s.key }

// Idx returns the element index (0 for key segments).
func (s Seg) Idx() int { return s.index }

func (s Seg) String() string {
	if s.isIdx {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path is an ordered sequence of segments from the input root to the value an
// issue refers to. The zero value addresses the root.
type Path []Seg

// Pointer renders the path as a JSON Pointer ("/" for the root).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		if s.isIdx {
			b.WriteString(strconv.Itoa(s.index))
			continue
		}
		k := s.key
		k = strings.ReplaceAll(k, "~", "~0")
		k = strings.ReplaceAll(k, "/", "~1")
		b.WriteString(k)
	}
	return b.String()
}

// Equal reports segment-wise equality.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Issue represents a single validation entry.
type Issue struct {
	Path    Path   // Location from the root (empty = root).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, allowed sets, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"ge": 1, "got": -3})
	// for i18n and observability.
	Params map[string]any
}

// At returns a copy of the issue rebased under the given outer segments.
func (it Issue) At(outer ...Seg) Issue {
	if len(outer) == 0 {
		return it
	}
	p := make(Path, 0, len(outer)+len(it.Path))
	p = append(p, outer...)
	p = append(p, it.Path...)
	it.Path = p
	return it
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// At returns a copy of the collection rebased under the given outer segments.
func (iss Issues) At(outer ...Seg) Issues {
	if len(outer) == 0 || len(iss) == 0 {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		out[i] = it.At(outer...)
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
