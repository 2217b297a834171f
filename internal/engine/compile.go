package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	skemacore "github.com/skemacore/skemacore"
	"github.com/skemacore/skemacore/internal/input"
)

// Schema is a compiled description: the validator tree, the mirrored
// serializer tree and the definitions registry. It is immutable after Compile
// returns and safe for concurrent use.
type Schema struct {
	v   validator
	s   serializer
	reg *Registry
}

// Compile builds the validator and serializer trees from a declarative
// description. All schema errors are enumerated, not just the first.
func Compile(def any) (*Schema, skemacore.Issues) {
	c := &compiler{reg: newRegistry(), refNames: map[string]struct{}{}}
	v, s := c.compileNode(def)
	if len(c.iss) > 0 {
		return nil, c.iss
	}
	return &Schema{v: v, s: s, reg: c.reg}, nil
}

// Validate runs the validator tree over one input value.
func (sc *Schema) Validate(ctx context.Context, in any, opt skemacore.ValidateOpt) (any, skemacore.Issues) {
	if ctx == nil {
		ctx = context.Background()
	}
	vc := newVctx(opt)
	return sc.v.validate(ctx, input.Wrap(in), vc)
}

// Serialize runs the serializer tree over one validated value.
func (sc *Schema) Serialize(ctx context.Context, v any, opt skemacore.SerializeOpt) (any, skemacore.Issues) {
	if ctx == nil {
		ctx = context.Background()
	}
	return sc.s.serialize(ctx, v, newSctx(opt))
}

// compiler walks a description depth-first, collecting every schema issue
// with its location in the description.
type compiler struct {
	reg      *Registry
	refNames map[string]struct{}
	path     skemacore.Path
	iss      skemacore.Issues
}

func (c *compiler) fail(code string, params map[string]any) {
	p := make(skemacore.Path, len(c.path))
	copy(p, c.path)
	c.iss = skemacore.AppendIssues(c.iss, issueAt(p, code, params))
}

func (c *compiler) push(s skemacore.Seg) { c.path = append(c.path, s) }
func (c *compiler) pop()                 { c.path = c.path[:len(c.path)-1] }

// badNode is the placeholder returned for nodes that failed to compile; it
// keeps the walk going so later errors still surface. Compile never returns
// a tree containing one.
var badNode = anyValidator{}
var badSer serializer = anySerializer{}

func (c *compiler) compileNode(def any) (validator, serializer) {
	m, ok := def.(map[string]any)
	if !ok {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": "schema node must be a mapping"})
		return badNode, badSer
	}
	tag, ok := m["type"].(string)
	if !ok {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `schema node needs a string "type"`})
		return badNode, badSer
	}

	var v validator
	var s serializer
	switch tag {
	case "any":
		c.checkKeys(m)
		v, s = anyValidator{}, anySerializer{}
	case "none":
		c.checkKeys(m)
		v, s = noneValidator{}, noneSerializer{}
	case "bool":
		c.checkKeys(m)
		v, s = boolValidator{}, boolSerializer{}
	case "int":
		c.checkKeys(m, "ge", "gt", "le", "lt", "multiple_of")
		v, s = intValidator{bounds: c.numBounds(m)}, intSerializer{}
	case "float":
		c.checkKeys(m, "ge", "gt", "le", "lt", "multiple_of", "allow_inf_nan")
		v, s = floatValidator{bounds: c.numBounds(m), allowInfNan: c.boolKey(m, "allow_inf_nan", false)}, floatSerializer{}
	case "str":
		v, s = c.compileStr(m), strSerializer{}
	case "bytes":
		v, s = c.compileBytes(m)
	case "datetime":
		c.checkKeys(m)
		v, s = datetimeValidator{}, datetimeSerializer{}
	case "date":
		c.checkKeys(m)
		v, s = dateValidator{}, dateSerializer{}
	case "time":
		c.checkKeys(m)
		v, s = timeValidator{}, clockSerializer{}
	case "duration":
		c.checkKeys(m)
		v, s = durationValidator{}, durationSerializer{}
	case "literal":
		c.checkKeys(m, "expected")
		v, s = c.compileLiteral(m), literalSerializer{}
	case "enum":
		c.checkKeys(m, "members", "name")
		v, s = c.compileEnum(m), literalSerializer{}
	case "nullable":
		c.checkKeys(m, "schema")
		iv, is := c.compileChild(m, "schema")
		v, s = nullableValidator{inner: iv}, nullableSerializer{inner: is}
	case "default":
		v, s = c.compileDefault(m)
	case "list":
		c.checkKeys(m, "items", "min_length", "max_length")
		iv, is := c.compileChild(m, "items")
		v = listValidator{item: iv, bounds: c.lenBounds(m)}
		s = listSerializer{item: is}
	case "set":
		c.checkKeys(m, "items", "min_length", "max_length")
		iv, is := c.compileChild(m, "items")
		v = setValidator{item: iv, bounds: c.lenBounds(m)}
		s = listSerializer{item: is}
	case "tuple":
		v, s = c.compileTuple(m)
	case "dict":
		v, s = c.compileDict(m)
	case "model":
		v, s = c.compileModel(m)
	case "tagged-union":
		v, s = c.compileTaggedUnion(m)
	case "union":
		v, s = c.compileUnion(m)
	case "definitions":
		v, s = c.compileDefinitions(m)
	case "definition-ref":
		v, s = c.compileRef(m)
	case "function-before", "function-after", "function-wrap", "function-plain":
		v, s = c.compileFunction(tag, m)
	default:
		c.fail(skemacore.CodeSchemaUnknownType, map[string]any{"type": tag})
		return badNode, badSer
	}

	if fn, ok := m["serialization"]; ok {
		sf, good := fn.(skemacore.SerializeFunc)
		if !good {
			if raw, cast := fn.(func(context.Context, any, skemacore.FuncContext) (any, error)); cast {
				sf, good = skemacore.SerializeFunc(raw), true
			}
		}
		if !good {
			c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `"serialization" must be a skemacore.SerializeFunc`})
		} else {
			s = funcSerializer{fn: sf}
		}
	}
	return v, s
}

// checkKeys flags keys outside the allowed set for the node kind. "type" and
// "serialization" are always legal.
func (c *compiler) checkKeys(m map[string]any, allowed ...string) {
	ok := make(map[string]struct{}, len(allowed)+2)
	ok["type"] = struct{}{}
	ok["serialization"] = struct{}{}
	for _, k := range allowed {
		ok[k] = struct{}{}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, hit := ok[k]; !hit {
			c.fail(skemacore.CodeSchemaUnknownKey, map[string]any{"key": k})
		}
	}
}

func (c *compiler) compileChild(m map[string]any, key string) (validator, serializer) {
	child, ok := m[key]
	if !ok {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": fmt.Sprintf("%q is required", key)})
		return badNode, badSer
	}
	c.push(skemacore.Key(key))
	defer c.pop()
	return c.compileNode(child)
}

// ---- per-kind compilation ----

func (c *compiler) compileStr(m map[string]any) validator {
	c.checkKeys(m, "min_length", "max_length", "pattern",
		"strip_whitespace", "to_lower", "to_upper", "coerce_numbers_to_str")
	n := strValidator{
		minLen:          c.intKey(m, "min_length", -1),
		maxLen:          c.intKey(m, "max_length", -1),
		stripWhitespace: c.boolKey(m, "strip_whitespace", false),
		toLower:         c.boolKey(m, "to_lower", false),
		toUpper:         c.boolKey(m, "to_upper", false),
		coerceNumbers:   c.boolKey(m, "coerce_numbers_to_str", false),
	}
	if p, ok := m["pattern"]; ok {
		src, good := p.(string)
		if !good {
			c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": "pattern", "reason": "must be a string"})
		} else if re, err := regexp.Compile(src); err != nil {
			c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": "pattern", "reason": err.Error()})
		} else {
			n.pattern, n.patternSource = re, src
		}
	}
	return n
}

func (c *compiler) compileBytes(m map[string]any) (validator, serializer) {
	c.checkKeys(m, "min_length", "max_length", "format")
	format := input.BytesUTF8
	if f, ok := m["format"]; ok {
		switch f {
		case "utf8":
		case "base64":
			format = input.BytesBase64
		default:
			c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": "format", "reason": `must be "utf8" or "base64"`})
		}
	}
	v := bytesValidator{
		minLen: c.intKey(m, "min_length", -1),
		maxLen: c.intKey(m, "max_length", -1),
		format: format,
	}
	return v, bytesSerializer{format: format}
}

func (c *compiler) compileLiteral(m map[string]any) validator {
	members := c.memberList(m, "expected")
	if len(members) == 0 {
		c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": "expected", "reason": "must be a non-empty list"})
		return badNode
	}
	return newLiteralValidator(members)
}

func (c *compiler) compileEnum(m map[string]any) validator {
	members := c.memberList(m, "members")
	if len(members) == 0 {
		c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": "members", "reason": "must be a non-empty list"})
		return badNode
	}
	return newEnumValidator(members)
}

// memberList normalizes literal/enum members to the canonical comparable
// shapes used at validation time.
func (c *compiler) memberList(m map[string]any, key string) []any {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]any, 0, len(raw))
	for i, e := range raw {
		canon, good := canonLiteral(input.Wrap(e))
		if !good {
			c.push(skemacore.Key(key))
			c.push(skemacore.Index(i))
			c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": key, "reason": "members must be null, bool, int, float or string"})
			c.pop()
			c.pop()
			continue
		}
		out = append(out, canon)
	}
	return out
}

func (c *compiler) compileDefault(m map[string]any) (validator, serializer) {
	c.checkKeys(m, "schema", "default", "on_error")
	iv, is := c.compileChild(m, "schema")
	oe := onErrorRaise
	if raw, ok := m["on_error"]; ok {
		switch raw {
		case "raise":
		case "default":
			oe = onErrorDefault
		default:
			c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": "on_error", "reason": `must be "raise" or "default"`})
		}
	}
	return defaultValidator{inner: iv, def: normalizeValue(m["default"]), onError: oe}, is
}

func (c *compiler) compileTuple(m map[string]any) (validator, serializer) {
	c.checkKeys(m, "items")
	raw, ok := m["items"].([]any)
	if !ok {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `"items" must be a list of schemas`})
		return badNode, badSer
	}
	vs := make([]validator, len(raw))
	ss := make([]serializer, len(raw))
	c.push(skemacore.Key("items"))
	for i, e := range raw {
		c.push(skemacore.Index(i))
		vs[i], ss[i] = c.compileNode(e)
		c.pop()
	}
	c.pop()
	return tupleValidator{items: vs}, tupleSerializer{items: ss}
}

func (c *compiler) compileDict(m map[string]any) (validator, serializer) {
	c.checkKeys(m, "keys", "values", "min_length", "max_length")
	var kv validator
	if _, ok := m["keys"]; ok {
		kv, _ = c.compileChild(m, "keys")
	}
	var vv validator
	var vsr serializer = anySerializer{}
	if _, ok := m["values"]; ok {
		vv, vsr = c.compileChild(m, "values")
	} else {
		vv = anyValidator{}
	}
	return dictValidator{key: kv, value: vv, bounds: c.lenBounds(m)}, dictSerializer{value: vsr}
}

func (c *compiler) compileModel(m map[string]any) (validator, serializer) {
	c.checkKeys(m, "fields", "extra", "extras_target", "populate_by_name")
	extra := skemacore.ExtraIgnore
	if raw, ok := m["extra"]; ok {
		switch raw {
		case "ignore":
		case "forbid":
			extra = skemacore.ExtraForbid
		case "allow":
			extra = skemacore.ExtraAllow
		default:
			c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": "extra", "reason": `must be "ignore", "forbid" or "allow"`})
		}
	}
	extrasTarget, _ := m["extras_target"].(string)
	populateByName := c.boolKey(m, "populate_by_name", false)

	raw, ok := m["fields"].([]any)
	if !ok {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `"fields" must be a list of field entries`})
		return badNode, badSer
	}
	fields := make([]*field, 0, len(raw))
	known := make(map[string]struct{}, len(raw)*2)
	c.push(skemacore.Key("fields"))
	for i, e := range raw {
		c.push(skemacore.Index(i))
		if f := c.compileField(e); f != nil {
			if _, dup := known[f.name]; dup {
				c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": "name", "reason": fmt.Sprintf("duplicate field %q", f.name)})
			}
			fields = append(fields, f)
			known[f.name] = struct{}{}
			if f.alias != "" {
				known[f.alias] = struct{}{}
			}
		}
		c.pop()
	}
	c.pop()

	v := modelValidator{
		fields:         fields,
		known:          known,
		extra:          extra,
		extrasTarget:   extrasTarget,
		populateByName: populateByName,
	}
	return v, modelSerializer{fields: fields, extrasTarget: extrasTarget}
}

func (c *compiler) compileField(def any) *field {
	m, ok := def.(map[string]any)
	if !ok {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": "field entry must be a mapping"})
		return nil
	}
	c.checkKeys(m, "name", "schema", "required", "default", "alias",
		"serialization_alias", "serialization_exclude")
	name, ok := m["name"].(string)
	if !ok || name == "" {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `field entry needs a string "name"`})
		return nil
	}
	fv, fs := c.compileChild(m, "schema")
	f := &field{
		name:       name,
		validator:  fv,
		serializer: fs,
		serExclude: c.boolKey(m, "serialization_exclude", false),
	}
	f.alias, _ = m["alias"].(string)
	f.serAlias, _ = m["serialization_alias"].(string)

	if dv, ok := m["default"]; ok {
		def := normalizeValue(dv)
		f.validator = defaultValidator{inner: fv, def: def}
		f.hasDefault, f.defValue = true, def
	} else if dn, ok := fv.(defaultValidator); ok {
		f.hasDefault, f.defValue = true, dn.def
	}
	f.required = !f.hasDefault
	if req, ok := m["required"].(bool); ok {
		f.required = req
	}
	return f
}

func (c *compiler) compileTaggedUnion(m map[string]any) (validator, serializer) {
	c.checkKeys(m, "discriminator", "choices")
	disc, ok := m["discriminator"].(string)
	if !ok || disc == "" {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `"discriminator" must be a non-empty string`})
	}
	choices, ok := m["choices"].(map[string]any)
	if !ok || len(choices) == 0 {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `"choices" must be a non-empty mapping of tag to schema`})
		return badNode, badSer
	}
	variants := make(map[any]validator, len(choices))
	svariants := make(map[any]serializer, len(choices))
	tags := make([]string, 0, len(choices))
	for t := range choices {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	c.push(skemacore.Key("choices"))
	for _, t := range tags {
		c.push(skemacore.Key(t))
		cv, cs := c.compileNode(choices[t])
		c.pop()
		for _, key := range tagKeys(t) {
			variants[key] = cv
			svariants[key] = cs
		}
	}
	c.pop()
	v := taggedUnionValidator{discriminator: disc, variants: variants}
	return v, taggedUnionSerializer{discriminator: disc, variants: svariants}
}

// tagKeys expands a string-authored discriminator tag into every canonical
// form an input tag can take, so "1" and 1 route the same.
func tagKeys(t string) []any {
	keys := []any{t}
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		keys = append(keys, i)
	}
	if t == "true" {
		keys = append(keys, true)
	}
	if t == "false" {
		keys = append(keys, false)
	}
	return keys
}

func (c *compiler) compileUnion(m map[string]any) (validator, serializer) {
	c.checkKeys(m, "choices")
	raw, ok := m["choices"].([]any)
	if !ok || len(raw) == 0 {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `"choices" must be a non-empty list of schemas`})
		return badNode, badSer
	}
	members := make([]unionMember, len(raw))
	smembers := make([]serializer, len(raw))
	c.push(skemacore.Key("choices"))
	for i, e := range raw {
		c.push(skemacore.Index(i))
		cv, cs := c.compileNode(e)
		c.pop()
		members[i] = unionMember{label: memberLabel(e, i), validator: cv}
		smembers[i] = cs
	}
	c.pop()
	return smartUnionValidator{members: members}, unionSerializer{members: smembers}
}

// memberLabel names a union member for error fan-out, preferring its type tag.
func memberLabel(def any, i int) string {
	if m, ok := def.(map[string]any); ok {
		if t, ok := m["type"].(string); ok {
			return t
		}
	}
	return strconv.Itoa(i)
}

func (c *compiler) compileDefinitions(m map[string]any) (validator, serializer) {
	c.checkKeys(m, "schema", "definitions")
	raw, ok := m["definitions"].([]any)
	if !ok {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `"definitions" must be a list of schemas carrying "ref"`})
		return badNode, badSer
	}
	// names first, so definitions can reference each other in any order
	names := make([]string, len(raw))
	for i, e := range raw {
		dm, ok := e.(map[string]any)
		if !ok {
			continue
		}
		name, ok := dm["ref"].(string)
		if !ok || name == "" {
			c.push(skemacore.Key("definitions"))
			c.push(skemacore.Index(i))
			c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `definition needs a string "ref"`})
			c.pop()
			c.pop()
			continue
		}
		if _, dup := c.refNames[name]; dup {
			c.push(skemacore.Key("definitions"))
			c.push(skemacore.Index(i))
			c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": "ref", "reason": fmt.Sprintf("duplicate definition %q", name)})
			c.pop()
			c.pop()
			continue
		}
		c.refNames[name] = struct{}{}
		names[i] = name
	}
	c.push(skemacore.Key("definitions"))
	for i, e := range raw {
		if names[i] == "" {
			continue
		}
		dm := e.(map[string]any)
		body := make(map[string]any, len(dm))
		for k, v := range dm {
			if k != "ref" {
				body[k] = v
			}
		}
		c.push(skemacore.Index(i))
		dv, ds := c.compileNode(body)
		c.pop()
		c.reg.vdefs[names[i]] = dv
		c.reg.sdefs[names[i]] = ds
	}
	c.pop()
	return c.compileChild(m, "schema")
}

func (c *compiler) compileRef(m map[string]any) (validator, serializer) {
	c.checkKeys(m, "schema_ref")
	name, ok := m["schema_ref"].(string)
	if !ok || name == "" {
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `"schema_ref" must be a non-empty string`})
		return badNode, badSer
	}
	if _, known := c.refNames[name]; !known {
		c.fail(skemacore.CodeSchemaUnknownRef, map[string]any{"name": name})
		return badNode, badSer
	}
	return definitionRefValidator{name: name, reg: c.reg}, refSerializer{name: name, reg: c.reg}
}

func (c *compiler) compileFunction(tag string, m map[string]any) (validator, serializer) {
	if tag == "function-plain" {
		c.checkKeys(m, "fn")
		fn := c.fnKey(m)
		return funcPlainValidator{fn: fn}, anySerializer{}
	}
	c.checkKeys(m, "schema", "fn")
	iv, is := c.compileChild(m, "schema")
	switch tag {
	case "function-before":
		return funcBeforeValidator{inner: iv, fn: c.fnKey(m)}, is
	case "function-after":
		return funcAfterValidator{inner: iv, fn: c.fnKey(m)}, is
	default:
		fn, ok := m["fn"].(skemacore.WrapFunc)
		if !ok {
			if raw, cast := m["fn"].(func(context.Context, any, func(any) (any, error), skemacore.FuncContext) (any, error)); cast {
				fn, ok = skemacore.WrapFunc(raw), true
			}
		}
		if !ok {
			c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `"fn" must be a skemacore.WrapFunc`})
			return badNode, badSer
		}
		return funcWrapValidator{inner: iv, fn: fn}, is
	}
}

func (c *compiler) fnKey(m map[string]any) skemacore.Func {
	fn, ok := m["fn"].(skemacore.Func)
	if !ok {
		if raw, cast := m["fn"].(func(context.Context, any, skemacore.FuncContext) (any, error)); cast {
			return skemacore.Func(raw)
		}
		c.fail(skemacore.CodeSchemaError, map[string]any{"reason": `"fn" must be a skemacore.Func`})
		return func(context.Context, any, skemacore.FuncContext) (any, error) { return nil, nil }
	}
	return fn
}

// ---- option accessors ----

func (c *compiler) numBounds(m map[string]any) numBounds {
	return numBounds{
		ge:         c.floatKey(m, "ge"),
		gt:         c.floatKey(m, "gt"),
		le:         c.floatKey(m, "le"),
		lt:         c.floatKey(m, "lt"),
		multipleOf: c.floatKey(m, "multiple_of"),
	}
}

func (c *compiler) lenBounds(m map[string]any) lenBounds {
	return lenBounds{
		min: c.intKey(m, "min_length", -1),
		max: c.intKey(m, "max_length", -1),
	}
}

func (c *compiler) floatKey(m map[string]any, key string) *float64 {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	if f, ok := asFloat(raw); ok {
		return &f
	}
	c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": key, "reason": "must be a number"})
	return nil
}

func (c *compiler) intKey(m map[string]any, key string, def int) int {
	raw, ok := m[key]
	if !ok {
		return def
	}
	if f, ok := asFloat(raw); ok && f == float64(int(f)) {
		return int(f)
	}
	c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": key, "reason": "must be an integer"})
	return def
}

func (c *compiler) boolKey(m map[string]any, key string, def bool) bool {
	raw, ok := m[key]
	if !ok {
		return def
	}
	if b, ok := raw.(bool); ok {
		return b
	}
	c.fail(skemacore.CodeSchemaConstraint, map[string]any{"key": key, "reason": "must be a bool"})
	return def
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// normalizeValue canonicalizes description-authored values to the shapes the
// validator produces, so exclude-defaults comparison works.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	}
	return v
}
