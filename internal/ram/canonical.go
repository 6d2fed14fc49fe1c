package ram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// CanonicalMap converts a query into a plain map/slice/scalar form with one
// "node" discriminator per node. The conversion is total over the sealed
// node families and preserves value-list order exactly.
func CanonicalMap(q *Query) map[string]any {
	return map[string]any{
		"node": "query",
		"op":   canonicalOp(q.Op),
	}
}

func canonicalOp(op Operation) map[string]any {
	switch o := op.(type) {
	case *Scan:
		return map[string]any{
			"node":     "scan",
			"relation": o.Relation,
			"tuple":    int64(o.Tuple),
			"body":     canonicalOp(o.Body),
		}
	case *Filter:
		return map[string]any{
			"node": "filter",
			"cond": canonicalCond(o.Cond),
			"body": canonicalOp(o.Body),
		}
	case *Aggregate:
		m := map[string]any{
			"node":     "aggregate",
			"tuple":    int64(o.Tuple),
			"fn":       string(o.Fn),
			"relation": o.Relation,
			"body":     canonicalOp(o.Body),
		}
		if o.Expr != nil {
			m["expr"] = canonicalExpr(o.Expr)
		}
		if o.Cond != nil {
			m["cond"] = canonicalCond(o.Cond)
		}
		return m
	case *Project:
		return map[string]any{
			"node":     "project",
			"relation": o.Relation,
			"values":   canonicalExprs(o.Values),
		}
	case *SubroutineReturn:
		return map[string]any{
			"node":   "return",
			"values": canonicalExprs(o.Values),
		}
	default:
		panic(fmt.Sprintf("ram: unknown operation type %T", op))
	}
}

func canonicalCond(c Condition) map[string]any {
	switch x := c.(type) {
	case *Constraint:
		return map[string]any{
			"node": "constraint",
			"op":   string(x.Op),
			"lhs":  canonicalExpr(x.LHS),
			"rhs":  canonicalExpr(x.RHS),
		}
	case *Negation:
		return map[string]any{
			"node": "negation",
			"cond": canonicalCond(x.Cond),
		}
	case *Conjunction:
		return map[string]any{
			"node": "conjunction",
			"lhs":  canonicalCond(x.LHS),
			"rhs":  canonicalCond(x.RHS),
		}
	case *ExistenceCheck:
		return map[string]any{
			"node":     "exists",
			"relation": x.Relation,
			"values":   canonicalExprs(x.Values),
		}
	case *ProvenanceExistenceCheck:
		return map[string]any{
			"node":     "prov_exists",
			"relation": x.Relation,
			"values":   canonicalExprs(x.Values),
		}
	case *EmptinessCheck:
		return map[string]any{
			"node":     "empty",
			"relation": x.Relation,
		}
	default:
		panic(fmt.Sprintf("ram: unknown condition type %T", c))
	}
}

func canonicalExpr(e Expression) map[string]any {
	switch x := e.(type) {
	case *TupleElement:
		return map[string]any{
			"node":    "tuple_element",
			"tuple":   int64(x.Tuple),
			"element": int64(x.Element),
		}
	case *SignedConstant:
		return map[string]any{
			"node":  "constant",
			"value": x.Value,
		}
	case *UndefValue:
		return map[string]any{"node": "undef"}
	case *IntrinsicOp:
		return map[string]any{
			"node": "intrinsic",
			"op":   x.Op,
			"args": canonicalExprs(x.Args),
		}
	default:
		panic(fmt.Sprintf("ram: unknown expression type %T", e))
	}
}

func canonicalExprs(exprs []Expression) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = canonicalExpr(e)
	}
	return out
}

// MarshalCanonical produces RFC 8785 canonical JSON for hashing.
//
// Key differences from standard json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. No floats, no null
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalCanonicalString(val)
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type in canonical JSON: %T", v)
	}
}

func marshalCanonicalString(s string) ([]byte, error) {
	// NFC normalize before serialization
	normalized := norm.NFC.String(s)

	// json.Encoder without HTML escaping
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	// Encode appends a trailing newline
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	// Keys are sorted in their NFC form: that is the form the serializer
	// emits, so sorting the raw keys could produce out-of-order output for
	// keys that change under normalization.
	keys := make([]string, 0, len(obj))
	original := make(map[string]string, len(obj))
	for k := range obj {
		nk := norm.NFC.String(k)
		if prev, ok := original[nk]; ok {
			return nil, fmt.Errorf("keys %q and %q collide after NFC normalization", prev, k)
		}
		original[nk] = k
		keys = append(keys, nk)
	}
	slices.SortFunc(keys, compareKeysRFC8785)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')

		vb, err := MarshalCanonical(obj[original[k]])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering as
// required by RFC 8785. Go's default string comparison uses UTF-8 which
// produces a different order for some inputs.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}
