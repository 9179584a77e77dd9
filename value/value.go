package value

import (
	"encoding/hex"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindInt represents a signed integer value.
	KindInt
	// KindUint represents an unsigned integer value.
	KindUint
	// KindFloat represents a float value.
	KindFloat
	// KindBool represents a boolean value.
	KindBool
	// KindChar represents a single character value.
	KindChar
	// KindText represents a text value.
	KindText
	// KindTime represents a timestamp value.
	KindTime
	// KindOptional represents an optional-of-Value.
	KindOptional
	// KindList represents an ordered list of Values.
	KindList
	// KindMap represents an unordered text-to-Value map.
	KindMap
	// KindBytes represents a byte sequence value.
	KindBytes
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindUint:
		return "Uint"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindChar:
		return "Char"
	case KindText:
		return "Text"
	case KindTime:
		return "Time"
	case KindOptional:
		return "Optional"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindBytes:
		return "Bytes"
	default:
		return "Invalid"
	}
}

// Value is the closed tagged union used for every ent field.
//
// The representation is designed to make predicate evaluation fast and
// predictable: no reflection and no fmt-based stringification.
//
// NOTE: This is also used for persistence; keep it stable.
type Value struct {
	Kind Kind
	I64  int64
	U64  uint64
	F64  float64
	B    bool
	S    string
	T    time.Time
	Opt  *Value
	L    []Value
	M    map[string]Value
	Raw  []byte
}

// Int returns a signed integer Value. All signed widths funnel through int64.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Uint returns an unsigned integer Value. All unsigned widths funnel through uint64.
func Uint(v uint64) Value { return Value{Kind: KindUint, U64: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Char returns a single-character Value.
func Char(v rune) Value { return Value{Kind: KindChar, I64: int64(v)} }

// Text returns a text Value.
func Text(v string) Value { return Value{Kind: KindText, S: v} }

// Time returns a timestamp Value.
func Time(v time.Time) Value { return Value{Kind: KindTime, T: v} }

// Some returns an optional Value holding v.
func Some(v Value) Value { return Value{Kind: KindOptional, Opt: &v} }

// None returns an empty optional Value.
func None() Value { return Value{Kind: KindOptional} }

// List returns an ordered list Value.
func List(vs ...Value) Value { return Value{Kind: KindList, L: vs} }

// Map returns a text-keyed map Value.
func Map(m map[string]Value) Value { return Value{Kind: KindMap, M: m} }

// Bytes returns a byte sequence Value.
func Bytes(b []byte) Value { return Value{Kind: KindBytes, Raw: b} }

// AsInt64 returns the int64 value if Kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsUint64 returns the uint64 value if Kind is KindUint.
func (v Value) AsUint64() (uint64, bool) {
	if v.Kind != KindUint {
		return 0, false
	}
	return v.U64, true
}

// AsFloat64 returns the float64 value if Kind is KindFloat.
func (v Value) AsFloat64() (float64, bool) {
	if v.Kind != KindFloat {
		return 0, false
	}
	return v.F64, true
}

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

// AsChar returns the rune value if Kind is KindChar.
func (v Value) AsChar() (rune, bool) {
	if v.Kind != KindChar {
		return 0, false
	}
	return rune(v.I64), true
}

// AsText returns the text value if Kind is KindText.
func (v Value) AsText() (string, bool) {
	if v.Kind != KindText {
		return "", false
	}
	return v.S, true
}

// AsTime returns the timestamp value if Kind is KindTime.
func (v Value) AsTime() (time.Time, bool) {
	if v.Kind != KindTime {
		return time.Time{}, false
	}
	return v.T, true
}

// AsOptional returns the inner value if Kind is KindOptional. The second
// return reports whether the kind matched; an empty optional yields (nil, true).
func (v Value) AsOptional() (*Value, bool) {
	if v.Kind != KindOptional {
		return nil, false
	}
	return v.Opt, true
}

// AsList returns the list value if Kind is KindList.
func (v Value) AsList() ([]Value, bool) {
	if v.Kind != KindList {
		return nil, false
	}
	return v.L, true
}

// AsMap returns the map value if Kind is KindMap.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.Kind != KindMap {
		return nil, false
	}
	return v.M, true
}

// AsBytes returns the byte sequence if Kind is KindBytes.
func (v Value) AsBytes() ([]byte, bool) {
	if v.Kind != KindBytes {
		return nil, false
	}
	return v.Raw, true
}

// Key returns a stable string representation for use in index buckets.
//
// It is intended for internal indexing (inverted indexes) and must remain
// stable across versions for persisted usage.
func (v Value) Key() string {
	switch v.Kind {
	case KindInt:
		return "i:" + strconv.FormatInt(v.I64, 10)
	case KindUint:
		return "u:" + strconv.FormatUint(v.U64, 10)
	case KindFloat:
		return "f:" + strconv.FormatUint(math.Float64bits(v.F64), 16)
	case KindBool:
		if v.B {
			return "b:1"
		}
		return "b:0"
	case KindChar:
		return "c:" + strconv.FormatInt(v.I64, 10)
	case KindText:
		return "s:" + v.S
	case KindTime:
		return "t:" + strconv.FormatInt(v.T.UnixNano(), 10)
	case KindOptional:
		if v.Opt == nil {
			return "o:"
		}
		return "o:" + v.Opt.Key()
	case KindList:
		if len(v.L) == 0 {
			return "l:"
		}
		parts := make([]string, len(v.L))
		for i := range v.L {
			parts[i] = v.L[i].Key()
		}
		return "l:" + strings.Join(parts, "\x1f")
	case KindMap:
		if len(v.M) == 0 {
			return "m:"
		}
		keys := make([]string, 0, len(v.M))
		for k := range v.M {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "\x1e" + v.M[k].Key()
		}
		return "m:" + strings.Join(parts, "\x1f")
	case KindBytes:
		return "y:" + hex.EncodeToString(v.Raw)
	default:
		return "invalid"
	}
}

// Clone creates a deep copy of the Value, including nested composites.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindOptional:
		if v.Opt == nil {
			return v
		}
		inner := v.Opt.Clone()
		return Value{Kind: KindOptional, Opt: &inner}
	case KindList:
		if len(v.L) == 0 {
			return v
		}
		l := make([]Value, len(v.L))
		for i := range v.L {
			l[i] = v.L[i].Clone()
		}
		return Value{Kind: KindList, L: l}
	case KindMap:
		if len(v.M) == 0 {
			return v
		}
		m := make(map[string]Value, len(v.M))
		for k, mv := range v.M {
			m[k] = mv.Clone()
		}
		return Value{Kind: KindMap, M: m}
	case KindBytes:
		if len(v.Raw) == 0 {
			return v
		}
		raw := make([]byte, len(v.Raw))
		copy(raw, v.Raw)
		return Value{Kind: KindBytes, Raw: raw}
	default:
		// Scalar values are copied by value semantics.
		return v
	}
}
