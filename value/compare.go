package value

import (
	"bytes"
	"math"
	"strings"
)

// Equal compares two values for equality.
//
// Numeric kinds (Int, Uint, Float) compare across kinds; every other pairing
// of mismatched kinds is unequal.
func Equal(a, b Value) bool {
	if isNumber(a) && isNumber(b) {
		return numericEqual(a, b)
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindInvalid:
		// Two zero values are equal, keeping Equal reflexive.
		return true
	case KindBool:
		return a.B == b.B
	case KindChar:
		return a.I64 == b.I64
	case KindText:
		return a.S == b.S
	case KindTime:
		return a.T.Equal(b.T)
	case KindOptional:
		if a.Opt == nil || b.Opt == nil {
			return a.Opt == nil && b.Opt == nil
		}
		return Equal(*a.Opt, *b.Opt)
	case KindList:
		if len(a.L) != len(b.L) {
			return false
		}
		for i := range a.L {
			if !Equal(a.L[i], b.L[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.M) != len(b.M) {
			return false
		}
		for k, av := range a.M {
			bv, ok := b.M[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindBytes:
		return bytes.Equal(a.Raw, b.Raw)
	default:
		return false
	}
}

// Compare returns the ordering of a relative to b (-1, 0, or 1) and whether
// the pair is ordered at all.
//
// NaN operands, empty optionals, and List/Map values have no order; ok=false
// means ordering predicates never match.
func Compare(a, b Value) (int, bool) {
	if isNumber(a) && isNumber(b) {
		return numericCompare(a, b)
	}

	if a.Kind == KindOptional || b.Kind == KindOptional {
		// Only present optionals order, through their inner values.
		av, bv := a, b
		if av.Kind == KindOptional {
			if av.Opt == nil {
				return 0, false
			}
			av = *av.Opt
		}
		if bv.Kind == KindOptional {
			if bv.Opt == nil {
				return 0, false
			}
			bv = *bv.Opt
		}
		return Compare(av, bv)
	}

	if a.Kind != b.Kind {
		return 0, false
	}

	switch a.Kind {
	case KindBool:
		return boolCompare(a.B, b.B), true
	case KindChar:
		return int64Compare(a.I64, b.I64), true
	case KindText:
		return strings.Compare(a.S, b.S), true
	case KindTime:
		return a.T.Compare(b.T), true
	case KindBytes:
		return bytes.Compare(a.Raw, b.Raw), true
	default:
		return 0, false
	}
}

func isNumber(v Value) bool {
	return v.Kind == KindInt || v.Kind == KindUint || v.Kind == KindFloat
}

// EqualKeys returns every bucket key a stored value equal to v can carry.
//
// Numeric values compare across kinds, so a single equality operand may hit
// several index buckets: Int(3) also matches stored Uint(3) and Float(3.0).
// Inverted indexes use this to keep bucket pruning aligned with Equal.
//
// Only scalar aliases are expanded. Equal recurses into optional, list and
// map values with the same cross-kind rules, but their bucket keys are not
// enumerated here; callers must evaluate composite operands by scan.
func EqualKeys(v Value) []string {
	if !isNumber(v) {
		return []string{v.Key()}
	}

	keys := []string{v.Key()}
	switch v.Kind {
	case KindInt:
		if v.I64 >= 0 {
			keys = append(keys, Uint(uint64(v.I64)).Key())
		}
		if f := float64(v.I64); floatEqualsValue(f, v) {
			keys = append(keys, Float(f).Key())
		}
	case KindUint:
		if v.U64 <= math.MaxInt64 {
			keys = append(keys, Int(int64(v.U64)).Key())
		}
		if f := float64(v.U64); floatEqualsValue(f, v) {
			keys = append(keys, Float(f).Key())
		}
	case KindFloat:
		if floatEqualsValue(v.F64, Int(int64(v.F64))) {
			keys = append(keys, Int(int64(v.F64)).Key())
		}
		if v.F64 >= 0 && floatEqualsValue(v.F64, Uint(uint64(v.F64))) {
			keys = append(keys, Uint(uint64(v.F64)).Key())
		}
	}
	return keys
}

func numericEqual(a, b Value) bool {
	// All comparisons are exact: integer-vs-float equality requires the
	// float to be integral and representable, never a lossy conversion.
	// Index buckets rely on this to stay aligned with scan evaluation.
	switch {
	case a.Kind == KindInt && b.Kind == KindInt:
		return a.I64 == b.I64
	case a.Kind == KindUint && b.Kind == KindUint:
		return a.U64 == b.U64
	case a.Kind == KindFloat && b.Kind == KindFloat:
		return a.F64 == b.F64
	case a.Kind == KindInt && b.Kind == KindUint:
		return a.I64 >= 0 && uint64(a.I64) == b.U64
	case a.Kind == KindUint && b.Kind == KindInt:
		return b.I64 >= 0 && uint64(b.I64) == a.U64
	case a.Kind == KindFloat:
		return floatEqualsValue(a.F64, b)
	default:
		return floatEqualsValue(b.F64, a)
	}
}

// floatEqualsValue reports whether f exactly equals the integer value v.
func floatEqualsValue(f float64, v Value) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	switch v.Kind {
	case KindInt:
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return false
		}
		i := int64(f)
		return float64(i) == f && i == v.I64
	case KindUint:
		if f < 0 || f >= math.MaxUint64 {
			return false
		}
		u := uint64(f)
		return float64(u) == f && u == v.U64
	default:
		return false
	}
}

func numericCompare(a, b Value) (int, bool) {
	switch {
	case a.Kind == KindInt && b.Kind == KindInt:
		return int64Compare(a.I64, b.I64), true
	case a.Kind == KindUint && b.Kind == KindUint:
		return uint64Compare(a.U64, b.U64), true
	case a.Kind == KindInt && b.Kind == KindUint:
		if a.I64 < 0 {
			return -1, true
		}
		return uint64Compare(uint64(a.I64), b.U64), true
	case a.Kind == KindUint && b.Kind == KindInt:
		if b.I64 < 0 {
			return 1, true
		}
		return uint64Compare(a.U64, uint64(b.I64)), true
	}

	af, bf := asFloat64(a), asFloat64(b)
	if math.IsNaN(af) || math.IsNaN(bf) {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}

func asFloat64(v Value) float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.I64)
	case KindUint:
		return float64(v.U64)
	case KindFloat:
		return v.F64
	default:
		return 0
	}
}

func int64Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func uint64Compare(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	default:
		return 1
	}
}
