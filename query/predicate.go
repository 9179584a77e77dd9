package query

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hupe1980/entdb/value"
)

// Op identifies a predicate operator.
type Op string

const (
	// OpEq matches values equal to the operand.
	OpEq Op = "eq"
	// OpNe matches comparable values not equal to the operand.
	OpNe Op = "ne"
	// OpGt matches values ordered strictly after the operand.
	OpGt Op = "gt"
	// OpGte matches values ordered at or after the operand.
	OpGte Op = "gte"
	// OpLt matches values ordered strictly before the operand.
	OpLt Op = "lt"
	// OpLte matches values ordered at or before the operand.
	OpLte Op = "lte"
	// OpIn matches values equal to any element of the operand list.
	OpIn Op = "in"
	// OpContains matches text values containing the operand text.
	OpContains Op = "contains"
	// OpHasPrefix matches text values starting with the operand text.
	OpHasPrefix Op = "has_prefix"
	// OpHasSuffix matches text values ending with the operand text.
	OpHasSuffix Op = "has_suffix"
	// OpMatches matches text values against a glob pattern.
	OpMatches Op = "matches"
	// OpAnd matches when every child predicate matches.
	OpAnd Op = "and"
	// OpOr matches when any child predicate matches.
	OpOr Op = "or"
	// OpNot matches when the child predicate does not.
	OpNot Op = "not"
)

// Predicate is a pure boolean test over a single value.
//
// Predicates are a closed tagged tree so they stay serializable: comparison
// nodes carry an operand Value, combinator nodes carry children. Evaluation
// is defined for every value-kind pairing; heterogeneous comparisons are
// non-matches, never errors.
type Predicate struct {
	Op    Op          `json:"op"`
	Value value.Value `json:"value,omitempty"`
	Preds []Predicate `json:"preds,omitempty"`
}

// Eq matches values equal to v.
func Eq(v value.Value) Predicate { return Predicate{Op: OpEq, Value: v} }

// Ne matches values of a comparable kind that are not equal to v. A value of
// an incomparable kind is a non-match, like every other comparison.
func Ne(v value.Value) Predicate { return Predicate{Op: OpNe, Value: v} }

// Gt matches values ordered strictly after v.
func Gt(v value.Value) Predicate { return Predicate{Op: OpGt, Value: v} }

// Gte matches values ordered at or after v.
func Gte(v value.Value) Predicate { return Predicate{Op: OpGte, Value: v} }

// Lt matches values ordered strictly before v.
func Lt(v value.Value) Predicate { return Predicate{Op: OpLt, Value: v} }

// Lte matches values ordered at or before v.
func Lte(v value.Value) Predicate { return Predicate{Op: OpLte, Value: v} }

// In matches values equal to any of vs.
func In(vs ...value.Value) Predicate {
	return Predicate{Op: OpIn, Value: value.List(vs...)}
}

// Contains matches text values containing s.
func Contains(s string) Predicate {
	return Predicate{Op: OpContains, Value: value.Text(s)}
}

// HasPrefix matches text values starting with s.
func HasPrefix(s string) Predicate {
	return Predicate{Op: OpHasPrefix, Value: value.Text(s)}
}

// HasSuffix matches text values ending with s.
func HasSuffix(s string) Predicate {
	return Predicate{Op: OpHasSuffix, Value: value.Text(s)}
}

// Matches matches text values against a glob pattern ('*', '?', '[class]',
// '{alt,alt}'). A malformed pattern never matches.
func Matches(pattern string) Predicate {
	return Predicate{Op: OpMatches, Value: value.Text(pattern)}
}

// And matches when every child matches. Evaluation short-circuits; with no
// children it always matches.
func And(preds ...Predicate) Predicate { return Predicate{Op: OpAnd, Preds: preds} }

// Or matches when any child matches. Evaluation short-circuits; with no
// children it never matches.
func Or(preds ...Predicate) Predicate { return Predicate{Op: OpOr, Preds: preds} }

// Not matches when p does not.
func Not(p Predicate) Predicate { return Predicate{Op: OpNot, Preds: []Predicate{p}} }

// Matches evaluates the predicate against v. It is a pure function of
// (v, predicate) with no side effects.
func (p Predicate) Matches(v value.Value) bool {
	switch p.Op {
	case OpEq:
		return value.Equal(v, p.Value)
	case OpNe:
		return comparableKinds(v, p.Value) && !value.Equal(v, p.Value)
	case OpGt:
		c, ok := value.Compare(v, p.Value)
		return ok && c > 0
	case OpGte:
		c, ok := value.Compare(v, p.Value)
		return ok && c >= 0
	case OpLt:
		c, ok := value.Compare(v, p.Value)
		return ok && c < 0
	case OpLte:
		c, ok := value.Compare(v, p.Value)
		return ok && c <= 0
	case OpIn:
		items, ok := p.Value.AsList()
		if !ok {
			return false
		}
		for _, item := range items {
			if value.Equal(v, item) {
				return true
			}
		}
		return false
	case OpContains:
		return textMatch(v, p.Value, containsText)
	case OpHasPrefix:
		return textMatch(v, p.Value, hasPrefixText)
	case OpHasSuffix:
		return textMatch(v, p.Value, hasSuffixText)
	case OpMatches:
		return textMatch(v, p.Value, globText)
	case OpAnd:
		for _, child := range p.Preds {
			if !child.Matches(v) {
				return false
			}
		}
		return true
	case OpOr:
		for _, child := range p.Preds {
			if child.Matches(v) {
				return true
			}
		}
		return false
	case OpNot:
		return len(p.Preds) == 1 && !p.Preds[0].Matches(v)
	default:
		return false
	}
}

func textMatch(v, operand value.Value, fn func(s, arg string) bool) bool {
	s, ok := v.AsText()
	if !ok {
		return false
	}
	arg, ok := operand.AsText()
	if !ok {
		return false
	}
	return fn(s, arg)
}

func containsText(s, arg string) bool { return strings.Contains(s, arg) }

func hasPrefixText(s, arg string) bool { return strings.HasPrefix(s, arg) }

func hasSuffixText(s, arg string) bool { return strings.HasSuffix(s, arg) }

func globText(s, pattern string) bool {
	ok, err := doublestar.Match(pattern, s)
	return err == nil && ok
}

// comparableKinds reports whether two values live in the same comparison
// family, i.e. whether equality between them is meaningful.
func comparableKinds(a, b value.Value) bool {
	numeric := func(k value.Kind) bool {
		return k == value.KindInt || k == value.KindUint || k == value.KindFloat
	}
	if numeric(a.Kind) && numeric(b.Kind) {
		return true
	}
	return a.Kind == b.Kind
}
