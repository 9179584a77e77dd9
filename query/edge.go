package query

import (
	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/value"
)

// EdgeOp identifies an edge predicate operator.
type EdgeOp string

const (
	// EdgeOpContains matches edges referencing a target id.
	EdgeOpContains EdgeOp = "contains"
	// EdgeOpKind matches edges of a cardinality.
	EdgeOpKind EdgeOp = "kind"
	// EdgeOpCount matches edges whose target count passes a predicate.
	EdgeOpCount EdgeOp = "count"
)

// EdgePredicate is a boolean test over an ent's own stored edge value:
// membership and cardinality only. Multi-hop relationships are the caller's
// business, composed from nested queries.
type EdgePredicate struct {
	Op     EdgeOp          `json:"op"`
	Target core.ID         `json:"target,omitempty"`
	Kind   ent.Cardinality `json:"kind,omitempty"`
	Count  *Predicate      `json:"count,omitempty"`
}

// EdgeContains matches edges referencing id.
func EdgeContains(id core.ID) EdgePredicate {
	return EdgePredicate{Op: EdgeOpContains, Target: id}
}

// EdgeKind matches edges of the given cardinality.
func EdgeKind(k ent.Cardinality) EdgePredicate {
	return EdgePredicate{Op: EdgeOpKind, Kind: k}
}

// EdgeCount matches edges whose target count, as an unsigned value, passes p.
func EdgeCount(p Predicate) EdgePredicate {
	return EdgePredicate{Op: EdgeOpCount, Count: &p}
}

// Matches evaluates the predicate against a stored edge value.
func (p EdgePredicate) Matches(ev ent.EdgeValue) bool {
	switch p.Op {
	case EdgeOpContains:
		return ev.Contains(p.Target)
	case EdgeOpKind:
		return ev.Kind == p.Kind
	case EdgeOpCount:
		return p.Count != nil && p.Count.Matches(value.Uint(uint64(ev.Count())))
	default:
		return false
	}
}
