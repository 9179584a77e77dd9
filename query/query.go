package query

import (
	"sort"

	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/value"
)

// Condition pairs a field or edge name with a predicate. Exactly one of
// Field/Edge is set.
type Condition struct {
	Field    string        `json:"field,omitempty"`
	Edge     string        `json:"edge,omitempty"`
	Pred     Predicate     `json:"pred,omitempty"`
	EdgePred EdgePredicate `json:"edge_pred,omitempty"`
}

// Where creates a field condition.
func Where(field string, p Predicate) Condition {
	return Condition{Field: field, Pred: p}
}

// WhereEdge creates an edge condition.
func WhereEdge(edge string, p EdgePredicate) Condition {
	return Condition{Edge: edge, EdgePred: p}
}

// Matches evaluates the condition against e. An absent field or edge is a
// non-match.
func (c Condition) Matches(e *ent.Ent) bool {
	if c.Edge != "" {
		ev, ok := e.Edge(c.Edge)
		return ok && c.EdgePred.Matches(ev)
	}
	v, ok := e.Field(c.Field)
	return ok && c.Pred.Matches(v)
}

// Query is an ordered list of conditions combined by conjunction, optional
// nested disjunction groups, an optional type-name filter, and optional
// ordering/paging.
type Query struct {
	Type   string        `json:"type,omitempty"`
	Conds  []Condition   `json:"conds,omitempty"`
	Any    [][]Condition `json:"any,omitempty"`
	Order  string        `json:"order,omitempty"`
	Desc   bool          `json:"desc,omitempty"`
	Offset int           `json:"offset,omitempty"`
	Limit  int           `json:"limit,omitempty"`
}

// New creates an empty query, which matches every live ent.
func New() *Query { return &Query{} }

// HasType restricts matches to ents of the given type name.
func (q *Query) HasType(etype string) *Query {
	q.Type = etype
	return q
}

// Where appends a field condition to the conjunction.
func (q *Query) Where(field string, p Predicate) *Query {
	q.Conds = append(q.Conds, Where(field, p))
	return q
}

// WhereEdge appends an edge condition to the conjunction.
func (q *Query) WhereEdge(edge string, p EdgePredicate) *Query {
	q.Conds = append(q.Conds, WhereEdge(edge, p))
	return q
}

// AnyOf appends a disjunction group: at least one of conds must match.
func (q *Query) AnyOf(conds ...Condition) *Query {
	q.Any = append(q.Any, conds)
	return q
}

// OrderBy sets the ordering key. Ties and ents missing the key are ordered
// by id so results stay stable.
func (q *Query) OrderBy(field string) *Query {
	q.Order = field
	return q
}

// Descending reverses the ordering key direction.
func (q *Query) Descending() *Query {
	q.Desc = true
	return q
}

// WithOffset skips the first n matches.
func (q *Query) WithOffset(n int) *Query {
	q.Offset = n
	return q
}

// WithLimit caps the number of returned matches; zero means no cap.
func (q *Query) WithLimit(n int) *Query {
	q.Limit = n
	return q
}

// Matches reports whether e satisfies every top-level condition, every
// disjunction group, and the type filter. Ordering and paging are the
// backend's job.
func (q *Query) Matches(e *ent.Ent) bool {
	if q.Type != "" && e.Type() != q.Type {
		return false
	}
	for _, c := range q.Conds {
		if !c.Matches(e) {
			return false
		}
	}
	for _, group := range q.Any {
		matched := false
		for _, c := range group {
			if c.Matches(e) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Page applies the query's offset and limit to an already-ordered result.
func (q *Query) Page(ents []*ent.Ent) []*ent.Ent {
	if q.Offset > 0 {
		if q.Offset >= len(ents) {
			return nil
		}
		ents = ents[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(ents) {
		ents = ents[:q.Limit]
	}
	return ents
}

// Sort orders ents by the query's ordering key, breaking ties (and placing
// ents without an ordered key value) by id. Without an ordering key it sorts
// by id alone, keeping results deterministic.
func (q *Query) Sort(ents []*ent.Ent) {
	// Deterministic base order regardless of backend iteration order.
	sort.Slice(ents, func(i, j int) bool { return ents[i].ID() < ents[j].ID() })
	if q.Order == "" {
		return
	}

	sort.SliceStable(ents, func(i, j int) bool {
		av, aok := ents[i].Field(q.Order)
		bv, bok := ents[j].Field(q.Order)
		if !aok || !bok {
			// Keyless ents sort after keyed ones.
			return aok && !bok
		}
		c, ok := value.Compare(av, bv)
		if !ok || c == 0 {
			return false
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})
}
