package ent

import (
	"sort"

	"github.com/hupe1980/entdb/core"
)

// Cardinality tags the shape of an edge value.
type Cardinality uint8

const (
	// CardinalityNone means the edge currently references nothing.
	CardinalityNone Cardinality = iota
	// CardinalityOne means the edge references exactly one ent.
	CardinalityOne
	// CardinalityMany means the edge references a set of ents.
	CardinalityMany
)

// String returns the string representation of the Cardinality.
func (c Cardinality) String() string {
	switch c {
	case CardinalityNone:
		return "None"
	case CardinalityOne:
		return "One"
	case CardinalityMany:
		return "Many"
	default:
		return "Unknown"
	}
}

// EdgeValue is a cardinality-tagged association to other ents by id.
//
// Many values keep their ids as a sorted, duplicate-free set so that equal
// edge values have equal representations.
type EdgeValue struct {
	Kind Cardinality `json:"kind"`
	IDs  []core.ID   `json:"ids,omitempty"`
}

// NoTarget returns an edge value referencing nothing.
func NoTarget() EdgeValue { return EdgeValue{Kind: CardinalityNone} }

// One returns an edge value referencing exactly one ent.
func One(id core.ID) EdgeValue {
	return EdgeValue{Kind: CardinalityOne, IDs: []core.ID{id}}
}

// Many returns an edge value referencing a set of ents. Duplicates are
// dropped and ids are kept sorted.
func Many(ids ...core.ID) EdgeValue {
	return EdgeValue{Kind: CardinalityMany, IDs: normalizeIDs(ids)}
}

// Targets returns a copy of the referenced ids.
func (ev EdgeValue) Targets() []core.ID {
	out := make([]core.ID, len(ev.IDs))
	copy(out, ev.IDs)
	return out
}

// Count returns the number of referenced ids.
func (ev EdgeValue) Count() int { return len(ev.IDs) }

// Contains reports whether the edge value references id.
func (ev EdgeValue) Contains(id core.ID) bool {
	for _, t := range ev.IDs {
		if t == id {
			return true
		}
	}
	return false
}

// Without returns the edge value with id excised and whether anything
// changed: One collapses to None, Many shrinks by the id.
func (ev EdgeValue) Without(id core.ID) (EdgeValue, bool) {
	if !ev.Contains(id) {
		return ev, false
	}
	switch ev.Kind {
	case CardinalityOne:
		return NoTarget(), true
	case CardinalityMany:
		out := make([]core.ID, 0, len(ev.IDs)-1)
		for _, t := range ev.IDs {
			if t != id {
				out = append(out, t)
			}
		}
		return EdgeValue{Kind: CardinalityMany, IDs: out}, true
	default:
		return ev, false
	}
}

func normalizeIDs(ids []core.ID) []core.ID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]core.ID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	dedup := out[:1]
	for _, id := range out[1:] {
		if id != dedup[len(dedup)-1] {
			dedup = append(dedup, id)
		}
	}
	return dedup
}

// Edge is a named, cardinality-tagged association from one ent to others.
//
// Target is a declared type label for the referenced ents; the core does not
// enforce it at runtime.
type Edge struct {
	Name      string    `json:"name"`
	Value     EdgeValue `json:"value"`
	Target    string    `json:"target,omitempty"`
	Immutable bool      `json:"immutable,omitempty"`
}

// NewEdge creates a mutable edge.
func NewEdge(name string, v EdgeValue) Edge {
	return Edge{Name: name, Value: v}
}

// NewImmutableEdge creates an edge that rejects mutation after creation.
func NewImmutableEdge(name string, v EdgeValue) Edge {
	return Edge{Name: name, Value: v, Immutable: true}
}

// Clone creates a deep copy of the edge.
func (e Edge) Clone() Edge {
	e.Value.IDs = append([]core.ID(nil), e.Value.IDs...)
	return e
}
