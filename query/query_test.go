package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/value"
)

func buildEnt(t *testing.T, id core.ID, etype string, fields map[string]value.Value, edges map[string]ent.EdgeValue) *ent.Ent {
	t.Helper()
	b := ent.NewBuilder(etype)
	for name, v := range fields {
		b.Field(name, v)
	}
	for name, ev := range edges {
		b.Edge(name, ev)
	}
	e, err := b.Build()
	require.NoError(t, err)
	e.SetID(id)
	return e
}

func TestConditionAbsentFieldIsNonMatch(t *testing.T) {
	e := buildEnt(t, 1, "note", map[string]value.Value{"title": value.Text("x")}, nil)

	assert.False(t, Where("missing", Eq(value.Text("x"))).Matches(e))
	// Even negations need the field present.
	assert.False(t, Where("missing", Not(Eq(value.Text("x")))).Matches(e))
	assert.False(t, WhereEdge("missing", EdgeContains(1)).Matches(e))
}

func TestEdgePredicates(t *testing.T) {
	e := buildEnt(t, 1, "note", nil, map[string]ent.EdgeValue{
		"author": ent.One(7),
		"tags":   ent.Many(2, 3, 4),
		"parent": ent.NoTarget(),
	})

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{name: "contains hit", cond: WhereEdge("tags", EdgeContains(3)), want: true},
		{name: "contains miss", cond: WhereEdge("tags", EdgeContains(9)), want: false},
		{name: "contains on one", cond: WhereEdge("author", EdgeContains(7)), want: true},
		{name: "contains on none", cond: WhereEdge("parent", EdgeContains(7)), want: false},
		{name: "kind one", cond: WhereEdge("author", EdgeKind(ent.CardinalityOne)), want: true},
		{name: "kind mismatched", cond: WhereEdge("tags", EdgeKind(ent.CardinalityOne)), want: false},
		{name: "kind none", cond: WhereEdge("parent", EdgeKind(ent.CardinalityNone)), want: true},
		{name: "count gte", cond: WhereEdge("tags", EdgeCount(Gte(value.Int(3)))), want: true},
		{name: "count eq zero", cond: WhereEdge("parent", EdgeCount(Eq(value.Int(0)))), want: true},
		{name: "count too high", cond: WhereEdge("tags", EdgeCount(Gt(value.Int(3)))), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Matches(e))
		})
	}
}

func TestQueryMatches(t *testing.T) {
	e := buildEnt(t, 1, "note",
		map[string]value.Value{"title": value.Text("hello"), "views": value.Int(12)},
		map[string]ent.EdgeValue{"tags": ent.Many(2, 3)},
	)

	t.Run("empty query matches everything", func(t *testing.T) {
		assert.True(t, New().Matches(e))
	})

	t.Run("conjunction", func(t *testing.T) {
		q := New().
			HasType("note").
			Where("title", HasPrefix("he")).
			Where("views", Gt(value.Int(10))).
			WhereEdge("tags", EdgeContains(2))
		assert.True(t, q.Matches(e))

		q.Where("views", Lt(value.Int(5)))
		assert.False(t, q.Matches(e))
	})

	t.Run("type filter", func(t *testing.T) {
		assert.False(t, New().HasType("task").Matches(e))
	})

	t.Run("disjunction groups", func(t *testing.T) {
		q := New().AnyOf(
			Where("views", Gt(value.Int(100))),
			Where("title", Eq(value.Text("hello"))),
		)
		assert.True(t, q.Matches(e))

		q = New().AnyOf(
			Where("views", Gt(value.Int(100))),
			Where("title", Eq(value.Text("bye"))),
		)
		assert.False(t, q.Matches(e))
	})

	t.Run("every group must hold", func(t *testing.T) {
		q := New().
			AnyOf(Where("title", Eq(value.Text("hello")))).
			AnyOf(Where("views", Gt(value.Int(100))))
		assert.False(t, q.Matches(e))
	})
}

func TestQuerySort(t *testing.T) {
	mk := func(id core.ID, views *int64) *ent.Ent {
		fields := map[string]value.Value{}
		if views != nil {
			fields["views"] = value.Int(*views)
		}
		return buildEnt(t, id, "note", fields, nil)
	}
	n := func(v int64) *int64 { return &v }

	ids := func(ents []*ent.Ent) []core.ID {
		out := make([]core.ID, len(ents))
		for i, e := range ents {
			out[i] = e.ID()
		}
		return out
	}

	t.Run("no key sorts by id", func(t *testing.T) {
		ents := []*ent.Ent{mk(3, n(1)), mk(1, n(2)), mk(2, n(3))}
		New().Sort(ents)
		assert.Equal(t, []core.ID{1, 2, 3}, ids(ents))
	})

	t.Run("ascending with id tiebreak", func(t *testing.T) {
		ents := []*ent.Ent{mk(4, n(5)), mk(2, n(5)), mk(3, n(1)), mk(1, n(9))}
		New().OrderBy("views").Sort(ents)
		assert.Equal(t, []core.ID{3, 2, 4, 1}, ids(ents))
	})

	t.Run("descending", func(t *testing.T) {
		ents := []*ent.Ent{mk(1, n(1)), mk(2, n(3)), mk(3, n(2))}
		New().OrderBy("views").Descending().Sort(ents)
		assert.Equal(t, []core.ID{2, 3, 1}, ids(ents))
	})

	t.Run("keyless ents sort last by id", func(t *testing.T) {
		ents := []*ent.Ent{mk(4, nil), mk(2, n(7)), mk(3, nil), mk(1, n(8))}
		New().OrderBy("views").Sort(ents)
		assert.Equal(t, []core.ID{2, 1, 3, 4}, ids(ents))
	})
}

func TestQueryPage(t *testing.T) {
	ents := make([]*ent.Ent, 5)
	for i := range ents {
		ents[i] = buildEnt(t, core.ID(i+1), "note", nil, nil)
	}

	assert.Len(t, New().Page(ents), 5)
	assert.Len(t, New().WithLimit(2).Page(ents), 2)

	paged := New().WithOffset(3).Page(ents)
	require.Len(t, paged, 2)
	assert.Equal(t, core.ID(4), paged[0].ID())

	paged = New().WithOffset(1).WithLimit(2).Page(ents)
	require.Len(t, paged, 2)
	assert.Equal(t, core.ID(2), paged[0].ID())
	assert.Equal(t, core.ID(3), paged[1].ID())

	assert.Empty(t, New().WithOffset(10).Page(ents))
}
