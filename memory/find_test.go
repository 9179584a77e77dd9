package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/query"
	"github.com/hupe1980/entdb/value"
)

func seedCatalog(t *testing.T, db *Database) {
	t.Helper()
	ctx := context.Background()

	rows := []struct {
		etype string
		name  string
		stock value.Value
	}{
		{"item", "anvil", value.Int(3)},
		{"item", "rope", value.Uint(3)},
		{"item", "tent", value.Float(3)},
		{"item", "lamp", value.Int(12)},
		{"order", "anvil", value.Int(3)},
	}
	for _, row := range rows {
		e, err := ent.NewBuilder(row.etype).
			Field("name", value.Text(row.name)).
			Field("stock", row.stock).
			Build()
		require.NoError(t, err)
		_, err = db.Insert(ctx, e)
		require.NoError(t, err)
	}
}

func resultIDs(ents []*ent.Ent) []core.ID {
	out := make([]core.ID, len(ents))
	for i, e := range ents {
		out[i] = e.ID()
	}
	return out
}

func TestFindAllEmptyQueryReturnsEverything(t *testing.T) {
	db := New()
	seedCatalog(t, db)

	results, err := db.FindAll(context.Background(), query.New())
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 2, 3, 4, 5}, resultIDs(results))
}

func TestFindAllNilQuery(t *testing.T) {
	db := New()
	seedCatalog(t, db)

	results, err := db.FindAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestFindAllTypeFilter(t *testing.T) {
	db := New()
	seedCatalog(t, db)

	results, err := db.FindAll(context.Background(), query.New().HasType("order"))
	require.NoError(t, err)
	assert.Equal(t, []core.ID{5}, resultIDs(results))

	results, err = db.FindAll(context.Background(), query.New().HasType("nothing"))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindAllEqCrossesNumericKinds(t *testing.T) {
	// Int(3), Uint(3) and Float(3) live in different index buckets but are
	// all equal; the index path must find every one of them.
	db := New()
	seedCatalog(t, db)

	q := query.New().HasType("item").Where("stock", query.Eq(value.Int(3)))
	results, err := db.FindAll(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 2, 3}, resultIDs(results))

	q = query.New().HasType("item").Where("stock", query.Eq(value.Float(3)))
	results, err = db.FindAll(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 2, 3}, resultIDs(results))
}

func TestFindAllInUsesIndex(t *testing.T) {
	db := New()
	seedCatalog(t, db)

	q := query.New().Where("name", query.In(value.Text("rope"), value.Text("lamp")))
	results, err := db.FindAll(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{2, 4}, resultIDs(results))
}

func TestFindAllIndexedAndScanAgree(t *testing.T) {
	// The same data and queries must yield identical results whether the
	// touched field is indexed or not.
	queries := []*query.Query{
		query.New().Where("stock", query.Eq(value.Int(3))),
		query.New().Where("stock", query.In(value.Int(3), value.Int(12))),
		query.New().Where("name", query.Eq(value.Text("anvil"))),
		query.New().Where("stock", query.Gt(value.Int(2))).Where("name", query.HasSuffix("p")),
		query.New().HasType("item").Where("stock", query.Eq(value.Float(3))),
	}

	indexed := New()
	seedCatalog(t, indexed)
	scanning := New(WithIndexedFields("name")) // "stock" falls back to scans
	seedCatalog(t, scanning)

	for i, q := range queries {
		a, err := indexed.FindAll(context.Background(), q)
		require.NoError(t, err)
		b, err := scanning.FindAll(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, resultIDs(a), resultIDs(b), "query %d diverged between index and scan", i)
	}

	require.NoError(t, indexed.CheckConsistency())
	require.NoError(t, scanning.CheckConsistency())
}

func TestFindAllCompositeOperandMatchesAcrossNumericKinds(t *testing.T) {
	// Equality recurses into composites with the cross-kind numeric rules,
	// but bucket keys only alias scalars, so composite operands must reach
	// the stored value by scan even on an indexed field.
	ctx := context.Background()
	db := New()

	e, err := ent.NewBuilder("item").
		Field("stock", value.Some(value.Uint(3))).
		Field("sizes", value.List(value.Int(1), value.Int(2))).
		Build()
	require.NoError(t, err)
	id, err := db.Insert(ctx, e)
	require.NoError(t, err)

	queries := []*query.Query{
		query.New().Where("stock", query.Eq(value.Some(value.Int(3)))),
		query.New().Where("stock", query.In(value.Some(value.Int(3)))),
		query.New().Where("sizes", query.Eq(value.List(value.Uint(1), value.Uint(2)))),
	}
	for i, q := range queries {
		results, err := db.FindAll(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{id}, resultIDs(results), "query %d missed the composite match", i)
	}
}

func TestFindAllOrderAndPage(t *testing.T) {
	db := New()
	seedCatalog(t, db)

	q := query.New().
		HasType("item").
		OrderBy("stock").
		Descending().
		WithLimit(2)
	results, err := db.FindAll(context.Background(), q)
	require.NoError(t, err)
	// lamp (12) first, then the three-way stock=3 tie broken by id.
	assert.Equal(t, []core.ID{4, 1}, resultIDs(results))
}

func TestFindAllReflectsReplace(t *testing.T) {
	ctx := context.Background()
	db := New()
	seedCatalog(t, db)

	repl, err := ent.NewBuilder("item").
		Field("name", value.Text("anvil")).
		Field("stock", value.Int(0)).
		Build()
	require.NoError(t, err)
	repl.SetID(1)
	_, err = db.Insert(ctx, repl)
	require.NoError(t, err)

	results, err := db.FindAll(ctx, query.New().Where("stock", query.Eq(value.Int(3))))
	require.NoError(t, err)
	assert.Equal(t, []core.ID{2, 3, 5}, resultIDs(results), "stale index buckets must not resurface the old value")

	require.NoError(t, db.CheckConsistency())
}
