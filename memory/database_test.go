package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/entdb"
	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/query"
	"github.com/hupe1980/entdb/value"
)

func insertNote(t *testing.T, db *Database, title string) core.ID {
	t.Helper()
	e, err := ent.NewBuilder("note").Field("title", value.Text(title)).Build()
	require.NoError(t, err)
	id, err := db.Insert(context.Background(), e)
	require.NoError(t, err)
	return id
}

func TestInsertAllocatesMonotonicIDs(t *testing.T) {
	db := New()

	first := insertNote(t, db, "a")
	second := insertNote(t, db, "b")
	assert.Equal(t, core.ID(1), first)
	assert.Equal(t, core.ID(2), second)

	// Removal never frees an id for reuse.
	removed, err := db.Remove(context.Background(), second)
	require.NoError(t, err)
	require.True(t, removed)
	assert.Equal(t, core.ID(3), insertNote(t, db, "c"))
}

func TestInsertExplicitIDAdvancesAllocator(t *testing.T) {
	ctx := context.Background()
	db := New()

	e, err := ent.NewBuilder("note").Build()
	require.NoError(t, err)
	e.SetID(100)
	id, err := db.Insert(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, core.ID(100), id)

	assert.Equal(t, core.ID(101), insertNote(t, db, "next"))
}

func TestInsertStampsCaller(t *testing.T) {
	ctx := context.Background()
	db := New()

	e, err := ent.NewBuilder("note").Build()
	require.NoError(t, err)
	require.True(t, e.Created().IsZero())

	id, err := db.Insert(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, id, e.ID())
	assert.False(t, e.Created().IsZero())
	assert.Equal(t, e.Created(), e.Updated())
}

func TestInsertReplacePreservesCreated(t *testing.T) {
	ctx := context.Background()
	db := New()

	id := insertNote(t, db, "v1")
	orig, err := db.Get(ctx, id)
	require.NoError(t, err)

	// A replacement built from scratch carries no timestamps of its own.
	repl, err := ent.NewBuilder("note").Field("title", value.Text("v2")).Build()
	require.NoError(t, err)
	repl.SetID(id)
	_, err = db.Insert(ctx, repl)
	require.NoError(t, err)

	got, err := db.Get(ctx, id)
	require.NoError(t, err)
	v, _ := got.Field("title")
	assert.True(t, value.Equal(value.Text("v2"), v))
	assert.Equal(t, orig.Created(), got.Created())
	assert.False(t, got.Updated().Before(orig.Updated()))
}

func TestInsertPreservesExplicitTimestamps(t *testing.T) {
	// Snapshot restores insert ents that already carry timestamps.
	ctx := context.Background()
	db := New()

	created := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	e, err := ent.NewBuilder("note").Build()
	require.NoError(t, err)
	e.SetID(9)
	e.Stamp(created, updated)

	_, err = db.Insert(ctx, e)
	require.NoError(t, err)

	got, err := db.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, created, got.Created())
	assert.Equal(t, updated, got.Updated())
}

func TestInsertNil(t *testing.T) {
	db := New()
	_, err := db.Insert(context.Background(), nil)
	require.ErrorIs(t, err, entdb.ErrStoreFailure)
}

func TestGetReturnsPrivateClones(t *testing.T) {
	ctx := context.Background()
	db := New()
	id := insertNote(t, db, "original")

	got, err := db.Get(ctx, id)
	require.NoError(t, err)
	require.NoError(t, got.MutateField("title", value.Text("tampered")))

	again, err := db.Get(ctx, id)
	require.NoError(t, err)
	v, _ := again.Field("title")
	assert.True(t, value.Equal(value.Text("original"), v))
}

func TestGetMissing(t *testing.T) {
	db := New()
	e, err := db.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestGetAllOmitsDead(t *testing.T) {
	ctx := context.Background()
	db := New()
	a := insertNote(t, db, "a")
	b := insertNote(t, db, "b")

	ents, err := db.GetAll(ctx, []core.ID{a, 99, b})
	require.NoError(t, err)
	require.Len(t, ents, 2)
	assert.Equal(t, a, ents[0].ID())
	assert.Equal(t, b, ents[1].ID())
}

func TestRemoveMissing(t *testing.T) {
	db := New()
	removed, err := db.Remove(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveCascadesOneToNone(t *testing.T) {
	ctx := context.Background()
	db := New()

	target := insertNote(t, db, "target")
	holder, err := ent.NewBuilder("note").Edge("author", ent.One(target)).Build()
	require.NoError(t, err)
	holderID, err := db.Insert(ctx, holder)
	require.NoError(t, err)

	removed, err := db.Remove(ctx, target)
	require.NoError(t, err)
	require.True(t, removed)

	got, err := db.Get(ctx, holderID)
	require.NoError(t, err)
	ev, ok := got.Edge("author")
	require.True(t, ok, "the edge itself survives, only the reference is excised")
	assert.Equal(t, ent.CardinalityNone, ev.Kind)
	assert.Empty(t, ev.IDs)

	require.NoError(t, db.CheckConsistency())
}

func TestRemoveCascadesManyShrinks(t *testing.T) {
	ctx := context.Background()
	db := New()

	a := insertNote(t, db, "a")
	b := insertNote(t, db, "b")
	c := insertNote(t, db, "c")

	holder, err := ent.NewBuilder("note").Edge("tags", ent.Many(a, b, c)).Build()
	require.NoError(t, err)
	holderID, err := db.Insert(ctx, holder)
	require.NoError(t, err)

	removed, err := db.Remove(ctx, b)
	require.NoError(t, err)
	require.True(t, removed)

	got, err := db.Get(ctx, holderID)
	require.NoError(t, err)
	ev, _ := got.Edge("tags")
	assert.Equal(t, ent.CardinalityMany, ev.Kind)
	assert.Equal(t, []core.ID{a, c}, ev.IDs)

	require.NoError(t, db.CheckConsistency())
}

func TestRemoveAbortsOnImmutableEdge(t *testing.T) {
	ctx := context.Background()
	db := New()

	target := insertNote(t, db, "target")

	// One mutable and one immutable referencer; the immutable one must veto
	// the removal and leave the mutable one untouched.
	mutable, err := ent.NewBuilder("note").Edge("ref", ent.One(target)).Build()
	require.NoError(t, err)
	mutableID, err := db.Insert(ctx, mutable)
	require.NoError(t, err)

	frozen, err := ent.NewBuilder("note").ImmutableEdge("origin", ent.One(target)).Build()
	require.NoError(t, err)
	frozenID, err := db.Insert(ctx, frozen)
	require.NoError(t, err)

	removed, err := db.Remove(ctx, target)
	require.ErrorIs(t, err, entdb.ErrMutationFailed)
	require.ErrorIs(t, err, ent.ErrImmutableEdge)
	assert.False(t, removed)

	var merr *entdb.MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, frozenID, merr.ID)

	// Nothing was committed: target lives, the mutable edge is intact.
	got, err := db.Get(ctx, target)
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = db.Get(ctx, mutableID)
	require.NoError(t, err)
	ev, _ := got.Edge("ref")
	assert.Equal(t, []core.ID{target}, ev.IDs)

	require.NoError(t, db.CheckConsistency())
}

func TestRemoveEntWithSelfEdge(t *testing.T) {
	ctx := context.Background()
	db := New()

	e, err := ent.NewBuilder("note").Build()
	require.NoError(t, err)
	id, err := db.Insert(ctx, e)
	require.NoError(t, err)

	// Point the ent at itself and re-insert.
	withSelf, err := ent.NewBuilder("note").Edge("self", ent.One(id)).Build()
	require.NoError(t, err)
	withSelf.SetID(id)
	_, err = db.Insert(ctx, withSelf)
	require.NoError(t, err)

	removed, err := db.Remove(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, db.Len())
	require.NoError(t, db.CheckConsistency())
}

func TestConcurrentInsertAndRemove(t *testing.T) {
	ctx := context.Background()
	db := New()

	seed := make([]core.ID, 50)
	for i := range seed {
		seed[i] = insertNote(t, db, fmt.Sprintf("seed-%d", i))
	}

	// Phase 1: concurrent inserts referencing the seeds, with readers mixed in.
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		i := i
		g.Go(func() error {
			for j := 0; j < 25; j++ {
				e, err := ent.NewBuilder("note").
					Field("worker", value.Int(int64(i))).
					Edge("ref", ent.One(seed[(i*25+j)%len(seed)])).
					Build()
				if err != nil {
					return err
				}
				if _, err := db.Insert(ctx, e); err != nil {
					return err
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := 0; i < 50; i++ {
			if _, err := db.FindAll(ctx, query.New()); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())
	require.NoError(t, db.CheckConsistency())

	// Phase 2: concurrent removals of every seed, each cascading into the
	// referencing ents, again with readers mixed in.
	var g2 errgroup.Group
	for i := 0; i < 4; i++ {
		i := i
		g2.Go(func() error {
			for j := i; j < len(seed); j += 4 {
				if _, err := db.Remove(ctx, seed[j]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	g2.Go(func() error {
		for i := 0; i < 50; i++ {
			if _, err := db.FindAll(ctx, query.New()); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g2.Wait())
	require.NoError(t, db.CheckConsistency())

	// All seeds are gone and no surviving edge references one.
	results, err := db.FindAll(ctx, query.New())
	require.NoError(t, err)
	assert.Len(t, results, 200)
	for _, e := range results {
		if ev, ok := e.Edge("ref"); ok {
			assert.Empty(t, ev.IDs, "cascade left a dangling reference on ent %d", e.ID())
		}
	}
}
