package memory

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/query"
	"github.com/hupe1980/entdb/value"
)

// FindAll returns every live ent satisfying q.
//
// Equality and membership conditions over indexed fields prune candidates
// through the inverted index; everything else falls back to scanning. The
// full query is re-evaluated against every surviving candidate, so both
// paths produce identical results by construction.
func (db *Database) FindAll(_ context.Context, q *query.Query) ([]*ent.Ent, error) {
	if q == nil {
		q = query.New()
	}

	db.mu.RLock()

	candidates := db.candidates(q)

	results := make([]*ent.Ent, 0, candidates.GetCardinality())
	it := candidates.Iterator()
	for it.HasNext() {
		e, ok := db.ents[core.ID(it.Next())]
		if !ok {
			continue
		}
		if q.Matches(e) {
			results = append(results, e.Clone())
		}
	}

	db.mu.RUnlock()

	q.Sort(results)
	return q.Page(results), nil
}

// candidates narrows the live id set using the type index and the inverted
// field index. It never widens the match set and only ever prunes ids whose
// stored value cannot satisfy an equality/membership condition.
func (db *Database) candidates(q *query.Query) *roaring64.Bitmap {
	var set *roaring64.Bitmap
	if q.Type != "" {
		if bm, ok := db.byType[q.Type]; ok {
			set = bm.Clone()
		} else {
			return roaring64.New()
		}
	} else {
		set = db.live.Clone()
	}

	for _, cond := range q.Conds {
		if cond.Field == "" || !db.fieldIndexed(cond.Field) {
			continue
		}
		bucketed, ok := db.postings(cond.Field, cond.Pred)
		if !ok {
			continue
		}
		set.And(bucketed)
		if set.IsEmpty() {
			break
		}
	}

	return set
}

// postings resolves an equality or membership predicate to the union of its
// index buckets. ok=false means the predicate has no index fast path.
//
// Composite operands (optional, list, map) are left to the scan: EqualKeys
// expands cross-kind numeric aliases for scalars only, and equality recurses
// into composites with the same cross-kind rules, so pruning on a composite
// bucket key could drop ents the scan would match.
func (db *Database) postings(field string, p query.Predicate) (*roaring64.Bitmap, bool) {
	buckets, present := db.fields[field]

	switch p.Op {
	case query.OpEq:
		if compositeKind(p.Value) {
			return nil, false
		}
		return db.bucketUnion(buckets, present, value.EqualKeys(p.Value)), true
	case query.OpIn:
		items, ok := p.Value.AsList()
		if !ok {
			return roaring64.New(), true
		}
		union := roaring64.New()
		for _, item := range items {
			if compositeKind(item) {
				return nil, false
			}
			union.Or(db.bucketUnion(buckets, present, value.EqualKeys(item)))
		}
		return union, true
	default:
		return nil, false
	}
}

func compositeKind(v value.Value) bool {
	return v.Kind == value.KindOptional || v.Kind == value.KindList || v.Kind == value.KindMap
}

func (db *Database) bucketUnion(buckets map[string]*roaring64.Bitmap, present bool, keys []string) *roaring64.Bitmap {
	union := roaring64.New()
	if !present {
		return union
	}
	for _, key := range keys {
		if ids, ok := buckets[key]; ok {
			union.Or(ids)
		}
	}
	return union
}
