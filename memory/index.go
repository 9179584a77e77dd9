package memory

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
)

// index registers e in the type, field and reverse edge indexes.
// Callers hold the write lock.
func (db *Database) index(e *ent.Ent) {
	id := uint64(e.ID())
	db.live.Add(id)

	bm, ok := db.byType[e.Type()]
	if !ok {
		bm = roaring64.New()
		db.byType[e.Type()] = bm
	}
	bm.Add(id)

	for _, name := range e.FieldNames() {
		if !db.fieldIndexed(name) {
			continue
		}
		v, _ := e.Field(name)
		buckets, ok := db.fields[name]
		if !ok {
			buckets = make(map[string]*roaring64.Bitmap)
			db.fields[name] = buckets
		}
		key := v.Key()
		ids, ok := buckets[key]
		if !ok {
			ids = roaring64.New()
			buckets[key] = ids
		}
		ids.Add(id)
	}

	for _, name := range e.EdgeNames() {
		ev, _ := e.Edge(name)
		for _, target := range ev.Targets() {
			targets, ok := db.reverse[name]
			if !ok {
				targets = make(map[core.ID]*roaring64.Bitmap)
				db.reverse[name] = targets
			}
			refs, ok := targets[target]
			if !ok {
				refs = roaring64.New()
				targets[target] = refs
			}
			refs.Add(id)
		}
	}
}

// deindex removes e from the type, field and reverse edge indexes, pruning
// buckets that become empty. Callers hold the write lock.
func (db *Database) deindex(e *ent.Ent) {
	id := uint64(e.ID())
	db.live.Remove(id)

	if bm, ok := db.byType[e.Type()]; ok {
		bm.Remove(id)
		if bm.IsEmpty() {
			delete(db.byType, e.Type())
		}
	}

	for _, name := range e.FieldNames() {
		buckets, ok := db.fields[name]
		if !ok {
			continue
		}
		v, _ := e.Field(name)
		key := v.Key()
		if ids, ok := buckets[key]; ok {
			ids.Remove(id)
			if ids.IsEmpty() {
				delete(buckets, key)
			}
		}
		if len(buckets) == 0 {
			delete(db.fields, name)
		}
	}

	for _, name := range e.EdgeNames() {
		targets, ok := db.reverse[name]
		if !ok {
			continue
		}
		ev, _ := e.Edge(name)
		for _, target := range ev.Targets() {
			if refs, ok := targets[target]; ok {
				refs.Remove(id)
				if refs.IsEmpty() {
					delete(targets, target)
				}
			}
		}
		if len(targets) == 0 {
			delete(db.reverse, name)
		}
	}
}

func (db *Database) fieldIndexed(name string) bool {
	if db.indexed == nil {
		return true
	}
	_, ok := db.indexed[name]
	return ok
}

// CheckConsistency verifies that every index structure agrees with the
// primary store: for all ids in an index bucket, the stored ent's field or
// edge value actually matches the bucket key, and vice versa. It exists for
// tests and debugging and returns the first violation found.
func (db *Database) CheckConsistency() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.live.GetCardinality() != uint64(len(db.ents)) {
		return fmt.Errorf("memory: live bitmap holds %d ids, primary store holds %d", db.live.GetCardinality(), len(db.ents))
	}

	for etype, bm := range db.byType {
		it := bm.Iterator()
		for it.HasNext() {
			id := core.ID(it.Next())
			e, ok := db.ents[id]
			if !ok {
				return fmt.Errorf("memory: type index %q references dead ent %d", etype, id)
			}
			if e.Type() != etype {
				return fmt.Errorf("memory: ent %d indexed under type %q but has type %q", id, etype, e.Type())
			}
		}
	}

	for name, buckets := range db.fields {
		for key, ids := range buckets {
			it := ids.Iterator()
			for it.HasNext() {
				id := core.ID(it.Next())
				e, ok := db.ents[id]
				if !ok {
					return fmt.Errorf("memory: field index %q/%q references dead ent %d", name, key, id)
				}
				v, ok := e.Field(name)
				if !ok || v.Key() != key {
					return fmt.Errorf("memory: ent %d sits in field bucket %q/%q but does not match", id, name, key)
				}
			}
		}
	}

	for name, targets := range db.reverse {
		for target, refs := range targets {
			it := refs.Iterator()
			for it.HasNext() {
				id := core.ID(it.Next())
				e, ok := db.ents[id]
				if !ok {
					return fmt.Errorf("memory: reverse index (%q, %d) references dead ent %d", name, target, id)
				}
				ev, ok := e.Edge(name)
				if !ok || !ev.Contains(target) {
					return fmt.Errorf("memory: ent %d sits in reverse bucket (%q, %d) but does not reference it", id, name, target)
				}
			}
		}
	}

	// The other direction: stored values must be present in their buckets.
	// Edges referencing dead ids are legal (LoadEdge omits them), so only
	// the reverse-index bookkeeping is checked, not graph integrity.
	for id, e := range db.ents {
		for _, name := range e.FieldNames() {
			if !db.fieldIndexed(name) {
				continue
			}
			v, _ := e.Field(name)
			ids, ok := db.fields[name][v.Key()]
			if !ok || !ids.Contains(uint64(id)) {
				return fmt.Errorf("memory: ent %d field %q missing from its index bucket", id, name)
			}
		}
		for _, name := range e.EdgeNames() {
			ev, _ := e.Edge(name)
			for _, target := range ev.Targets() {
				refs, ok := db.reverse[name][target]
				if !ok || !refs.Contains(uint64(id)) {
					return fmt.Errorf("memory: ent %d edge %q missing from reverse bucket for %d", id, name, target)
				}
			}
		}
	}

	return nil
}
