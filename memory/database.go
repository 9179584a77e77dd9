package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/entdb"
	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
)

// errNilEnt guards Insert against a nil record.
var errNilEnt = errors.New("memory: nil ent")

// Database is the in-memory reference backend.
//
// It maintains the primary id-to-ent map, a per-field inverted index, a
// per-type index, and a reverse edge index mapping (edge name, target id) to
// the set of referencing ents. Reads run concurrently; mutations are
// serialized and appear atomic to readers. Stored ents are private clones:
// callers never share memory with the store.
type Database struct {
	mu     sync.RWMutex
	logger *entdb.Logger

	ents   map[core.ID]*ent.Ent
	live   *roaring64.Bitmap
	byType map[string]*roaring64.Bitmap

	// fields -> valueKey -> referencing ids; covers indexed fields only.
	fields map[string]map[string]*roaring64.Bitmap

	// edge name -> target id -> referencing ids.
	reverse map[string]map[core.ID]*roaring64.Bitmap

	// Nil means every field is indexed.
	indexed map[string]struct{}

	// Monotonic allocator; never reuses an id, and explicit inserts advance
	// it past their id.
	nextID uint64
}

// Option configures the in-memory backend.
type Option func(*Database)

// WithLogger sets the logger used for mutation tracing.
func WithLogger(l *entdb.Logger) Option {
	return func(db *Database) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithIndexedFields restricts the inverted index to the named fields.
// Queries over other fields fall back to a full scan with identical results.
// The default indexes every field.
func WithIndexedFields(names ...string) Option {
	return func(db *Database) {
		db.indexed = make(map[string]struct{}, len(names))
		for _, name := range names {
			db.indexed[name] = struct{}{}
		}
	}
}

// New creates an empty in-memory database.
func New(opts ...Option) *Database {
	db := &Database{
		logger:  entdb.NoopLogger(),
		ents:    make(map[core.ID]*ent.Ent),
		live:    roaring64.New(),
		byType:  make(map[string]*roaring64.Bitmap),
		fields:  make(map[string]map[string]*roaring64.Bitmap),
		reverse: make(map[string]map[core.ID]*roaring64.Bitmap),
		nextID:  1,
	}
	for _, opt := range opts {
		opt(db)
	}
	db.logger = db.logger.WithBackend("memory")
	return db
}

// Len returns the number of live ents.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.ents)
}

// Get returns the live ent at id, or nil when none exists.
func (db *Database) Get(_ context.Context, id core.ID) (*ent.Ent, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	e, ok := db.ents[id]
	if !ok {
		return nil, nil
	}
	return e.Clone(), nil
}

// GetAll returns the live ents for the given ids, omitting ids with no
// matching live ent. Results follow the order of ids.
func (db *Database) GetAll(_ context.Context, ids []core.ID) ([]*ent.Ent, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]*ent.Ent, 0, len(ids))
	for _, id := range ids {
		if e, ok := db.ents[id]; ok {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// Insert stores e and returns its final id.
//
// An ephemeral id gets a freshly allocated one; an id naming a live ent
// replaces the whole record. The caller's instance receives the final id and
// timestamps, mirroring what was persisted.
func (db *Database) Insert(_ context.Context, e *ent.Ent) (core.ID, error) {
	if e == nil {
		return core.Ephemeral, entdb.NewStoreError("insert", errNilEnt)
	}

	// Stale cached associations must never reach storage.
	e.ClearCache()

	db.mu.Lock()
	defer db.mu.Unlock()

	id := e.ID()
	if id.IsEphemeral() {
		id = core.ID(db.nextID)
		db.nextID++
	} else if uint64(id) >= db.nextID {
		// Explicit ids (snapshot restores, replicas) advance the allocator
		// so no later allocation can collide.
		db.nextID = uint64(id) + 1
	}

	now := time.Now()
	prev := db.ents[id]

	created := e.Created()
	if created.IsZero() {
		if prev != nil {
			created = prev.Created()
		} else {
			created = now
		}
	}
	// Nonzero timestamps carried by the caller (snapshot restores) stick.
	updated := e.Updated()
	if updated.IsZero() {
		updated = now
	}

	stored := e.Clone()
	stored.SetID(id)
	stored.Stamp(created, updated)

	if prev != nil {
		db.deindex(prev)
	}
	db.ents[id] = stored
	db.index(stored)

	e.SetID(id)
	e.Stamp(created, updated)

	db.logger.WithEnt(id).Debug("insert", "type", stored.Type(), "replaced", prev != nil)
	return id, nil
}

// Remove deletes the ent at id and cascades: every other live ent holding an
// edge reference to id has that reference excised within the same operation.
//
// The cascade is atomic. Every referencing ent is updated on a private clone
// first; a rejected mutation (immutable edge) aborts the whole removal with a
// MutationError and no state is committed.
func (db *Database) Remove(_ context.Context, id core.ID) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	target, ok := db.ents[id]
	if !ok {
		return false, nil
	}

	// Stage the cascade before touching anything.
	refs := db.referencers(id)
	staged := make([]*ent.Ent, 0, len(refs))
	for _, refID := range refs {
		if refID == id {
			continue
		}
		clone := db.ents[refID].Clone()
		if _, err := clone.RemoveTarget(id); err != nil {
			return false, entdb.NewMutationError(refID, err)
		}
		staged = append(staged, clone)
	}

	// Commit: excise the target, then persist the staged referencers.
	db.deindex(target)
	delete(db.ents, id)

	for _, clone := range staged {
		db.deindex(db.ents[clone.ID()])
		db.ents[clone.ID()] = clone
		db.index(clone)
	}

	db.logger.WithEnt(id).Debug("remove", "cascaded", len(staged))
	return true, nil
}

// referencers returns the sorted ids of every live ent holding an edge
// reference to target, across all edge names.
func (db *Database) referencers(target core.ID) []core.ID {
	set := roaring64.New()
	for _, targets := range db.reverse {
		if bm, ok := targets[target]; ok {
			set.Or(bm)
		}
	}

	out := make([]core.ID, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		out = append(out, core.ID(it.Next()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
