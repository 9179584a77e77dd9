package entdb

import (
	"context"

	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/query"
)

// Database is the contract every backend satisfies. It is the exclusive
// authority for id allocation and for index/edge consistency over the set of
// live ents it holds.
//
// Reads may run fully concurrently; mutations are serialized with respect to
// each other and appear atomic to concurrent readers. There is no cross-call
// transaction mechanism.
type Database interface {
	// Get returns the live ent at id, or nil when none exists. It fails only
	// on backend I/O faults, reported as a StoreError.
	Get(ctx context.Context, id core.ID) (*ent.Ent, error)

	// GetAll returns the live ents for the given ids; ids with no matching
	// live ent are silently omitted. Result order is backend-defined.
	GetAll(ctx context.Context, ids []core.ID) ([]*ent.Ent, error)

	// Insert stores e and returns its final id. An ephemeral id is replaced
	// with a freshly allocated one, distinct from every id the database has
	// ever handed out. An id naming a live ent triggers whole-record replace
	// semantics. ClearCache is invoked on e before it is persisted and
	// zero timestamps are stamped with the current time; nonzero ones are
	// kept as supplied.
	Insert(ctx context.Context, e *ent.Ent) (core.ID, error)

	// Remove deletes the ent at id, reporting whether a live ent existed.
	// Deletion cascades: within the same logical operation every other live
	// ent referencing id has the reference excised (One collapses to None,
	// Many shrinks). The cascade is atomic; if any step fails, nothing is
	// committed.
	Remove(ctx context.Context, id core.ID) (bool, error)

	// FindAll returns every live ent satisfying q, respecting its ordering,
	// offset and limit. Predicates over mismatched value kinds are
	// non-matches, never errors.
	FindAll(ctx context.Context, q *query.Query) ([]*ent.Ent, error)
}

// Closer is implemented by backends holding external resources.
type Closer interface {
	Close() error
}
