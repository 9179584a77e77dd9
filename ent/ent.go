package ent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/value"
)

// Getter is the narrow database surface needed to resolve edge targets.
// It is satisfied by every Database implementation.
type Getter interface {
	Get(ctx context.Context, id core.ID) (*Ent, error)
}

// Ent is a stored graph-entity record: id, type name, timestamps, named
// fields and named directed edges to other ents.
//
// An ent is constructed with the ephemeral id, receives a real id and
// timestamps on first insert, and is mutated only through validated setters.
// Ents are not safe for concurrent mutation; databases hand out private
// copies.
type Ent struct {
	id      core.ID
	etype   string
	created time.Time
	updated time.Time
	fields  map[string]Field
	edges   map[string]Edge

	// Memoized LoadEdge results; dropped by ClearCache and never persisted.
	loaded map[string][]*Ent
}

// New creates an ent of the given type with the ephemeral id. Later fields
// or edges with duplicate names overwrite earlier ones; use Builder when
// duplicates should be rejected instead.
func New(etype string, fields []Field, edges []Edge) *Ent {
	e := &Ent{
		id:     core.Ephemeral,
		etype:  etype,
		fields: make(map[string]Field, len(fields)),
		edges:  make(map[string]Edge, len(edges)),
	}
	for _, f := range fields {
		e.fields[f.Name] = f
	}
	for _, ed := range edges {
		e.edges[ed.Name] = ed
	}
	return e
}

// ID returns the ent's id; core.Ephemeral until first insert.
func (e *Ent) ID() core.ID { return e.id }

// SetID updates the ent's id. Databases call this during insert; resetting
// the id to core.Ephemeral before an insert produces a stored clone.
func (e *Ent) SetID(id core.ID) { e.id = id }

// Type returns the ent's type name.
func (e *Ent) Type() string { return e.etype }

// Created returns the time the ent was first inserted; zero beforehand.
func (e *Ent) Created() time.Time { return e.created }

// Updated returns the time the ent was last written.
func (e *Ent) Updated() time.Time { return e.updated }

// Stamp sets the ent's timestamps. Databases call this on insert and when
// persisting cascade updates.
func (e *Ent) Stamp(created, updated time.Time) {
	e.created = created
	e.updated = updated
}

// Field returns the value of the named field.
func (e *Ent) Field(name string) (value.Value, bool) {
	f, ok := e.fields[name]
	return f.Value, ok
}

// FieldDef returns the named field including its flags.
func (e *Ent) FieldDef(name string) (Field, bool) {
	f, ok := e.fields[name]
	return f, ok
}

// FieldNames returns the ent's field names, sorted.
func (e *Ent) FieldNames() []string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Edge returns the value of the named edge.
func (e *Ent) Edge(name string) (EdgeValue, bool) {
	ed, ok := e.edges[name]
	return ed.Value, ok
}

// EdgeDef returns the named edge including its flags.
func (e *Ent) EdgeDef(name string) (Edge, bool) {
	ed, ok := e.edges[name]
	return ed, ok
}

// EdgeNames returns the ent's edge names, sorted.
func (e *Ent) EdgeNames() []string {
	names := make([]string, 0, len(e.edges))
	for name := range e.edges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MutateField overwrites the named field's value.
//
// Fails with ErrNoField for unknown names, ErrImmutableField for immutable
// fields and ErrComputedField for computed fields; the stored value is left
// unchanged on failure.
func (e *Ent) MutateField(name string, v value.Value) error {
	f, ok := e.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoField, name)
	}
	if f.Computed {
		return fmt.Errorf("%w: %q", ErrComputedField, name)
	}
	if f.Immutable {
		return fmt.Errorf("%w: %q", ErrImmutableField, name)
	}
	f.Value = v
	e.fields[name] = f
	e.updated = time.Now()
	return nil
}

// MutateEdge overwrites the named edge's value.
//
// Fails with ErrNoEdge for unknown names and ErrImmutableEdge for edges
// declared immutable.
func (e *Ent) MutateEdge(name string, v EdgeValue) error {
	ed, ok := e.edges[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoEdge, name)
	}
	if ed.Immutable {
		return fmt.Errorf("%w: %q", ErrImmutableEdge, name)
	}
	ed.Value = v
	e.edges[name] = ed
	e.updated = time.Now()
	return nil
}

// RemoveTarget excises id from every edge that references it (One collapses
// to None, Many shrinks) and reports whether anything changed.
//
// An immutable edge referencing id fails the whole call with ErrImmutableEdge
// before any edge is modified; databases rely on this to keep cascades atomic.
func (e *Ent) RemoveTarget(id core.ID) (bool, error) {
	for _, ed := range e.edges {
		if ed.Immutable && ed.Value.Contains(id) {
			return false, fmt.Errorf("%w: %q", ErrImmutableEdge, ed.Name)
		}
	}

	changed := false
	for name, ed := range e.edges {
		next, ok := ed.Value.Without(id)
		if !ok {
			continue
		}
		ed.Value = next
		e.edges[name] = ed
		changed = true
	}
	if changed {
		e.updated = time.Now()
	}
	return changed, nil
}

// LoadEdge resolves the named edge's targets through db and memoizes the
// result until ClearCache is called. Dead targets are silently omitted.
func (e *Ent) LoadEdge(ctx context.Context, db Getter, name string) ([]*Ent, error) {
	if ents, ok := e.loaded[name]; ok {
		return ents, nil
	}

	ed, ok := e.edges[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoEdge, name)
	}

	ents := make([]*Ent, 0, len(ed.Value.IDs))
	for _, id := range ed.Value.IDs {
		target, err := db.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if target != nil {
			ents = append(ents, target)
		}
	}

	if e.loaded == nil {
		e.loaded = make(map[string][]*Ent)
	}
	e.loaded[name] = ents
	return ents, nil
}

// ClearCache invalidates memoized derived state such as loaded edge results.
// Databases invoke it before persisting an ent so stale associations are
// never written to storage.
func (e *Ent) ClearCache() { e.loaded = nil }

// Clone creates a deep copy of the ent. Memoized edge loads are not carried
// over.
func (e *Ent) Clone() *Ent {
	c := &Ent{
		id:      e.id,
		etype:   e.etype,
		created: e.created,
		updated: e.updated,
		fields:  make(map[string]Field, len(e.fields)),
		edges:   make(map[string]Edge, len(e.edges)),
	}
	for name, f := range e.fields {
		c.fields[name] = f.Clone()
	}
	for name, ed := range e.edges {
		c.edges[name] = ed.Clone()
	}
	return c
}

// Equal reports whether two ents carry identical ids, types, timestamps,
// fields and edges.
func (e *Ent) Equal(other *Ent) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.id != other.id || e.etype != other.etype {
		return false
	}
	if !e.created.Equal(other.created) || !e.updated.Equal(other.updated) {
		return false
	}
	if len(e.fields) != len(other.fields) || len(e.edges) != len(other.edges) {
		return false
	}
	for name, f := range e.fields {
		of, ok := other.fields[name]
		if !ok || f.Immutable != of.Immutable || f.Computed != of.Computed || !value.Equal(f.Value, of.Value) {
			return false
		}
	}
	for name, ed := range e.edges {
		oe, ok := other.edges[name]
		if !ok || ed.Immutable != oe.Immutable || ed.Value.Kind != oe.Value.Kind {
			return false
		}
		if len(ed.Value.IDs) != len(oe.Value.IDs) {
			return false
		}
		for i := range ed.Value.IDs {
			if ed.Value.IDs[i] != oe.Value.IDs[i] {
				return false
			}
		}
	}
	return true
}

// String implements fmt.Stringer.
func (e *Ent) String() string {
	return fmt.Sprintf("Ent %d of type %s", e.id, e.etype)
}
