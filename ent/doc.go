// Package ent defines the graph-entity record: named typed fields plus named
// directed edges to other ents by id.
//
// Edges are plain id-valued foreign keys, never owning references, so
// arbitrarily cyclic graphs need no lifetime management. Cascading cleanup of
// dangling edge references is the database's job, built on
// (*Ent).RemoveTarget.
package ent
