// Package memory implements the in-memory reference backend of the Database
// contract.
//
// Alongside the primary id-to-ent map it maintains three roaring-bitmap
// index structures, updated incrementally on every mutation: a per-type
// index, a per-field inverted index keyed by stable value bucket keys, and a
// reverse edge index mapping (edge name, target id) to referencing ents. The
// reverse index makes remove's cascade proportional to the number of actual
// referencers rather than the store size.
package memory
