// Package snapshot saves and restores the full contents of a database as
// a self-describing blob pair: a JSON manifest naming the codec and
// compression, and a compressed stream of length-prefixed encoded ents.
//
// Snapshots restore across backends — a memory database can be saved and
// restored into a sqlite one and vice versa — because ids, timestamps, and
// field flags round-trip through the ent codec.
package snapshot
