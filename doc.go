// Package entdb provides an embeddable, typed graph-entity store for Go.
//
// Records ("ents") carry named scalar fields and named directed associations
// ("edges") to other records, persisted in a pluggable backend and queried
// through a composable predicate language:
//
//	db := memory.New()
//
//	alice, _ := ent.NewBuilder("user").
//	    Field("name", value.Text("Alice")).
//	    Build()
//	aliceID, _ := db.Insert(ctx, alice)
//
//	bob, _ := ent.NewBuilder("user").
//	    Field("name", value.Text("Bob")).
//	    Edge("friend", ent.One(aliceID)).
//	    Build()
//	db.Insert(ctx, bob)
//
//	users, _ := db.FindAll(ctx, query.New().
//	    HasType("user").
//	    Where("name", query.HasPrefix("A")))
//
// Removing an ent cascades: every other live ent referencing it has the edge
// reference excised atomically, so the store never retains a dangling edge.
//
// Backends:
//   - memory: the in-memory reference implementation with roaring-bitmap
//     secondary and reverse-edge indexes
//   - sqlite: a persistent backend on modernc.org/sqlite
//
// Snapshots of a whole database can be written to and restored from a
// blobstore (local directory, memory, or MinIO/S3-compatible); see the
// snapshot package.
package entdb
