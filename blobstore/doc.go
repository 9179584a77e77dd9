// Package blobstore abstracts where snapshot blobs are stored.
//
// The Store interface covers the small surface the snapshot package needs:
// streaming reads, streaming atomic writes, removal, and prefix listing.
// Three implementations ship with the module:
//
//   - LocalStore: a directory on the local file system (writes are
//     temp-file-and-rename atomic)
//   - MemoryStore: process memory, mainly for tests
//   - minio.Store: MinIO and S3-compatible object storage
package blobstore
