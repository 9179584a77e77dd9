package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction over the places a snapshot can live: a local
// directory, process memory, or an object store.
type Store interface {
	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Create opens a new blob for writing. The blob becomes visible to
	// readers only once the returned writer is closed without error.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// Remove deletes a blob. Removing a missing blob is not an error.
	Remove(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
