package entdb

import (
	"errors"
	"fmt"

	"github.com/hupe1980/entdb/core"
)

var (
	// ErrStoreFailure is the sentinel every backend I/O fault wraps.
	ErrStoreFailure = errors.New("entdb: store failure")

	// ErrMutationFailed is the sentinel wrapped by MutationError when a
	// cascade step's field/edge mutation is rejected.
	ErrMutationFailed = errors.New("entdb: ent mutation failed")
)

// StoreError reports a backend I/O fault during an operation.
//
// The underlying error can be accessed via errors.Unwrap; it also satisfies
// errors.Is(err, ErrStoreFailure).
type StoreError struct {
	Op    string
	Cause error
}

// NewStoreError wraps cause as a storage fault of the given operation.
func NewStoreError(op string, cause error) *StoreError {
	return &StoreError{Op: op, Cause: cause}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("entdb: store failure in %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrStoreFailure.
func (e *StoreError) Is(target error) bool { return target == ErrStoreFailure }

// MutationError reports a rejected ent mutation encountered mid-operation,
// typically an immutable edge hit by a remove cascade. The whole operation
// aborts and commits nothing.
type MutationError struct {
	ID    core.ID
	Cause error
}

// NewMutationError wraps a rejected mutation of the ent at id.
func NewMutationError(id core.ID, cause error) *MutationError {
	return &MutationError{ID: id, Cause: cause}
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("entdb: mutation of ent %d failed: %v", e.ID, e.Cause)
}

func (e *MutationError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrMutationFailed.
func (e *MutationError) Is(target error) bool { return target == ErrMutationFailed }
