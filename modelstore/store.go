// Package modelstore abstracts storage for serialized model snapshots.
//
// A snapshot is small enough to read and write whole, so the contract
// is byte-level Put/Get rather than streamed blobs. Backends exist for
// memory (tests), the local filesystem, Amazon S3 and MinIO; Throttled
// adds rate limiting and bounded concurrency in front of any backend.
package modelstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a named snapshot does not exist.
//
// Implementations must return an error that satisfies
// errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("model snapshot not found")

// Store reads and writes named model snapshots.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes a snapshot atomically, replacing any existing snapshot
	// with the same name.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads a snapshot whole.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an
	// error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all snapshots with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
