// Package blobstore abstracts access to immutable corpus shard objects.
//
// Shards are written once by the tokenization pipeline and never
// modified, so the surface here is read-only: open a shard, read ranges
// from it, list what exists. Remote backends (S3, MinIO) live in
// subpackages; CachingStore adds block-level caching in front of any
// backend.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a shard object does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
// The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for locating immutable shard objects.
type BlobStore interface {
	// Open opens a shard object for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// List returns the shard names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a shard object.
type Blob interface {
	// ReadAt copies bytes [off, off+len(p)) into p.
	// Reads past the end return io.EOF after the available bytes.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// Size returns the size of the object in bytes.
	Size() int64
	// Close releases the handle.
	Close() error
}

// Fetcher is an optional interface for stores that can materialize a
// whole object more efficiently than sequential ReadAt calls (e.g. the
// S3 store uses parallel ranged downloads).
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Fetch reads the complete object, using the store's Fetcher fast path
// when available.
func Fetch(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	if f, ok := store.(Fetcher); ok {
		return f.Fetch(ctx, name)
	}

	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	data := make([]byte, b.Size())
	n, err := b.ReadAt(ctx, data, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return data[:n], nil
}
