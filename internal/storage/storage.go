package storage

import (
	"context"
	"io"
)

// BlobStore defines the asset byte operations common to all backends.
// Keys are generated per upload, so the store is append-only in practice:
// concurrent uploads never collide and nothing here is ever overwritten.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
