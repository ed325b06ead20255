package object

import (
	"context"
	"io"
)

// Object describes a stored blob.
type Object struct {
	// Key is the provider-assigned identifier used with Open.
	Key         string
	URL         string
	Size        int64
	ContentType string
}

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	// Put stores r under folder/name and returns its public URL and key.
	Put(ctx context.Context, folder, name, contentType string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}
