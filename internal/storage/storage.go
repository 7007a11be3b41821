// Package storage handles attachment blobs across the two possible
// backends: the local uploads directory and an S3-compatible object store.
// New uploads go to whichever backend was selected at startup; deletion is
// routed by the attachment URL because rows created under an earlier
// configuration may reference either backend.
package storage

import (
	"context"
	"io"
)

// Uploader stores an uploaded file and returns the public URL to persist on
// the attachment record.
type Uploader interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// ObjectStore is the remote, S3-compatible backend.
type ObjectStore interface {
	Uploader

	// Delete removes the object with the given key. Deleting an absent key
	// is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object with the given key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Configured reports whether the backend has working credentials.
	Configured() bool
}
