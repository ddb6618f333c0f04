// Package blobstore persists uploaded binaries in an external object store.
package blobstore

import (
	"context"
	"errors"
)

// ErrUploadFailed signals the provider rejected or lost an upload.
var ErrUploadFailed = errors.New("image upload failed")

// Object identifies a stored binary. URL is public; Key is the internal
// storage handle used for deletion and never exposed to clients.
type Object struct {
	URL string
	Key string
}

// ObjectStore uploads binaries and deletes them by handle. Delete is only
// ever used for best-effort cleanup; callers log its errors and move on.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, name string) (Object, error)
	Delete(ctx context.Context, key string) error
}
