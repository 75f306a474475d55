package filestorage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no object exists under the key
var ErrNotFound = errors.New("filestorage: object not found")

// Object describes a stored fixture file as returned by the provider
type Object struct {
	Key         string // Key relative to the provider root
	Path        string // Disk path or cloud URL
	Size        int64  // Size in bytes
	ContentType string // MIME type
	StorageType string // 'local', 's3', 'google_drive'
}

// Provider defines the interface for fixture file storage implementations
type Provider interface {
	// Put stores data under key, replacing any existing object
	Put(ctx context.Context, key string, data []byte, contentType string) (Object, error)

	// Get returns the object's content or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists in storage
	Exists(ctx context.Context, key string) (bool, error)

	// Name returns the name of the storage provider
	Name() string
}
