package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectStore defines the interface for namespaced object storage.
// A namespace is a logical container of keyed binary objects; each
// note owns a primary namespace and a "<owner>-archive" namespace for
// finished archives.
type ObjectStore interface {
	// EnsureNamespace creates the namespace if it does not exist
	EnsureNamespace(ctx context.Context, namespace string) error

	// NamespaceExists checks if a namespace exists
	NamespaceExists(ctx context.Context, namespace string) (bool, error)

	// DeleteNamespace removes a namespace and every object in it
	DeleteNamespace(ctx context.Context, namespace string) error

	// Upload uploads an object; size -1 means unknown (streaming)
	Upload(ctx context.Context, namespace, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object
	Download(ctx context.Context, namespace, key string) (io.ReadCloser, error)

	// List enumerates every object in a namespace
	List(ctx context.Context, namespace string) ([]ObjectInfo, error)

	// Delete deletes an object
	Delete(ctx context.Context, namespace, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, namespace, key string) (bool, error)
}
