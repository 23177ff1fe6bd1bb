package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// Upload stores body under objectKey and returns its public download URL.
	Upload(ctx context.Context, objectKey string, contentType string, body io.ReadSeeker) (string, error)

	// Stat returns the object's metadata or ErrObjectNotFound.
	Stat(ctx context.Context, objectKey string) (*ObjectInfo, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error

	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// PublicURL is the stable download URL of objectKey.
	PublicURL(objectKey string) string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Error constants for storage layer
var (
	ErrObjectNotFound = errors.New("object not found in storage")
)
