// Package provider defines the normalized contract for object-store providers.
//
// A provider exposes the five primitive object operations the repository
// backend is built on (put, get, head, delete, paginated list) plus the
// bucket lifecycle operations needed for initialization and erasure. Every
// implementation must have identical externally observable semantics,
// including the error sentinels of errors.go, so callers cannot tell
// concrete providers apart.
package provider

import (
	"context"
	"io"
	"time"
)

// Provider abstracts one concrete object store.
//
// Implementations must:
//   - Raise ErrNotFound from GetObject/Head themselves, so callers never
//     need a separate existence check before a read
//   - Treat DeleteObject of an absent key as success (idempotent delete)
//   - Be safe for concurrent use
type Provider interface {
	// PutObject uploads or overwrites the object stored under key.
	PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error

	// GetObject opens the full content of the object stored under key.
	// Returns ErrNotFound if the key does not exist. The caller must close
	// the returned reader.
	GetObject(ctx context.Context, key string) (body io.ReadCloser, contentLength int64, err error)

	// Head returns metadata for a single object without fetching content.
	// Returns ErrNotFound if the object does not exist.
	Head(ctx context.Context, key string) (*ObjectMeta, error)

	// DeleteObject removes one object. Deleting an absent key is not an
	// error.
	DeleteObject(ctx context.Context, key string) error

	// List returns a page of objects with the given prefix.
	// Use ContinuationToken from ListResult for subsequent pages.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Bucket returns the configured bucket name.
	Bucket() string

	// BucketExists reports whether the configured bucket exists.
	BucketExists(ctx context.Context) (bool, error)

	// CreateBucket creates the configured bucket. Creating a bucket that
	// already exists and is owned by the caller is not an error.
	CreateBucket(ctx context.Context) error

	// DeleteBucket removes the configured bucket. The bucket must be empty.
	DeleteBucket(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// ListOptions configures a List operation.
type ListOptions struct {
	// Prefix filters results to keys starting with this value.
	// Empty string lists all objects.
	Prefix string

	// ContinuationToken resumes listing from a previous ListResult.
	// Empty string starts from the beginning.
	ContinuationToken string

	// MaxKeys limits the number of objects returned per page.
	// Zero uses the provider default (typically 1000).
	MaxKeys int
}

// ListResult contains a page of objects from a List operation.
type ListResult struct {
	// Objects contains the object summaries for this page.
	Objects []ObjectSummary

	// ContinuationToken is used to retrieve the next page.
	// Empty string indicates no more pages.
	ContinuationToken string

	// IsTruncated indicates whether more results are available.
	IsTruncated bool
}

// ObjectSummary contains basic metadata returned from List operations.
type ObjectSummary struct {
	// Key is the full object key in the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the entity tag, typically an MD5 hash of the object.
	ETag string

	// LastModified is when the object was last modified.
	LastModified time.Time
}

// ObjectMeta contains full metadata for a single object.
// Returned by Head operations.
type ObjectMeta struct {
	ObjectSummary

	// ContentType is the MIME type of the object.
	ContentType string

	// Metadata contains user-defined metadata key-value pairs.
	Metadata map[string]string
}

// ProviderType identifies an object-store provider.
type ProviderType string

const (
	// ProviderS3 represents AWS S3 or S3-compatible storage.
	ProviderS3 ProviderType = "s3"

	// ProviderAzure represents Azure Blob Storage.
	ProviderAzure ProviderType = "azure"

	// ProviderMemory represents the in-process emulated store used for
	// tests and mock mode.
	ProviderMemory ProviderType = "memory"
)

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	return string(p)
}
