// Package repository implements the file-repository backend contract on top
// of an object-store provider.
//
// The backend persists immutable byte content keyed by opaque identifiers
// (typically content hashes) for a higher-level repository/database layer.
// It orchestrates the key codec (identifier to bucket key and back), the
// provider's primitive operations, and the scanner's complete enumeration.
// The backend holds no state between calls beyond the provider's client
// handle, so operations may be invoked concurrently without locking; per-key
// consistency comes from the remote store.
package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sphuber/aiida-s3/pkg/keycodec"
	"github.com/sphuber/aiida-s3/pkg/provider"
	"github.com/sphuber/aiida-s3/pkg/scan"
)

// KeyFormat is the format of identifiers the backend generates itself via
// NewIdentifier. Callers may also supply their own identifiers (content
// hashes) as long as they satisfy keycodec.Validate.
const KeyFormat = "uuid4"

// Config configures backend behavior beyond the provider connection.
type Config struct {
	// CreateMissing allows Initialize to create the bucket when it does
	// not exist. When false, a missing bucket is a provisioning error.
	CreateMissing bool

	// WarnOnForeignKeys logs a warning for every bucket key that fails to
	// decode during enumeration. When false, foreign keys are skipped
	// silently. Either way they never abort enumeration.
	WarnOnForeignKeys bool

	// Scan configures the enumeration engine (page size, rate limit).
	Scan scan.Config
}

// Backend implements the file-repository contract over one bucket.
type Backend struct {
	provider provider.Provider
	codec    *keycodec.Codec
	scanner  *scan.Scanner
	config   Config
	logger   *zap.Logger
}

// New creates a backend over the given provider and codec.
// A nil codec uses the zero codec (no key prefix); a nil logger disables
// logging.
func New(p provider.Provider, codec *keycodec.Codec, cfg Config, logger *zap.Logger) *Backend {
	if codec == nil {
		codec = &keycodec.Codec{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Backend{
		provider: p,
		codec:    codec,
		scanner:  scan.New(p, cfg.Scan, logger),
		config:   cfg,
		logger:   logger,
	}
}

// NewIdentifier returns a fresh uuid4 identifier for content whose caller
// does not supply its own key.
func NewIdentifier() string {
	return uuid.NewString()
}

// String returns a short description of the backend.
func (b *Backend) String() string {
	return fmt.Sprintf("object repository <%s>", b.provider.Bucket())
}

// UUID returns the unique identifier of the repository, which is the bucket
// name.
func (b *Backend) UUID() string {
	return b.provider.Bucket()
}

// IsInitialized reports whether the bucket backing the repository exists.
func (b *Backend) IsInitialized(ctx context.Context) (bool, error) {
	return b.provider.BucketExists(ctx)
}

// Initialize validates connectivity and ensures the bucket exists, creating
// it when allowed by the configuration. Idempotent.
//
// Failures are classified: rejected or missing credentials surface as
// *ConfigurationError, a bucket that cannot be created as
// *ProvisioningError. Initialize never leaves a partially usable backend:
// either the bucket exists on return, or an error explains why not.
func (b *Backend) Initialize(ctx context.Context) error {
	exists, err := b.provider.BucketExists(ctx)
	if err != nil {
		if provider.IsUnauthorized(err) {
			return &ConfigurationError{Reason: "credentials rejected by provider", Err: err}
		}
		return err
	}
	if exists {
		return nil
	}

	if !b.config.CreateMissing {
		return &ProvisioningError{
			Bucket: b.provider.Bucket(),
			Err:    fmt.Errorf("bucket does not exist and creation is disabled"),
		}
	}

	if err := b.provider.CreateBucket(ctx); err != nil {
		if provider.IsUnauthorized(err) {
			return &ConfigurationError{Reason: "credentials rejected creating bucket", Err: err}
		}
		return &ProvisioningError{Bucket: b.provider.Bucket(), Err: err}
	}

	b.logger.Info("Created repository bucket", zap.String("bucket", b.provider.Bucket()))
	return nil
}

// Has reports whether an object exists for the identifier.
//
// Uses the provider's metadata probe directly - never a listing, which
// would be slow and incomplete for large buckets.
func (b *Backend) Has(ctx context.Context, identifier string) (bool, error) {
	if err := keycodec.Validate(identifier); err != nil {
		return false, err
	}

	_, err := b.provider.Head(ctx, b.codec.Encode(identifier))
	if err != nil {
		if provider.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Put stores the content read from r under the identifier, overwriting any
// previous content. Writes are full replaces; no object is mutated in place.
func (b *Backend) Put(ctx context.Context, identifier string, r io.Reader, contentLength int64) error {
	if err := keycodec.Validate(identifier); err != nil {
		return err
	}
	return b.provider.PutObject(ctx, b.codec.Encode(identifier), r, contentLength)
}

// PutBytes stores the byte payload under the identifier.
func (b *Backend) PutBytes(ctx context.Context, identifier string, data []byte) error {
	return b.Put(ctx, identifier, bytes.NewReader(data), int64(len(data)))
}

// Open returns a reader for the content stored under the identifier.
//
// The get relies on the provider raising ErrNotFound itself rather than a
// preceding existence probe, which halves the request count of the common
// open-and-read path. The caller must close the returned reader.
func (b *Backend) Open(ctx context.Context, identifier string) (io.ReadCloser, int64, error) {
	if err := keycodec.Validate(identifier); err != nil {
		return nil, 0, err
	}
	return b.provider.GetObject(ctx, b.codec.Encode(identifier))
}

// GetBytes returns the full content stored under the identifier.
func (b *Backend) GetBytes(ctx context.Context, identifier string) ([]byte, error) {
	rc, _, err := b.Open(ctx, identifier)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes the object stored under the identifier. Deleting an absent
// identifier is not an error, so repeated deletes are idempotent.
func (b *Backend) Delete(ctx context.Context, identifier string) error {
	if err := keycodec.Validate(identifier); err != nil {
		return err
	}
	return b.provider.DeleteObject(ctx, b.codec.Encode(identifier))
}

// IterateIdentifiers invokes fn once for every identifier stored in the
// repository, in no particular order.
//
// Enumeration pages through the full namespace, so it is complete for any
// object count. Keys that fail to decode (foreign objects written by other
// tools) are skipped, never fatal. No snapshot isolation: concurrent writers
// may cause an identifier to appear, be missed, or be seen and then removed
// before fn processes it.
func (b *Backend) IterateIdentifiers(ctx context.Context, fn func(identifier string) error) error {
	return b.scanner.Scan(ctx, b.codec.Prefix, func(key string) error {
		identifier, err := b.codec.Decode(key)
		if err != nil {
			if b.config.WarnOnForeignKeys {
				b.logger.Warn("Skipping foreign object during enumeration",
					zap.String("bucket", b.provider.Bucket()),
					zap.String("key", key))
			}
			return nil
		}
		return fn(identifier)
	})
}

// ListIdentifiers collects every stored identifier into a slice.
func (b *Backend) ListIdentifiers(ctx context.Context) ([]string, error) {
	var identifiers []string
	err := b.IterateIdentifiers(ctx, func(identifier string) error {
		identifiers = append(identifiers, identifier)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return identifiers, nil
}

// Count returns the number of objects the repository manages.
func (b *Backend) Count(ctx context.Context) (int, error) {
	count := 0
	err := b.IterateIdentifiers(ctx, func(string) error {
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Erase deletes every object in the bucket, including foreign ones, then
// deletes the bucket itself. A bucket that does not exist is a no-op.
//
// Best-effort under concurrent writers: keys written after enumeration
// began may survive the sweep, in which case the final bucket delete fails
// with the provider's non-empty error.
func (b *Backend) Erase(ctx context.Context) error {
	exists, err := b.provider.BucketExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	// Raw keys, not decoded identifiers: the bucket delete below requires
	// an empty bucket, foreign objects included.
	keys, err := b.scanner.Keys(ctx, "")
	if err != nil {
		return err
	}

	if err := b.deleteKeys(ctx, keys); err != nil {
		return err
	}

	if err := b.provider.DeleteBucket(ctx); err != nil {
		return err
	}

	b.logger.Info("Erased repository bucket",
		zap.String("bucket", b.provider.Bucket()),
		zap.Int("objects", len(keys)))
	return nil
}

// deleteKeys removes raw bucket keys, batching when the provider supports it.
func (b *Backend) deleteKeys(ctx context.Context, keys []string) error {
	if batcher, ok := b.provider.(provider.BatchDeleter); ok {
		for len(keys) > 0 {
			n := len(keys)
			if n > provider.MaxBatchDelete {
				n = provider.MaxBatchDelete
			}
			if err := batcher.DeleteObjects(ctx, keys[:n]); err != nil {
				return err
			}
			keys = keys[n:]
		}
		return nil
	}

	for _, key := range keys {
		if err := b.provider.DeleteObject(ctx, key); err != nil {
			// Idempotent sweep: a key already gone is fine.
			if errors.Is(err, provider.ErrNotFound) {
				continue
			}
			return err
		}
	}
	return nil
}

// ScanStats exposes the enumeration engine's counters, used by the status
// surface.
func (b *Backend) ScanStats() scan.Stats {
	return b.scanner.Stats()
}

// Close releases the provider's client handle. The backend owns the
// provider exclusively.
func (b *Backend) Close() error {
	return b.provider.Close()
}
