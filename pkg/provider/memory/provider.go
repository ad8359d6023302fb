// Package memory implements the provider interface with an in-process store.
//
// It emulates S3-compatible semantics (lazy bucket, idempotent delete,
// lexicographic paginated listing) without any network, and is the adapter
// the factory selects in mock/test mode. Tests use a small PageSize to force
// multi-page enumerations without writing thousands of objects.
package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sphuber/aiida-s3/pkg/provider"
)

// Provider implements provider.Provider backed by a mutex-guarded map.
type Provider struct {
	mu      sync.RWMutex
	objects map[string]object
	exists  bool // bucket existence

	bucket   string
	pageSize int
}

type object struct {
	data     []byte
	modified time.Time
}

// Ensure Provider implements the interfaces.
var (
	_ provider.Provider     = (*Provider)(nil)
	_ provider.BatchDeleter = (*Provider)(nil)
)

// Config configures a memory provider.
type Config struct {
	// Bucket is the emulated bucket name (required).
	Bucket string

	// PageSize is the maximum number of keys per List page.
	// Zero uses the S3 default of 1000.
	PageSize int

	// BucketExists pre-creates the bucket. When false the bucket must be
	// created via CreateBucket before object operations succeed, matching
	// the real provider's lifecycle.
	BucketExists bool
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("memory config: Bucket: bucket name is required")
	}
	if c.PageSize < 0 {
		return fmt.Errorf("memory config: PageSize: must not be negative")
	}
	return nil
}

// New creates a new memory provider.
func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Provider{
		objects:  make(map[string]object),
		exists:   cfg.BucketExists,
		bucket:   cfg.Bucket,
		pageSize: pageSize,
	}, nil
}

// PutObject stores or overwrites an object.
func (p *Provider) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error {
	if err := ctx.Err(); err != nil {
		return p.wrapError("PutObject", key, err)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return p.wrapError("PutObject", key, err)
	}
	if contentLength >= 0 && int64(len(data)) != contentLength {
		return &provider.ProviderError{
			Op: "PutObject", Provider: provider.ProviderMemory, Bucket: p.bucket, Key: key,
			Err: provider.ErrPermanent,
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireBucket("PutObject", key); err != nil {
		return err
	}
	p.objects[key] = object{data: data, modified: time.Now()}
	return nil
}

// GetObject opens the content of an object.
func (p *Provider) GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, p.wrapError("GetObject", key, err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.requireBucket("GetObject", key); err != nil {
		return nil, 0, err
	}
	obj, ok := p.objects[key]
	if !ok {
		return nil, 0, p.notFound("GetObject", key)
	}
	// Copy so a concurrent overwrite cannot mutate an in-flight read.
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

// Head returns metadata for a single object.
func (p *Provider) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, p.wrapError("Head", key, err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.requireBucket("Head", key); err != nil {
		return nil, err
	}
	obj, ok := p.objects[key]
	if !ok {
		return nil, p.notFound("Head", key)
	}
	return &provider.ObjectMeta{
		ObjectSummary: provider.ObjectSummary{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.modified,
		},
	}, nil
}

// DeleteObject removes one object. Absent keys are not an error.
func (p *Provider) DeleteObject(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return p.wrapError("DeleteObject", key, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireBucket("DeleteObject", key); err != nil {
		return err
	}
	delete(p.objects, key)
	return nil
}

// DeleteObjects removes up to MaxBatchDelete objects. Absent keys are skipped.
func (p *Provider) DeleteObjects(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return p.wrapError("DeleteObjects", "", err)
	}
	if len(keys) > provider.MaxBatchDelete {
		return &provider.ProviderError{
			Op: "DeleteObjects", Provider: provider.ProviderMemory, Bucket: p.bucket,
			Err: provider.ErrPermanent,
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireBucket("DeleteObjects", ""); err != nil {
		return err
	}
	for _, key := range keys {
		delete(p.objects, key)
	}
	return nil
}

// List returns a page of keys in lexicographic order.
//
// The continuation token is the last key of the previous page; the next page
// starts strictly after it, the same scheme the real provider's marker-based
// predecessors used.
func (p *Provider) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, p.wrapError("List", "", err)
	}

	maxKeys := opts.MaxKeys
	if maxKeys <= 0 || maxKeys > p.pageSize {
		maxKeys = p.pageSize
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.requireBucket("List", ""); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(p.objects))
	for key := range p.objects {
		if opts.Prefix == "" || strings.HasPrefix(key, opts.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if opts.ContinuationToken != "" {
		idx := sort.SearchStrings(keys, opts.ContinuationToken)
		for idx < len(keys) && keys[idx] <= opts.ContinuationToken {
			idx++
		}
		start = idx
	}

	end := start + maxKeys
	if end > len(keys) {
		end = len(keys)
	}

	objects := make([]provider.ObjectSummary, 0, end-start)
	for _, key := range keys[start:end] {
		obj := p.objects[key]
		objects = append(objects, provider.ObjectSummary{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.modified,
		})
	}

	res := &provider.ListResult{Objects: objects}
	if end < len(keys) {
		res.IsTruncated = true
		res.ContinuationToken = keys[end-1]
	}
	return res, nil
}

// Bucket returns the configured bucket name.
func (p *Provider) Bucket() string {
	return p.bucket
}

// BucketExists reports whether the emulated bucket exists.
func (p *Provider) BucketExists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, p.wrapError("BucketExists", "", err)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exists, nil
}

// CreateBucket creates the emulated bucket. Idempotent.
func (p *Provider) CreateBucket(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return p.wrapError("CreateBucket", "", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exists = true
	return nil
}

// DeleteBucket removes the emulated bucket. Fails when non-empty, matching S3.
func (p *Provider) DeleteBucket(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return p.wrapError("DeleteBucket", "", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.exists {
		return &provider.ProviderError{
			Op: "DeleteBucket", Provider: provider.ProviderMemory, Bucket: p.bucket,
			Err: provider.ErrBucketNotFound,
		}
	}
	if len(p.objects) > 0 {
		return &provider.ProviderError{
			Op: "DeleteBucket", Provider: provider.ProviderMemory, Bucket: p.bucket,
			Err: provider.ErrPermanent,
		}
	}
	p.exists = false
	return nil
}

// Close releases nothing; it satisfies the interface.
func (p *Provider) Close() error { return nil }

// Len returns the current object count. Test helper.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.objects)
}

// requireBucket is called with the mutex held.
func (p *Provider) requireBucket(op, key string) error {
	if p.exists {
		return nil
	}
	return &provider.ProviderError{
		Op: op, Provider: provider.ProviderMemory, Bucket: p.bucket, Key: key,
		Err: provider.ErrBucketNotFound,
	}
}

func (p *Provider) notFound(op, key string) error {
	return &provider.ProviderError{
		Op: op, Provider: provider.ProviderMemory, Bucket: p.bucket, Key: key,
		Err: provider.ErrNotFound,
	}
}

func (p *Provider) wrapError(op, key string, err error) error {
	wrapped := &provider.ProviderError{Op: op, Provider: provider.ProviderMemory, Bucket: p.bucket, Key: key, Err: err}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		wrapped.Err = fmt.Errorf("%w: %v", provider.ErrTransient, err)
	}
	return wrapped
}
