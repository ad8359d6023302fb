package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sphuber/aiida-s3/pkg/provider"
)

func newTestProvider(t *testing.T, pageSize int) *Provider {
	t.Helper()
	p, err := New(Config{Bucket: "test-bucket", PageSize: pageSize, BucketExists: true})
	require.NoError(t, err)
	return p
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid", config: Config{Bucket: "b"}},
		{name: "missing bucket", config: Config{}, wantErr: true},
		{name: "blank bucket", config: Config{Bucket: "  "}, wantErr: true},
		{name: "negative page size", config: Config{Bucket: "b", PageSize: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProvider_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, 0)

	content := []byte("some binary content")
	require.NoError(t, p.PutObject(ctx, "key1", bytes.NewReader(content), int64(len(content))))

	rc, size, err := p.GetObject(ctx, "key1")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	assert.Equal(t, int64(len(content)), size)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestProvider_Put_Overwrite(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, 0)

	require.NoError(t, p.PutObject(ctx, "key", bytes.NewReader([]byte("first")), 5))
	require.NoError(t, p.PutObject(ctx, "key", bytes.NewReader([]byte("second")), 6))

	rc, _, err := p.GetObject(ctx, "key")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestProvider_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, 0)

	_, _, err := p.GetObject(ctx, "missing")
	require.Error(t, err)
	assert.True(t, provider.IsNotFound(err))
}

func TestProvider_Head(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, 0)

	require.NoError(t, p.PutObject(ctx, "key", bytes.NewReader([]byte("abc")), 3))

	meta, err := p.Head(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "key", meta.Key)
	assert.Equal(t, int64(3), meta.Size)
	assert.False(t, meta.LastModified.IsZero())

	_, err = p.Head(ctx, "missing")
	assert.True(t, provider.IsNotFound(err))
}

func TestProvider_Delete_Idempotent(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, 0)

	require.NoError(t, p.PutObject(ctx, "key", bytes.NewReader([]byte("abc")), 3))
	require.NoError(t, p.DeleteObject(ctx, "key"))
	// Second delete of the same key must also succeed.
	require.NoError(t, p.DeleteObject(ctx, "key"))
	// Deleting a never-written key succeeds too.
	require.NoError(t, p.DeleteObject(ctx, "never-written"))
}

func TestProvider_DeleteObjects(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, 0)

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		require.NoError(t, p.PutObject(ctx, key, bytes.NewReader([]byte("x")), 1))
	}

	// Absent keys in the batch are skipped.
	err := p.DeleteObjects(ctx, []string{"key-0", "key-1", "key-2", "absent"})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
}

func TestProvider_List_Pagination(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, 2)

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		require.NoError(t, p.PutObject(ctx, key, bytes.NewReader([]byte("x")), 1))
	}

	var keys []string
	var token string
	pages := 0
	for {
		res, err := p.List(ctx, provider.ListOptions{ContinuationToken: token})
		require.NoError(t, err)
		pages++
		for _, obj := range res.Objects {
			keys = append(keys, obj.Key)
		}
		if !res.IsTruncated {
			break
		}
		token = res.ContinuationToken
	}

	assert.Equal(t, []string{"key-0", "key-1", "key-2", "key-3", "key-4"}, keys)
	assert.Equal(t, 3, pages)
}

func TestProvider_List_Prefix(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, 0)

	require.NoError(t, p.PutObject(ctx, "repo/a", bytes.NewReader([]byte("x")), 1))
	require.NoError(t, p.PutObject(ctx, "repo/b", bytes.NewReader([]byte("x")), 1))
	require.NoError(t, p.PutObject(ctx, "other/c", bytes.NewReader([]byte("x")), 1))

	res, err := p.List(ctx, provider.ListOptions{Prefix: "repo/"})
	require.NoError(t, err)
	require.Len(t, res.Objects, 2)
	assert.Equal(t, "repo/a", res.Objects[0].Key)
	assert.Equal(t, "repo/b", res.Objects[1].Key)
}

func TestProvider_List_Empty(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, 0)

	res, err := p.List(ctx, provider.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Objects)
	assert.False(t, res.IsTruncated)
	assert.Empty(t, res.ContinuationToken)
}

func TestProvider_BucketLifecycle(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{Bucket: "test-bucket"})
	require.NoError(t, err)

	exists, err := p.BucketExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	// Object operations before creation fail with the bucket sentinel.
	err = p.PutObject(ctx, "key", bytes.NewReader(nil), 0)
	assert.True(t, provider.IsBucketNotFound(err))

	require.NoError(t, p.CreateBucket(ctx))
	// Idempotent.
	require.NoError(t, p.CreateBucket(ctx))

	exists, err = p.BucketExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, p.PutObject(ctx, "key", bytes.NewReader([]byte("x")), 1))

	// Non-empty bucket cannot be deleted.
	err = p.DeleteBucket(ctx)
	assert.True(t, provider.IsPermanent(err))

	require.NoError(t, p.DeleteObject(ctx, "key"))
	require.NoError(t, p.DeleteBucket(ctx))

	exists, err = p.BucketExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProvider_Bucket(t *testing.T) {
	p := newTestProvider(t, 0)
	assert.Equal(t, "test-bucket", p.Bucket())
}

func TestProvider_ContentLengthMismatch(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, 0)

	err := p.PutObject(ctx, "key", bytes.NewReader([]byte("abc")), 99)
	require.Error(t, err)
	assert.True(t, provider.IsPermanent(err))
}

func TestProvider_InterfaceCompliance(t *testing.T) {
	var _ provider.Provider = (*Provider)(nil)
	var _ provider.BatchDeleter = (*Provider)(nil)
}
