//go:build cloudintegration

package s3_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sphuber/aiida-s3/pkg/provider"
	"github.com/sphuber/aiida-s3/pkg/provider/s3"
	"github.com/sphuber/aiida-s3/test/cloudtest"
)

func newIntegrationProvider(t *testing.T, ctx context.Context, bucket string) *s3.Provider {
	t.Helper()

	p, err := s3.New(ctx, s3.Config{
		Bucket:          bucket,
		Endpoint:        cloudtest.Endpoint,
		Region:          cloudtest.Region,
		AccessKeyID:     cloudtest.TestAccessKeyID,
		SecretAccessKey: cloudtest.TestSecretAccessKey,
		ForcePathStyle:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestProvider_BucketLifecycle_CloudIntegration(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)
	ctx := context.Background()

	p := newIntegrationProvider(t, ctx, cloudtest.BucketName(t))

	exists, err := p.BucketExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, p.CreateBucket(ctx))
	// Repeated creation of an owned bucket succeeds.
	require.NoError(t, p.CreateBucket(ctx))

	exists, err = p.BucketExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, p.DeleteBucket(ctx))

	exists, err = p.BucketExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProvider_ObjectRoundTrip_CloudIntegration(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)
	ctx := context.Background()

	p := newIntegrationProvider(t, ctx, cloudtest.BucketName(t))
	require.NoError(t, p.CreateBucket(ctx))

	content := []byte("some binary content")
	require.NoError(t, p.PutObject(ctx, "key1", bytes.NewReader(content), int64(len(content))))

	rc, size, err := p.GetObject(ctx, "key1")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	assert.Equal(t, int64(len(content)), size)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	meta, err := p.Head(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), meta.Size)
	assert.NotEmpty(t, meta.ETag)
}

func TestProvider_GetObject_NotFound_CloudIntegration(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)
	ctx := context.Background()

	p := newIntegrationProvider(t, ctx, cloudtest.BucketName(t))
	require.NoError(t, p.CreateBucket(ctx))

	_, _, err := p.GetObject(ctx, "does-not-exist")
	require.Error(t, err)
	assert.True(t, provider.IsNotFound(err))

	_, err = p.Head(ctx, "does-not-exist")
	assert.True(t, provider.IsNotFound(err))
}

func TestProvider_DeleteObject_Idempotent_CloudIntegration(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)
	ctx := context.Background()

	p := newIntegrationProvider(t, ctx, cloudtest.BucketName(t))
	require.NoError(t, p.CreateBucket(ctx))

	require.NoError(t, p.PutObject(ctx, "key", bytes.NewReader([]byte("x")), 1))
	require.NoError(t, p.DeleteObject(ctx, "key"))
	require.NoError(t, p.DeleteObject(ctx, "key"))
	require.NoError(t, p.DeleteObject(ctx, "never-written"))
}

func TestProvider_DeleteObjects_CloudIntegration(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)
	ctx := context.Background()

	p := newIntegrationProvider(t, ctx, cloudtest.BucketName(t))
	require.NoError(t, p.CreateBucket(ctx))

	keys := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		require.NoError(t, p.PutObject(ctx, key, bytes.NewReader([]byte("x")), 1))
		keys = append(keys, key)
	}

	// Absent keys in the batch do not fail the request.
	keys = append(keys, "absent")
	require.NoError(t, p.DeleteObjects(ctx, keys))

	result, err := p.List(ctx, provider.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Objects)
}

func TestProvider_List_Pagination_CloudIntegration(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)
	ctx := context.Background()

	p := newIntegrationProvider(t, ctx, cloudtest.BucketName(t))
	require.NoError(t, p.CreateBucket(ctx))

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		require.NoError(t, p.PutObject(ctx, key, bytes.NewReader([]byte("x")), 1))
	}

	var keys []string
	var token string
	for {
		result, err := p.List(ctx, provider.ListOptions{MaxKeys: 2, ContinuationToken: token})
		require.NoError(t, err)
		for _, obj := range result.Objects {
			keys = append(keys, obj.Key)
		}
		if !result.IsTruncated {
			break
		}
		token = result.ContinuationToken
	}

	assert.Equal(t, []string{"key-0", "key-1", "key-2", "key-3", "key-4"}, keys)
}

func TestProvider_List_Prefix_CloudIntegration(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)
	ctx := context.Background()

	p := newIntegrationProvider(t, ctx, cloudtest.BucketName(t))
	require.NoError(t, p.CreateBucket(ctx))

	for _, key := range []string{"repository/a", "repository/b", "other/c"} {
		require.NoError(t, p.PutObject(ctx, key, bytes.NewReader([]byte("x")), 1))
	}

	result, err := p.List(ctx, provider.ListOptions{Prefix: "repository/"})
	require.NoError(t, err)
	require.Len(t, result.Objects, 2)
	for _, obj := range result.Objects {
		assert.Contains(t, obj.Key, "repository/")
	}
}

func TestProvider_MissingBucket_CloudIntegration(t *testing.T) {
	cloudtest.SkipIfUnavailable(t)
	ctx := context.Background()

	p := newIntegrationProvider(t, ctx, cloudtest.BucketName(t))

	_, err := p.List(ctx, provider.ListOptions{})
	require.Error(t, err)
	assert.True(t, provider.IsBucketNotFound(err))
}
