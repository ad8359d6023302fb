package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sphuber/aiida-s3/pkg/provider"
	"github.com/sphuber/aiida-s3/pkg/provider/memory"
)

func seedProvider(t *testing.T, pageSize, count int) *memory.Provider {
	t.Helper()
	p, err := memory.New(memory.Config{Bucket: "scan-bucket", PageSize: pageSize, BucketExists: true})
	require.NoError(t, err)
	ctx := context.Background()
	for i := 0; i < count; i++ {
		key := fmt.Sprintf("repository/key-%03d", i)
		require.NoError(t, p.PutObject(ctx, key, bytes.NewReader([]byte("x")), 1))
	}
	return p
}

func TestScanner_Scan_Complete(t *testing.T) {
	p := seedProvider(t, 0, 7)
	s := New(p, Config{}, nil)

	var keys []string
	err := s.Scan(context.Background(), "repository/", func(key string) error {
		keys = append(keys, key)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, keys, 7)
}

func TestScanner_Scan_MultiplePages(t *testing.T) {
	// Seven keys with a page size of three needs three pages.
	p := seedProvider(t, 3, 7)
	s := New(p, Config{PageSize: 3}, nil)

	keys, err := s.Keys(context.Background(), "repository/")
	require.NoError(t, err)
	assert.Len(t, keys, 7)

	stats := s.Stats()
	assert.Equal(t, int64(3), stats.PagesFetched)
	assert.Equal(t, int64(7), stats.KeysSeen)
}

func TestScanner_Scan_Ordered(t *testing.T) {
	p := seedProvider(t, 2, 5)
	s := New(p, Config{PageSize: 2}, nil)

	keys, err := s.Keys(context.Background(), "repository/")
	require.NoError(t, err)
	require.Len(t, keys, 5)
	for i, key := range keys {
		assert.Equal(t, fmt.Sprintf("repository/key-%03d", i), key)
	}
}

func TestScanner_Scan_EmptyPrefix(t *testing.T) {
	p := seedProvider(t, 0, 0)
	s := New(p, Config{}, nil)

	keys, err := s.Keys(context.Background(), "repository/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.PagesFetched)
	assert.Equal(t, int64(0), stats.KeysSeen)
}

func TestScanner_Scan_CallbackError(t *testing.T) {
	p := seedProvider(t, 2, 5)
	s := New(p, Config{PageSize: 2}, nil)

	sentinel := errors.New("stop here")
	var seen int
	err := s.Scan(context.Background(), "repository/", func(key string) error {
		seen++
		if seen == 3 {
			return sentinel
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, seen)
}

func TestScanner_Scan_ContextCancelled(t *testing.T) {
	p := seedProvider(t, 2, 5)
	s := New(p, Config{PageSize: 2}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Scan(ctx, "repository/", func(key string) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanner_Scan_ProviderError(t *testing.T) {
	// Bucket is never created, so the first List fails.
	p, err := memory.New(memory.Config{Bucket: "scan-bucket"})
	require.NoError(t, err)
	s := New(p, Config{}, nil)

	scanErr := s.Scan(context.Background(), "", func(key string) error { return nil })
	require.Error(t, scanErr)
	assert.True(t, provider.IsBucketNotFound(scanErr))
}

func TestScanner_Scan_RateLimited(t *testing.T) {
	p := seedProvider(t, 0, 3)
	// A generous limit keeps the test fast while exercising the limiter path.
	s := New(p, Config{RateLimit: 1000}, nil)
	require.NotNil(t, s.limiter)

	keys, err := s.Keys(context.Background(), "repository/")
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}

func TestScanner_Stats_Aggregate(t *testing.T) {
	p := seedProvider(t, 0, 4)
	s := New(p, Config{}, nil)

	ctx := context.Background()
	_, err := s.Keys(ctx, "repository/")
	require.NoError(t, err)
	_, err = s.Keys(ctx, "repository/")
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, int64(2), stats.PagesFetched)
	assert.Equal(t, int64(8), stats.KeysSeen)
}
