// Package scan implements complete enumeration of an object namespace.
//
// Object stores cap a single listing call at one page (commonly 1000 keys);
// a naive single call silently truncates at that boundary. The scanner
// drives the provider's paginated List with the continuation token until
// exhaustion, so enumeration is complete for any object count. No snapshot
// isolation is provided: keys written or deleted mid-scan may or may not
// appear in the result.
package scan

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sphuber/aiida-s3/pkg/provider"
)

// Config configures scanner behavior.
type Config struct {
	// PageSize is the requested page size per List call.
	// Zero uses the provider default.
	PageSize int

	// RateLimit is the maximum List requests per second.
	// Zero means unlimited (the provider handles its own throttling).
	RateLimit float64
}

// Stats contains counters from scans performed so far.
type Stats struct {
	// PagesFetched is the number of List calls issued.
	PagesFetched int64

	// KeysSeen is the number of keys yielded to callbacks.
	KeysSeen int64
}

// Scanner enumerates all keys under a prefix.
//
// A Scanner is safe for concurrent use; counters aggregate across scans.
// Each Scan call is an independent, single-pass enumeration - the
// continuation cursor lives only for the duration of one call, and
// restarting means calling Scan again from scratch.
type Scanner struct {
	provider provider.Provider
	config   Config
	logger   *zap.Logger

	// Rate limiter (nil if unlimited)
	limiter *rate.Limiter

	pagesFetched atomic.Int64
	keysSeen     atomic.Int64
}

// New creates a scanner over the given provider.
// A nil logger disables logging.
func New(p provider.Provider, cfg Config, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scanner{
		provider: p,
		config:   cfg,
		logger:   logger,
	}

	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return s
}

// Scan invokes fn once for every key under prefix, fetching pages until the
// provider reports exhaustion.
//
// Scan stops early and returns the error when fn fails or the context is
// cancelled. Provider failures propagate wrapped in their sentinel
// classification; Scan itself never retries.
func (s *Scanner) Scan(ctx context.Context, prefix string, fn func(key string) error) error {
	var continuationToken string

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.waitForRateLimit(ctx); err != nil {
			return err
		}

		result, err := s.provider.List(ctx, provider.ListOptions{
			Prefix:            prefix,
			ContinuationToken: continuationToken,
			MaxKeys:           s.config.PageSize,
		})
		if err != nil {
			return err
		}
		s.pagesFetched.Add(1)

		s.logger.Debug("Fetched listing page",
			zap.String("prefix", prefix),
			zap.Int("keys", len(result.Objects)),
			zap.Bool("truncated", result.IsTruncated))

		for _, obj := range result.Objects {
			s.keysSeen.Add(1)
			if err := fn(obj.Key); err != nil {
				return err
			}
		}

		if !result.IsTruncated || result.ContinuationToken == "" {
			return nil
		}
		continuationToken = result.ContinuationToken
	}
}

// Keys collects every key under prefix into a slice.
func (s *Scanner) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.Scan(ctx, prefix, func(key string) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Stats returns the counters accumulated across all scans.
func (s *Scanner) Stats() Stats {
	return Stats{
		PagesFetched: s.pagesFetched.Load(),
		KeysSeen:     s.keysSeen.Load(),
	}
}

// waitForRateLimit blocks until the rate limiter allows a request.
// Returns immediately if rate limiting is disabled.
func (s *Scanner) waitForRateLimit(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}
