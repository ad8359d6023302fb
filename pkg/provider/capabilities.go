package provider

import "context"

// Optional provider capability interfaces.
//
// These are used for feature detection (type assertions). The core Provider
// interface stays intentionally small; callers fall back to the primitive
// operations when a capability is absent.

// BatchDeleter can delete many objects in a single request.
//
// Implementations may impose a per-request cap on the number of keys
// (S3 allows 1000); callers must chunk accordingly. Absent keys in the
// batch are not an error.
type BatchDeleter interface {
	DeleteObjects(ctx context.Context, keys []string) error
}

// MaxBatchDelete is the largest batch accepted by DeleteObjects across
// supported providers.
const MaxBatchDelete = 1000
