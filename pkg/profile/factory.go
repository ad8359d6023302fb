package profile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sphuber/aiida-s3/pkg/keycodec"
	"github.com/sphuber/aiida-s3/pkg/provider"
	"github.com/sphuber/aiida-s3/pkg/provider/azure"
	"github.com/sphuber/aiida-s3/pkg/provider/memory"
	"github.com/sphuber/aiida-s3/pkg/provider/s3"
	"github.com/sphuber/aiida-s3/pkg/repository"
	"github.com/sphuber/aiida-s3/pkg/scan"
)

// NewProvider constructs the provider adapter the profile selects.
//
// The choice between the real network adapter and the in-memory emulation is
// made here, at construction time; the repository backend never branches on
// a test-mode flag.
func (p *Profile) NewProvider(ctx context.Context) (provider.Provider, error) {
	switch p.Storage.Backend {
	case BackendS3:
		return s3.New(ctx, s3.Config{
			Bucket:          p.Storage.BucketName,
			Region:          p.Storage.Region,
			Endpoint:        p.Storage.EndpointURL,
			AccessKeyID:     p.Storage.AccessKeyID,
			SecretAccessKey: p.Storage.SecretAccessKey,
			ForcePathStyle:  p.Storage.ForcePathStyle,
			MaxKeys:         p.Storage.MaxKeys,
		})
	case BackendAzure:
		return azure.New(azure.Config{
			Container:        p.Storage.BucketName,
			ConnectionString: p.Storage.ConnectionString,
			MaxResults:       p.Storage.MaxKeys,
		})
	case BackendMemory:
		return memory.New(memory.Config{
			Bucket:   p.Storage.BucketName,
			PageSize: p.Storage.MaxKeys,
		})
	default:
		return nil, fmt.Errorf("profile %s: unknown storage backend %q", p.Name, p.Storage.Backend)
	}
}

// NewBackend assembles the repository backend: provider adapter, key codec
// over the profile's key prefix, and enumeration engine.
//
// The returned backend owns the provider and releases it on Close. Call
// Initialize before data operations.
func (p *Profile) NewBackend(ctx context.Context, logger *zap.Logger) (*repository.Backend, error) {
	prov, err := p.NewProvider(ctx)
	if err != nil {
		return nil, err
	}

	codec, err := keycodec.New(p.Storage.KeyPrefix)
	if err != nil {
		_ = prov.Close()
		return nil, err
	}

	cfg := repository.Config{
		CreateMissing:     p.Storage.CreateBucket == nil || *p.Storage.CreateBucket,
		WarnOnForeignKeys: p.Storage.WarnOnForeignKeys,
		Scan: scan.Config{
			PageSize:  p.Storage.MaxKeys,
			RateLimit: p.Storage.RateLimit,
		},
	}

	return repository.New(prov, codec, cfg, logger), nil
}
