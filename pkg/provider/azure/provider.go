package azure

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/sphuber/aiida-s3/pkg/provider"
)

// Provider implements provider.Provider for Azure Blob Storage.
//
// It does not implement provider.BatchDeleter: the blob service's batch API
// needs a separately authorized sub-request envelope, and callers already
// fall back to per-key deletion when the capability is absent.
type Provider struct {
	client     *azblob.Client
	container  string
	maxResults int
}

// Ensure Provider implements the interface.
var _ provider.Provider = (*Provider)(nil)

// New creates a new Azure Blob Storage provider with the given configuration.
func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, &provider.ProviderError{
			Op:       "New",
			Provider: provider.ProviderAzure,
			Bucket:   cfg.Container,
			Err:      err,
		}
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	return &Provider{
		client:     client,
		container:  cfg.Container,
		maxResults: maxResults,
	}, nil
}

// PutObject uploads or overwrites a blob.
func (p *Provider) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error {
	_, err := p.client.UploadStream(ctx, p.container, key, body, nil)
	if err != nil {
		return p.wrapError("PutObject", key, err)
	}
	return nil
}

// GetObject opens the content of a blob.
//
// The download itself raises ErrNotFound for absent keys, so callers do not
// need a prior Head or listing to read safely.
func (p *Provider) GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	resp, err := p.client.DownloadStream(ctx, p.container, key, nil)
	if err != nil {
		return nil, 0, p.wrapError("GetObject", key, err)
	}
	return resp.Body, derefInt64(resp.ContentLength), nil
}

// Head returns metadata for a single blob.
func (p *Provider) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	blobClient := p.client.ServiceClient().NewContainerClient(p.container).NewBlobClient(key)

	resp, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		return nil, p.wrapError("Head", key, err)
	}

	meta := &provider.ObjectMeta{
		ObjectSummary: provider.ObjectSummary{
			Key:          key,
			Size:         derefInt64(resp.ContentLength),
			ETag:         derefETag(resp.ETag),
			LastModified: derefTime(resp.LastModified),
		},
		ContentType: derefString(resp.ContentType),
		Metadata:    flattenMetadata(resp.Metadata),
	}

	return meta, nil
}

// DeleteObject removes one blob. The blob service errors on absent keys;
// that error is swallowed so deletion matches the idempotent contract the
// other providers get from S3 for free.
func (p *Provider) DeleteObject(ctx context.Context, key string) error {
	_, err := p.client.DeleteBlob(ctx, p.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil
		}
		return p.wrapError("DeleteObject", key, err)
	}
	return nil
}

// List returns a page of blobs with the given prefix.
//
// The pager is created fresh per call with the marker from opts, so one List
// call fetches exactly one page and the continuation cursor stays with the
// caller, as with the other providers.
func (p *Provider) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	maxResults := clampMaxResults(opts.MaxKeys, p.maxResults)

	listOpts := &azblob.ListBlobsFlatOptions{
		MaxResults: to.Ptr(int32(maxResults)),
	}
	if opts.Prefix != "" {
		listOpts.Prefix = to.Ptr(opts.Prefix)
	}
	if opts.ContinuationToken != "" {
		listOpts.Marker = to.Ptr(opts.ContinuationToken)
	}

	pager := p.client.NewListBlobsFlatPager(p.container, listOpts)
	resp, err := pager.NextPage(ctx)
	if err != nil {
		return nil, p.wrapError("List", "", err)
	}

	objects := make([]provider.ObjectSummary, 0, len(resp.Segment.BlobItems))
	for _, item := range resp.Segment.BlobItems {
		summary := provider.ObjectSummary{Key: derefString(item.Name)}
		if item.Properties != nil {
			summary.Size = derefInt64(item.Properties.ContentLength)
			summary.ETag = derefETag(item.Properties.ETag)
			summary.LastModified = derefTime(item.Properties.LastModified)
		}
		objects = append(objects, summary)
	}

	result := &provider.ListResult{Objects: objects}
	if marker := derefString(resp.NextMarker); marker != "" {
		result.IsTruncated = true
		result.ContinuationToken = marker
	}

	return result, nil
}

// Bucket returns the configured container name.
func (p *Provider) Bucket() string {
	return p.container
}

// BucketExists reports whether the configured container exists.
func (p *Provider) BucketExists(ctx context.Context) (bool, error) {
	containerClient := p.client.ServiceClient().NewContainerClient(p.container)

	_, err := containerClient.GetProperties(ctx, nil)
	if err != nil {
		wrapped := p.wrapError("BucketExists", "", err)
		if provider.IsBucketNotFound(wrapped) || provider.IsNotFound(wrapped) {
			return false, nil
		}
		return false, wrapped
	}
	return true, nil
}

// CreateBucket creates the configured container. A container that already
// exists is treated as success, which makes repeated initialization safe.
func (p *Provider) CreateBucket(ctx context.Context) error {
	_, err := p.client.CreateContainer(ctx, p.container, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return nil
		}
		return p.wrapError("CreateBucket", "", err)
	}
	return nil
}

// DeleteBucket removes the configured container. Unlike S3, the blob service
// deletes non-empty containers; callers that need the sweep-then-delete
// sequence still get it because erasure enumerates and deletes first.
func (p *Provider) DeleteBucket(ctx context.Context) error {
	_, err := p.client.DeleteContainer(ctx, p.container, nil)
	if err != nil {
		return p.wrapError("DeleteBucket", "", err)
	}
	return nil
}

// Close releases any resources held by the provider.
// The blob client doesn't require explicit cleanup, but this satisfies the interface.
func (p *Provider) Close() error {
	return nil
}

// wrapError converts blob service errors to provider errors with appropriate
// sentinel errors.
func (p *Provider) wrapError(op, key string, err error) error {
	wrapped := &provider.ProviderError{
		Op:       op,
		Provider: provider.ProviderAzure,
		Bucket:   p.container,
		Key:      key,
		Err:      err,
	}

	// Service error codes carry the most precise classification.
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ResourceNotFound):
		wrapped.Err = provider.ErrNotFound
		return wrapped
	case bloberror.HasCode(err, bloberror.ContainerNotFound):
		wrapped.Err = provider.ErrBucketNotFound
		return wrapped
	case bloberror.HasCode(err, bloberror.AuthenticationFailed, bloberror.InvalidAuthenticationInfo,
		bloberror.NoAuthenticationInformation):
		wrapped.Err = provider.ErrInvalidCredentials
		return wrapped
	case bloberror.HasCode(err, bloberror.AuthorizationFailure, bloberror.AuthorizationPermissionMismatch,
		bloberror.InsufficientAccountPermissions, bloberror.AccountIsDisabled):
		wrapped.Err = provider.ErrAccessDenied
		return wrapped
	case bloberror.HasCode(err, bloberror.ServerBusy, bloberror.InternalError, bloberror.OperationTimedOut):
		wrapped.Err = provider.ErrTransient
		return wrapped
	case bloberror.HasCode(err, bloberror.InvalidInput, bloberror.InvalidHeaderValue, bloberror.InvalidURI,
		bloberror.OutOfRangeInput, bloberror.UnsupportedHeader, bloberror.UnsupportedHTTPVerb):
		wrapped.Err = provider.ErrPermanent
		return wrapped
	}

	// Network-level failures (dial, timeout) are retryable.
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		wrapped.Err = provider.ErrTransient
		return wrapped
	}

	// Fallback: classify by HTTP status for codes not covered above.
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			wrapped.Err = provider.ErrNotFound
		case http.StatusUnauthorized:
			wrapped.Err = provider.ErrInvalidCredentials
		case http.StatusForbidden:
			wrapped.Err = provider.ErrAccessDenied
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wrapped.Err = provider.ErrTransient
		case http.StatusBadRequest, http.StatusMethodNotAllowed:
			wrapped.Err = provider.ErrPermanent
		}
	}

	return wrapped
}

// clampMaxResults applies defaults and limits to page size values.
func clampMaxResults(requested, providerDefault int) int {
	if requested <= 0 {
		requested = providerDefault
	}
	if requested > MaxAllowedResults {
		return MaxAllowedResults
	}
	return requested
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt64(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func derefETag(etag *azcore.ETag) string {
	if etag == nil {
		return ""
	}
	return string(*etag)
}

func flattenMetadata(in map[string]*string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = derefString(v)
	}
	return out
}
