// Package profile defines the storage profile record and its loading.
//
// A profile is the explicit configuration handed to the backend: which
// provider to use, how to reach it, and which bucket scopes the repository.
// There is no implicit process-wide state; independent backends can run from
// independent profiles in one process, which is also what makes the backend
// trivially testable.
package profile

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Backend kinds selectable in a profile.
const (
	// BackendS3 uses AWS S3 or any S3-compatible service (set endpoint_url).
	BackendS3 = "s3"

	// BackendAzure uses Azure Blob Storage (set connection_string).
	BackendAzure = "azure"

	// BackendMemory uses the in-process emulated store. This is the
	// mock/test-mode flag: the substitution happens at construction time
	// in the factory, never by runtime branching in backend logic.
	BackendMemory = "memory"
)

// Profile is a named storage configuration.
type Profile struct {
	// Name identifies the profile in logs and CLI output.
	Name string `yaml:"name" json:"name" mapstructure:"name"`

	// Storage configures the object-store connection.
	Storage Storage `yaml:"storage" json:"storage" mapstructure:"storage"`
}

// Storage is the object-store connection record.
type Storage struct {
	// Backend selects the provider kind: "s3", "azure" or "memory".
	Backend string `yaml:"backend" json:"backend" mapstructure:"backend"`

	// EndpointURL is a custom endpoint for S3-compatible services.
	// Empty for AWS S3.
	EndpointURL string `yaml:"endpoint_url,omitempty" json:"endpoint_url,omitempty" mapstructure:"endpoint_url"`

	// Region is the AWS region, also used as the location constraint when
	// the bucket is created.
	Region string `yaml:"region,omitempty" json:"region,omitempty" mapstructure:"region"`

	// BucketName is the bucket scoping all repository objects (required).
	BucketName string `yaml:"bucket_name" json:"bucket_name" mapstructure:"bucket_name"`

	// KeyPrefix scopes repository keys inside a shared bucket. Optional.
	KeyPrefix string `yaml:"key_prefix,omitempty" json:"key_prefix,omitempty" mapstructure:"key_prefix"`

	// AccessKeyID is an explicit access key. If set, SecretAccessKey must
	// also be set; when both are empty the SDK default chain applies.
	AccessKeyID string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty" mapstructure:"access_key_id"`

	// SecretAccessKey is the secret paired with AccessKeyID.
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty" mapstructure:"secret_access_key"`

	// ConnectionString is the storage-account connection string for the
	// azure backend. It embeds the account name, key and endpoint.
	ConnectionString string `yaml:"connection_string,omitempty" json:"connection_string,omitempty" mapstructure:"connection_string"`

	// ForcePathStyle forces path-style URLs; required by most
	// S3-compatible services.
	ForcePathStyle bool `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty" mapstructure:"force_path_style"`

	// CreateBucket allows initialization to create the bucket when it is
	// missing. Defaults to true.
	CreateBucket *bool `yaml:"create_bucket,omitempty" json:"create_bucket,omitempty" mapstructure:"create_bucket"`

	// WarnOnForeignKeys logs keys that fail to decode during enumeration
	// instead of skipping them silently.
	WarnOnForeignKeys bool `yaml:"warn_on_foreign_keys,omitempty" json:"warn_on_foreign_keys,omitempty" mapstructure:"warn_on_foreign_keys"`

	// MaxKeys is the listing page size. Zero uses the provider default
	// (1000). The memory backend uses it as its emulated page cap, which
	// is how tests force multi-page enumerations.
	MaxKeys int `yaml:"max_keys,omitempty" json:"max_keys,omitempty" mapstructure:"max_keys"`

	// RateLimit caps listing requests per second during enumeration.
	// Zero means unlimited.
	RateLimit float64 `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty" mapstructure:"rate_limit"`
}

// ApplyDefaults fills optional fields that were left unset.
func (p *Profile) ApplyDefaults() {
	if p.Name == "" {
		p.Name = "default"
	}
	if p.Storage.Backend == "" {
		p.Storage.Backend = BackendS3
	}
	if p.Storage.CreateBucket == nil {
		enabled := true
		p.Storage.CreateBucket = &enabled
	}
}

// Validate checks the profile for use. Call ApplyDefaults first when the
// profile was built by hand.
func (p *Profile) Validate() error {
	switch p.Storage.Backend {
	case BackendS3, BackendAzure, BackendMemory:
	case "":
		return fmt.Errorf("profile %s: storage backend is required", p.Name)
	default:
		return fmt.Errorf("profile %s: unknown storage backend %q", p.Name, p.Storage.Backend)
	}

	if p.Storage.BucketName == "" {
		return fmt.Errorf("profile %s: bucket_name is required", p.Name)
	}

	if p.Storage.Backend == BackendAzure && p.Storage.ConnectionString == "" {
		return fmt.Errorf("profile %s: connection_string is required for the azure backend", p.Name)
	}

	if (p.Storage.AccessKeyID != "") != (p.Storage.SecretAccessKey != "") {
		return fmt.Errorf("profile %s: access_key_id and secret_access_key must be provided together", p.Name)
	}

	return nil
}

// FromMap decodes a profile from generic settings (e.g. viper.AllSettings),
// applies defaults and validates.
//
// Decoding is weakly typed: environment-sourced settings arrive as strings,
// so "100" and "true" must still land in the int and bool fields.
func FromMap(settings map[string]any) (*Profile, error) {
	var p Profile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid profile settings: %w", err)
	}
	if err := dec.Decode(settings); err != nil {
		return nil, fmt.Errorf("invalid profile settings: %w", err)
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Redacted returns a copy safe for display: secrets are masked.
func (p *Profile) Redacted() Profile {
	out := *p
	if out.Storage.SecretAccessKey != "" {
		out.Storage.SecretAccessKey = "***"
	}
	// The connection string embeds the account key.
	if out.Storage.ConnectionString != "" {
		out.Storage.ConnectionString = "***"
	}
	return out
}
