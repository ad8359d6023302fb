// Package azure implements the provider interface for Azure Blob Storage.
package azure

// Config configures an Azure Blob Storage provider.
//
// Authentication uses a storage-account connection string, which carries the
// account name, key and endpoint in a single value. Azurite and other
// emulators are reached the same way, through the endpoint embedded in the
// connection string.
type Config struct {
	// Container is the blob container name (required).
	Container string

	// ConnectionString is the storage-account connection string (required).
	ConnectionString string

	// MaxResults is the default page size for List operations.
	// Zero uses 1000 to match the other providers. Values over 5000 are
	// clamped to the service maximum.
	MaxResults int
}

// DefaultMaxResults is the default page size for List operations.
const DefaultMaxResults = 1000

// MaxAllowedResults is the maximum page size allowed by the blob service.
const MaxAllowedResults = 5000

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Container == "" {
		return &ConfigError{Field: "Container", Message: "container name is required"}
	}

	if c.ConnectionString == "" {
		return &ConfigError{Field: "ConnectionString", Message: "connection string is required"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "azure config: " + e.Field + ": " + e.Message
}
