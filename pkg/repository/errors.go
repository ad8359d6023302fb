package repository

import "fmt"

// ConfigurationError indicates the backend cannot be initialized because of
// bad or missing credentials or settings. Fatal: no data operation should be
// attempted after one.
type ConfigurationError struct {
	// Reason describes what is wrong with the configuration.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("repository configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("repository configuration: %s", e.Reason)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ProvisioningError indicates container creation was requested during
// initialization but failed. Fatal at initialization.
type ProvisioningError struct {
	// Bucket is the container that could not be provisioned.
	Bucket string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ProvisioningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provisioning bucket %s: %v", e.Bucket, e.Err)
	}
	return fmt.Sprintf("provisioning bucket %s failed", e.Bucket)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ProvisioningError) Unwrap() error {
	return e.Err
}
