// Package cmd implements the aiida-s3 command line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sphuber/aiida-s3/internal/observability"
	"github.com/sphuber/aiida-s3/pkg/profile"
	"github.com/sphuber/aiida-s3/pkg/repository"
)

var rootCmd = &cobra.Command{
	Use:   "aiida-s3",
	Short: "Object-store file repository for AiiDA profiles",
	Long: `aiida-s3 manages a content-addressable file repository stored in an
object-store container (AWS S3, any S3-compatible service, or Azure Blob
Storage).

Connection settings come from a storage profile (YAML or JSON), with
environment overrides using the AIIDA_S3_ prefix, e.g.
AIIDA_S3_STORAGE_BUCKET_NAME or AIIDA_S3_STORAGE_SECRET_ACCESS_KEY.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		observability.Configure(rootVerbose)
	},
}

var (
	rootProfilePath string
	rootVerbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootProfilePath, "profile", "p", "", "Path to storage profile (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	return rootCmd.ExecuteContext(ctx)
}

// storageKeys are the profile settings that can come from the environment.
var storageKeys = []string{
	"storage.backend",
	"storage.endpoint_url",
	"storage.region",
	"storage.bucket_name",
	"storage.key_prefix",
	"storage.access_key_id",
	"storage.secret_access_key",
	"storage.connection_string",
	"storage.force_path_style",
	"storage.warn_on_foreign_keys",
	"storage.max_keys",
	"storage.rate_limit",
}

// loadProfile merges the profile file (when given) with AIIDA_S3_* environment
// overrides and returns the validated record.
func loadProfile() (*profile.Profile, error) {
	v := viper.New()
	v.SetEnvPrefix("AIIDA_S3")
	for _, key := range storageKeys {
		envKey := "AIIDA_S3_" + envName(key)
		if err := v.BindEnv(key, envKey); err != nil {
			return nil, err
		}
	}

	if rootProfilePath != "" {
		v.SetConfigFile(rootProfilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", rootProfilePath, err)
		}
	}

	p, err := profile.FromMap(v.AllSettings())
	if err != nil {
		return nil, err
	}

	observability.CLILogger.Debug("Loaded storage profile",
		zap.String("profile", p.Name),
		zap.String("backend", p.Storage.Backend),
		zap.String("bucket", p.Storage.BucketName))

	return p, nil
}

// envName converts "storage.bucket_name" to "STORAGE_BUCKET_NAME".
func envName(key string) string {
	out := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == '.':
			c = '_'
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// openBackend constructs the repository backend from the effective profile.
// The caller must Close it.
func openBackend(ctx context.Context) (*repository.Backend, error) {
	p, err := loadProfile()
	if err != nil {
		return nil, err
	}
	return p.NewBackend(ctx, observability.CLILogger)
}
