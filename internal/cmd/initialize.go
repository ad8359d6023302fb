package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sphuber/aiida-s3/internal/observability"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the repository bucket",
	Long: `Validate connectivity and credentials and ensure the configured bucket
exists, creating it when the profile allows. Safe to run repeatedly.

Example:
  aiida-s3 init --profile storage.yaml`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	backend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	if err := backend.Initialize(ctx); err != nil {
		observability.CLILogger.Error("Initialization failed",
			zap.String("repository", backend.UUID()),
			zap.Error(err))
		return err
	}

	fmt.Printf("Repository %s initialized\n", backend.UUID())
	return nil
}
