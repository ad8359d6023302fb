package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sphuber/aiida-s3/pkg/repository"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show repository connectivity and contents",
	Long: `Check connectivity with the configured provider and report whether the
bucket exists and how many objects the repository manages.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	backend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	initialized, err := backend.IsInitialized(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Repository:  %s\n", backend.UUID())
	fmt.Printf("Key format:  %s\n", repository.KeyFormat)
	fmt.Printf("Initialized: %v\n", initialized)

	if !initialized {
		return nil
	}

	count, err := backend.Count(ctx)
	if err != nil {
		return err
	}
	stats := backend.ScanStats()

	fmt.Printf("Objects:     %d\n", count)
	fmt.Printf("List pages:  %d\n", stats.PagesFetched)
	return nil
}
