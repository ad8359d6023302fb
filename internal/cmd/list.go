package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored identifiers",
	Long: `Enumerate every identifier in the repository, one per line, paging
through the bucket until exhaustion. Objects in the bucket that were not
written by the repository are skipped.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	backend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	return backend.IterateIdentifiers(ctx, func(identifier string) error {
		_, err := fmt.Println(identifier)
		return err
	})
}
