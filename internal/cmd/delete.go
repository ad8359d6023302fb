package cmd

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <identifier>",
	Short: "Delete an object from the repository",
	Long: `Remove the object stored under an identifier. Deleting an identifier
that is not stored succeeds silently.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	backend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	return backend.Delete(ctx, args[0])
}
