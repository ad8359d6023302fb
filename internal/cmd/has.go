package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hasCmd = &cobra.Command{
	Use:   "has <identifier>",
	Short: "Check whether an identifier is stored",
	Long: `Probe the repository for an identifier using a metadata-only request.
Prints "true" or "false"; exits non-zero only on errors.`,
	Args: cobra.ExactArgs(1),
	RunE: runHas,
}

func init() {
	rootCmd.AddCommand(hasCmd)
}

func runHas(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	backend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	exists, err := backend.Has(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println(exists)
	return nil
}
