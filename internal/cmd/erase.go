package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Delete the bucket and all its contents",
	Long: `Enumerate and delete every object in the bucket, then delete the bucket
itself. Requires --force. Best-effort under concurrent writers: objects
written while the erase runs may survive.`,
	RunE: runErase,
}

var eraseForce bool

func init() {
	rootCmd.AddCommand(eraseCmd)

	eraseCmd.Flags().BoolVar(&eraseForce, "force", false, "Confirm destruction of the bucket and all objects")
}

func runErase(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !eraseForce {
		return fmt.Errorf("erase destroys the bucket and all objects; re-run with --force")
	}

	backend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	if err := backend.Erase(ctx); err != nil {
		return err
	}

	fmt.Printf("Repository %s erased\n", backend.UUID())
	return nil
}
