package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <identifier>",
	Short: "Read content from the repository",
	Long: `Stream the content stored under an identifier to stdout, or to a file
with --output.

Example:
  aiida-s3 get --profile storage.yaml 4ac1f6a5-58c8-4d4b-9f79-3d6f29f2a05b
  aiida-s3 get --profile storage.yaml <identifier> -o data.bin`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var getOutput string

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "Write content to file instead of stdout")
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	backend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	rc, _, err := backend.Open(ctx, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	var out io.Writer = os.Stdout
	if getOutput != "" {
		f, err := os.Create(getOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", getOutput, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}
