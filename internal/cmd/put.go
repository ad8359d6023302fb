package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sphuber/aiida-s3/pkg/repository"
)

var putCmd = &cobra.Command{
	Use:   "put [file]",
	Short: "Store file content in the repository",
	Long: `Store the content of a file (or stdin when no file is given) in the
repository. Without --key a fresh uuid4 identifier is generated; the
identifier is printed on success.

Example:
  aiida-s3 put --profile storage.yaml data.bin
  cat data.bin | aiida-s3 put --profile storage.yaml --key <identifier>`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPut,
}

var putKey string

func init() {
	rootCmd.AddCommand(putCmd)

	putCmd.Flags().StringVarP(&putKey, "key", "k", "", "Identifier to store under (default: generated uuid4)")
}

func runPut(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	identifier := putKey
	if identifier == "" {
		identifier = repository.NewIdentifier()
	}

	data, err := readPutInput(args)
	if err != nil {
		return err
	}

	backend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	if err := backend.PutBytes(ctx, identifier, data); err != nil {
		return err
	}

	fmt.Println(identifier)
	return nil
}

func readPutInput(args []string) ([]byte, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}
