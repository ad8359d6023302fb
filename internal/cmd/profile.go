package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect storage profiles",
}

var profileValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective storage profile",
	Long: `Load the profile file, apply environment overrides and report whether
the result is usable. Does not contact the provider.`,
	RunE: runProfileValidate,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective storage profile",
	Long:  `Print the merged profile as YAML. Secrets are redacted.`,
	RunE:  runProfileShow,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileValidateCmd)
	profileCmd.AddCommand(profileShowCmd)
}

func runProfileValidate(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	fmt.Printf("Profile %s is valid (backend %s, bucket %s)\n",
		p.Name, p.Storage.Backend, p.Storage.BucketName)
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	redacted := p.Redacted()
	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return fmt.Errorf("failed to render profile: %w", err)
	}

	fmt.Print(string(data))
	return nil
}
