package config

import (
	"fmt"

	"github.com/dropzone/dropzone/pkg/config"
	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.dropzone/config.yaml

Examples:
  dropzone config set failure-rate 0.2
  dropzone config set allowed-types image/,application/pdf
  dropzone config set seed-file ~/uploads.toml`,
		Args: cobra.ExactArgs(2),
		RunE: runSet,
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	key := args[0]
	value := args[1]
	normalizedKey := config.NormalizeKey(key)

	if !config.IsValidUserFacingKey(normalizedKey) {
		//nolint:errcheck // Writing to stderr, error not actionable
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: '%s' is not a recognized configuration key\n\n", key)
		//nolint:errcheck // Writing to stderr, error not actionable
		fmt.Fprintf(cmd.ErrOrStderr(), "Valid configuration keys:\n")

		for _, validKey := range config.GetUserFacingKeys() {
			desc := config.GetConfigKeyDescription(config.NormalizeKey(validKey))
			//nolint:errcheck // Writing to stderr, error not actionable
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s - %s\n", validKey, desc)
		}
		return fmt.Errorf("invalid configuration key")
	}

	typedValue, err := config.Set(normalizedKey, value)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %v\n", key, typedValue) //nolint:errcheck // Writing to stdout
	return nil
}
