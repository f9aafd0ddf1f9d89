package config

import (
	"fmt"

	"github.com/dropzone/dropzone/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value from ~/.dropzone/config.yaml

Examples:
  dropzone config get failure-rate
  dropzone config get max-file-size`,
		Args: cobra.ExactArgs(1),
		RunE: runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	key := args[0]
	normalizedKey := config.NormalizeKey(key)

	if !config.IsValidUserFacingKey(normalizedKey) {
		return fmt.Errorf("'%s' is not a recognized configuration key. Run 'dropzone config set --help' for valid keys", key)
	}

	if !viper.IsSet(normalizedKey) {
		return fmt.Errorf("configuration key '%s' not set", key)
	}

	fmt.Fprintln(cmd.OutOrStdout(), viper.Get(normalizedKey)) //nolint:errcheck // Writing to stdout
	return nil
}
