package config

import (
	"fmt"

	"github.com/dropzone/dropzone/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration",
		Long: `List all configuration keys and values from ~/.dropzone/config.yaml,
including defaults for keys that are not set.

Example:
  dropzone config list`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	found := false
	for _, key := range config.GetUserFacingKeys() {
		normalized := config.NormalizeKey(key)
		if !viper.IsSet(normalized) {
			continue
		}
		found = true
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", key, viper.Get(normalized)) //nolint:errcheck // Writing to stdout
	}

	if !found {
		fmt.Fprintln(cmd.OutOrStdout(), "No configuration found") //nolint:errcheck // Writing to stdout
	}
	return nil
}
