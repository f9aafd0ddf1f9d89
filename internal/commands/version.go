package commands

import (
	"fmt"

	"github.com/dropzone/dropzone/internal/version"
	"github.com/spf13/cobra"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of dropzone",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion()) //nolint:errcheck // Writing to stdout
			if !version.IsRelease() {
				fmt.Fprintln(cmd.OutOrStdout(), "Development build") //nolint:errcheck // Writing to stdout
			}
		},
	}
}
