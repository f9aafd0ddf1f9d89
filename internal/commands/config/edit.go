package config

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/dropzone/dropzone/internal/ui"
	"github.com/dropzone/dropzone/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open config file in editor",
		Long: `Open the configuration file in your default editor.

The editor is $EDITOR, then $VISUAL, then 'vi' ('notepad' on Windows).
The file is checked after the editor exits, so an out-of-range value such
as failure-rate: 2 is reported right away instead of on the next upload.

Example:
  dropzone config edit
  EDITOR=nano dropzone config edit`,
		Args: cobra.NoArgs,
		RunE: runEdit,
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return ui.NewConfigurationError(fmt.Errorf("config file not found"))
	}

	editor := resolveEditor(os.Getenv, runtime.GOOS)
	cmd.Printf("Opening %s with %s...\n", configFile, editor)

	editorCmd := exec.CommandContext(cmd.Context(), editor, configFile) //nolint:gosec // Editor from user's environment variable
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return ui.NewFileSystemError(fmt.Errorf("failed to open editor: %w", err))
	}

	return checkEdited(cmd)
}

// checkEdited reloads the file the editor just wrote.
func checkEdited(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return ui.NewConfigurationError(err)
	}
	cmd.Printf("✓ Configuration valid (failure-rate %g, %d simulation steps)\n", cfg.FailureRate, cfg.SimulationSteps)
	return nil
}

func resolveEditor(getenv func(string) string, goos string) string {
	for _, key := range []string{"EDITOR", "VISUAL"} {
		if editor := getenv(key); editor != "" {
			return editor
		}
	}
	if goos == "windows" {
		return "notepad"
	}
	return "vi"
}
