package commands

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dropzone/dropzone/internal/clock"
	"github.com/dropzone/dropzone/internal/ui"
	"github.com/dropzone/dropzone/internal/ui/commands/uploads"
	"github.com/dropzone/dropzone/pkg/config"
	"github.com/spf13/cobra"
)

func NewRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List uploads from the last 24 hours",
		Long: `List uploads completed in the last 24 hours, newest first.

Example:
  dropzone recent
  dropzone recent --seed-file ~/uploads.toml`,
		Args: cobra.NoArgs,
		RunE: runRecent,
	}

	addStoreFlags(cmd)
	return cmd
}

func runRecent(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	displayOpts, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to get display options: %w", err)
	}

	cfg, err := config.GetConfigFromContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}

	clk := clock.Real{}
	store, err := newStore(cmd, cfg, clk)
	if err != nil {
		return ui.NewConfigurationError(err)
	}

	model := uploads.NewRecentView(cmd.Context(), uploads.RecentConfig{
		DisplayConfig: displayOpts,
		Store:         store,
		Clock:         clk,
	})

	var programOpts []tea.ProgramOption
	if !displayOpts.IsInteractive {
		programOpts = append(programOpts,
			tea.WithoutRenderer(),
			tea.WithInput(nil),
		)
	}

	p := tea.NewProgram(model, programOpts...)
	doneCh := ui.SetupSignalHandling(p, 0)
	defer close(doneCh)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("ui error: %w", err)
	}

	m, ok := finalModel.(*uploads.RecentView)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}

	var uiErr *ui.UIError
	if errors.As(m.Error(), &uiErr) && !uiErr.SilentExit {
		return uiErr
	}
	return nil
}
