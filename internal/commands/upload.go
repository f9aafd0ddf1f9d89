package commands

import (
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dropzone/dropzone/internal/clock"
	"github.com/dropzone/dropzone/internal/files"
	"github.com/dropzone/dropzone/internal/preview"
	"github.com/dropzone/dropzone/internal/ui"
	"github.com/dropzone/dropzone/internal/ui/commands/uploads"
	"github.com/dropzone/dropzone/internal/upload"
	"github.com/dropzone/dropzone/pkg/config"
	"github.com/spf13/cobra"
)

// eventBuffer absorbs bursts of progress events while the view renders.
const eventBuffer = 256

func NewUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <path|glob>...",
		Short: "Upload files",
		Long: `Upload files, directories or glob patterns.

Every file is checked against the size limit and the allowed types before
its upload starts. Rejected files are reported and skipped. Uploads run
concurrently and can be paused, resumed or cancelled from the keyboard.

Examples:
  dropzone upload photo.png notes.txt
  dropzone upload 'assets/**/*.jpg'
  dropzone upload ./exports --exclude '*.tmp'
  dropzone upload big.mov --fail-rate 0.5   # Make failures likely`,
		Args: cobra.MinimumNArgs(1),
		RunE: runUpload,
	}

	cmd.Flags().Bool("no-preview", false, "Skip generating image previews")
	cmd.Flags().StringSlice("exclude", nil, "Glob patterns of files to leave out")
	addStoreFlags(cmd)

	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	displayOpts, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return ui.NewInternalError(fmt.Errorf("failed to get display options: %w", err))
	}

	cfg, err := config.GetConfigFromContext(cmd)
	if err != nil {
		return ui.NewConfigurationError(fmt.Errorf("failed to get config: %w", err))
	}

	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	noPreview, _ := cmd.Flags().GetBool("no-preview")

	found, err := files.Collect(args, exclude)
	if err != nil {
		return ui.NewFileSystemError(err)
	}
	slog.Info("Collected files", "count", len(found))

	clk := clock.Real{}
	store, err := newStore(cmd, cfg, clk)
	if err != nil {
		return ui.NewConfigurationError(err)
	}

	events := make(chan upload.Event, eventBuffer)
	done := make(chan struct{})

	orchConf := upload.Config{
		Backend:         store,
		Rules:           uploadRules(cfg),
		Clock:           clk,
		CompletionDelay: cfg.CompletionDelay,
		Listener: func(ev upload.Event) {
			select {
			case events <- ev:
			case <-done:
			}
		},
	}
	if !noPreview {
		orchConf.Previewer = preview.Thumbnailer{Width: cfg.PreviewWidth}
	}

	orch := upload.New(cmd.Context(), orchConf)
	defer func() {
		if err := orch.Close(); err != nil {
			slog.Warn("Failed to stop uploads", "error", err)
		}
	}()
	// Runs before Close so a listener blocked on a full buffer is released.
	defer close(done)

	model := uploads.NewUploadView(cmd.Context(), uploads.UploadConfig{
		DisplayConfig: displayOpts,
		Controller:    orch,
		Files:         found,
		Events:        events,
		Clock:         clk,
		ShowPreviews:  !noPreview,
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

	m, ok := finalModel.(*uploads.UploadView)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}

	// Failed or rejected uploads still exit non-zero; the view has already
	// described them.
	var uiErr *ui.UIError
	if errors.As(m.Error(), &uiErr) {
		return uiErr
	}
	return m.Error()
}
