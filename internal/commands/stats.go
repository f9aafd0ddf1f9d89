package commands

import (
	"fmt"

	"github.com/dropzone/dropzone/internal/clock"
	"github.com/dropzone/dropzone/internal/ui"
	"github.com/dropzone/dropzone/internal/upload"
	"github.com/dropzone/dropzone/pkg/config"
	"github.com/dropzone/dropzone/pkg/format"
	"github.com/spf13/cobra"
)

func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show upload statistics",
		Long: `Show totals, success rate and average size of all upload records.

Example:
  dropzone stats`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}

	addStoreFlags(cmd)
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	displayOpts, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return ui.NewInternalError(fmt.Errorf("failed to get display options: %w", err))
	}

	cfg, err := config.GetConfigFromContext(cmd)
	if err != nil {
		return ui.NewConfigurationError(fmt.Errorf("failed to get config: %w", err))
	}

	store, err := newStore(cmd, cfg, clock.Real{})
	if err != nil {
		return ui.NewConfigurationError(err)
	}

	var spinner *ui.SimpleSpinner
	if !displayOpts.SimpleOutput() {
		spinner = ui.NewSimpleSpinner("Loading statistics...")
		spinner.Start()
	}

	stats, err := store.Stats(cmd.Context())
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return ui.NewTransferError(err)
	}

	if displayOpts.SimpleOutput() {
		fmt.Print(formatStatsPlain(stats))
		return nil
	}

	fmt.Print(ui.RenderPanel("Upload statistics", ui.RenderDetailTable(statsSections(stats))))
	return nil
}

func statsSections(s upload.Stats) []ui.TableSection {
	return []ui.TableSection{
		{
			Header: "Totals",
			Rows: []ui.TableRow{
				{Label: "Uploads", Value: fmt.Sprintf("%d", s.TotalUploads)},
				{Label: "Total size", Value: format.ByteSize(s.TotalSize)},
			},
		},
		{
			Header: "Quality",
			Rows: []ui.TableRow{
				{Label: "Success rate", Value: fmt.Sprintf("%.1f%%", s.SuccessRate)},
				{Label: "Average size", Value: format.ByteSize(int64(s.AverageSize))},
			},
		},
	}
}

func formatStatsPlain(s upload.Stats) string {
	return fmt.Sprintf("uploads: %d\ntotal_size: %s\nsuccess_rate: %.1f%%\naverage_size: %s\n",
		s.TotalUploads,
		format.ByteSize(s.TotalSize),
		s.SuccessRate,
		format.ByteSize(int64(s.AverageSize)),
	)
}
