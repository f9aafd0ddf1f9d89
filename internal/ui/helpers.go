package ui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
)

const (
	// MAX_TABLE_HEIGHT defines the max number of rows viewable in one render.
	// Not including header. Tables longer than this should scroll.
	MAX_TABLE_HEIGHT = 15

	// PROGRESS_BAR_WIDTH is the width of the per-file and session bars.
	PROGRESS_BAR_WIDTH = 30
)

func TableBiggerThanView(t table.Model) bool {
	return len(t.Rows()) > MAX_TABLE_HEIGHT
}

// NewProgressBar returns a static bar; render it with ViewAs.
func NewProgressBar() progress.Model {
	return progress.New(
		progress.WithGradient(ProgressStartColor, ProgressEndColor),
		progress.WithWidth(PROGRESS_BAR_WIDTH),
		progress.WithoutPercentage(),
	)
}
