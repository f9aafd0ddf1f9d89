package uploads

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dropzone/dropzone/internal/backend"
	"github.com/dropzone/dropzone/internal/clock"
	"github.com/dropzone/dropzone/internal/ui"
	uitesting "github.com/dropzone/dropzone/internal/ui/testing"
	"github.com/dropzone/dropzone/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:generate go test -v -run TestRecentView -update

func newTestStore(t *testing.T, records ...upload.Item) (*backend.Memory, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := backend.NewMemory(backend.Options{
		Clock:   clk,
		Latency: &backend.Latency{},
		Records: records,
	})
	return store, clk
}

func ago(clk *clock.Fake, d time.Duration) *time.Time {
	at := clk.Now().Add(-d)
	return &at
}

type failingStore struct{}

func (failingStore) ListRecent(context.Context) ([]upload.Item, error) {
	return nil, errors.New("store unavailable")
}

func (failingStore) Delete(context.Context, string) error { return nil }

func TestRecentView(t *testing.T) {
	t.Run("success - interactive mode", func(t *testing.T) {
		clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		records := []upload.Item{
			{ID: "1", Name: "beach.jpg", Size: 2048, MIMEType: "image/jpeg", Status: upload.StatusCompleted, Progress: 100, UploadedAt: ago(clk, 5*time.Minute)},
			{ID: "2", Name: "report.pdf", Size: 1536, MIMEType: "application/pdf", Status: upload.StatusCompleted, Progress: 100, UploadedAt: ago(clk, 2*time.Hour)},
			{ID: "3", Name: "old.zip", Size: 10, MIMEType: "application/zip", Status: upload.StatusCompleted, Progress: 100, UploadedAt: ago(clk, 48*time.Hour)},
		}
		store := backend.NewMemory(backend.Options{Clock: clk, Latency: &backend.Latency{}, Records: records})

		view := NewRecentView(t.Context(), RecentConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: true},
			Store:         store,
			Clock:         clk,
		})

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*RecentView]{
				Name: "loaded",
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "Recent uploads")
					uitesting.AssertContains(t, view, "beach.jpg")
					uitesting.AssertContains(t, view, "5 minutes ago")
					uitesting.AssertContains(t, view, "report.pdf")
					uitesting.AssertContains(t, view, "1.5 KB")
					uitesting.AssertNotContains(t, view, "old.zip")
					uitesting.AssertContains(t, view, "d delete")
					uitesting.AssertNotContains(t, view, "j/k scroll")
				},
				ModelAssert: func(t *testing.T, m *RecentView) {
					assert.False(t, m.loading)
					assert.Len(t, m.items, 2)
					assert.NoError(t, m.Error())
				},
			}).
			Step(uitesting.TestStep[*RecentView]{
				Name: "move_down",
				Msg:  tea.KeyMsg{Type: tea.KeyDown},
				ModelAssert: func(t *testing.T, m *RecentView) {
					assert.Equal(t, 1, m.table.Cursor())
				},
			}).
			Step(uitesting.TestStep[*RecentView]{
				Name: "delete_selected",
				Msg:  key("d"),
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "Deleted report.pdf")
					uitesting.AssertNotContains(t, view, "1.5 KB")
				},
				ModelAssert: func(t *testing.T, m *RecentView) {
					require.Len(t, m.items, 1)
					assert.Equal(t, "beach.jpg", m.items[0].Name)
				},
			}).
			Run(t)
	})

	t.Run("long list scrolls", func(t *testing.T) {
		clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		var records []upload.Item
		for i := range ui.MAX_TABLE_HEIGHT + 5 {
			records = append(records, upload.Item{
				ID:         fmt.Sprintf("r%02d", i),
				Name:       fmt.Sprintf("scan-%02d.png", i),
				Size:       1024,
				MIMEType:   "image/png",
				Status:     upload.StatusCompleted,
				Progress:   100,
				UploadedAt: ago(clk, time.Duration(i+1)*time.Minute),
			})
		}
		store := backend.NewMemory(backend.Options{Clock: clk, Latency: &backend.Latency{}, Records: records})

		view := NewRecentView(t.Context(), RecentConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: true},
			Store:         store,
			Clock:         clk,
		})

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*RecentView]{
				Name: "loaded",
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "j/k scroll")
					uitesting.AssertContains(t, view, "d delete")
				},
				ModelAssert: func(t *testing.T, m *RecentView) {
					assert.True(t, ui.TableBiggerThanView(m.table))
				},
			}).
			Step(uitesting.TestStep[*RecentView]{
				Name: "scroll_to_bottom",
				Msg:  key("J"),
				ModelAssert: func(t *testing.T, m *RecentView) {
					assert.Equal(t, ui.MAX_TABLE_HEIGHT+4, m.table.Cursor())
				},
			}).
			Step(uitesting.TestStep[*RecentView]{
				Name: "scroll_to_top",
				Msg:  key("K"),
				ModelAssert: func(t *testing.T, m *RecentView) {
					assert.Equal(t, 0, m.table.Cursor())
				},
			}).
			Run(t)
	})

	t.Run("empty", func(t *testing.T) {
		store, clk := newTestStore(t)
		view := NewRecentView(t.Context(), RecentConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: true},
			Store:         store,
			Clock:         clk,
		})

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*RecentView]{
				Name:       "no_uploads",
				ViewGolden: "recent_empty",
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "No uploads in the last 24 hours")
				},
			}).
			Run(t)
	})

	t.Run("error", func(t *testing.T) {
		view := NewRecentView(t.Context(), RecentConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: true},
			Store:         failingStore{},
		})

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*RecentView]{
				Name: "failed",
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "store unavailable")
				},
				ModelAssert: func(t *testing.T, m *RecentView) {
					var uiErr *ui.UIError
					require.ErrorAs(t, m.Error(), &uiErr)
					assert.Equal(t, ui.ErrorTypeTransfer, uiErr.Type)
				},
			}).
			Run(t)
	})

	t.Run("simple mode", func(t *testing.T) {
		store, clk := newTestStore(t, upload.Item{
			ID: "1", Name: "beach.jpg", Size: 2048, MIMEType: "image/jpeg", Status: upload.StatusCompleted,
		})
		view := NewRecentView(t.Context(), RecentConfig{
			DisplayConfig: ui.DisplayConfig{IsInteractive: false},
			Store:         store,
			Clock:         clk,
		})

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*RecentView]{
				Name: "printed",
				ViewAssert: func(t *testing.T, view string) {
					assert.Empty(t, view)
				},
				ModelAssert: func(t *testing.T, m *RecentView) {
					assert.False(t, m.loading)
				},
			}).
			Run(t)
	})
}

func TestFormatRecentTable(t *testing.T) {
	_, clk := newTestStore(t)
	view := NewRecentView(t.Context(), RecentConfig{Clock: clk})
	view.items = []upload.Item{
		{ID: "1", Name: "beach.jpg", Size: 2048, MIMEType: "image/jpeg", Status: upload.StatusCompleted, UploadedAt: ago(clk, 3*time.Hour)},
		{ID: "2", Name: "draft.txt", Size: 0, MIMEType: "text/plain", Status: upload.StatusError},
	}

	out := view.formatRecentTable()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "beach.jpg")
	assert.Contains(t, out, "2 KB")
	assert.Contains(t, out, "3 hours ago")
	assert.Contains(t, out, "FileText")
	assert.Contains(t, out, "0 Bytes")
}
