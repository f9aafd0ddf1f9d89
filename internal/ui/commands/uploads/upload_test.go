package uploads

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dropzone/dropzone/internal/clock"
	"github.com/dropzone/dropzone/internal/ui"
	uitesting "github.com/dropzone/dropzone/internal/ui/testing"
	"github.com/dropzone/dropzone/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:generate go test -v -run TestUploadView -update

type fakeController struct {
	mu         sync.Mutex
	submission upload.Submission
	submitErr  error
	actionErr  error
	paused     []string
	resumed    []string
	cancelled  []string
}

func (f *fakeController) Submit(context.Context, []upload.File) (upload.Submission, error) {
	return f.submission, f.submitErr
}

func (f *fakeController) record(list *[]string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	*list = append(*list, id)
	return f.actionErr
}

func (f *fakeController) Pause(_ context.Context, id string) error {
	return f.record(&f.paused, id)
}

func (f *fakeController) Resume(_ context.Context, id string) error {
	return f.record(&f.resumed, id)
}

func (f *fakeController) Cancel(_ context.Context, id string) error {
	return f.record(&f.cancelled, id)
}

var (
	photo = upload.Item{ID: "a", Name: "photo.png", Size: 200, MIMEType: "image/png", Status: upload.StatusQueued}
	notes = upload.Item{ID: "b", Name: "notes.txt", Size: 200, MIMEType: "text/plain", Status: upload.StatusQueued}
)

func with(it upload.Item, status upload.Status, progress float64) upload.Item {
	it.Status = status
	it.Progress = progress
	return it
}

func closedEvents() <-chan upload.Event {
	ch := make(chan upload.Event)
	close(ch)
	return ch
}

func newTestUploadView(t *testing.T, ctrl *fakeController, interactive bool) (*UploadView, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	view := NewUploadView(t.Context(), UploadConfig{
		DisplayConfig: ui.DisplayConfig{
			IsInteractive:    interactive,
			DisableAnimation: !interactive,
		},
		Controller: ctrl,
		Files: []upload.File{
			{Name: "photo.png", Size: 200, MIMEType: "image/png"},
			{Name: "notes.txt", Size: 200, MIMEType: "text/plain"},
		},
		Events: closedEvents(),
		Clock:  clk,
	})
	return view, clk
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUploadView(t *testing.T) {
	t.Run("success - interactive mode", func(t *testing.T) {
		ctrl := &fakeController{submission: upload.Submission{Accepted: []upload.Item{photo, notes}}}
		view, clk := newTestUploadView(t, ctrl, true)
		uploadedAt := clk.Now()

		done := with(photo, upload.StatusCompleted, 100)
		done.UploadedAt = &uploadedAt
		done2 := with(notes, upload.StatusCompleted, 100)
		done2.UploadedAt = &uploadedAt

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*UploadView]{
				Name: "submitted",
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, UploadStateUploading, m.state)
					assert.NoError(t, m.Error())
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "first_item",
				Msg:  eventMsg{upload.ItemUpdated{Item: with(photo, upload.StatusUploading, 50)}},
				ModelAssert: func(t *testing.T, m *UploadView) {
					require.Len(t, m.items, 1)
					assert.Equal(t, 50.0, m.items[0].Progress)
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "second_item",
				Msg:  eventMsg{upload.ItemUpdated{Item: with(notes, upload.StatusUploading, 0)}},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "session",
				Msg: eventMsg{upload.SessionUpdated{Progress: upload.Progress{
					TotalFiles:             2,
					TotalBytes:             400,
					UploadedBytes:          100,
					Percent:                25,
					Rate:                   0.05,
					EstimatedTimeRemaining: 6 * time.Second,
				}}},
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "Uploading 2 files")
					uitesting.AssertContains(t, view, "photo.png")
					uitesting.AssertContains(t, view, "notes.txt")
					uitesting.AssertContains(t, view, "100 Bytes / 400 Bytes")
					uitesting.AssertContains(t, view, "50 Bytes/s")
					uitesting.AssertContains(t, view, "ETA 6s")
					uitesting.AssertContains(t, view, "p pause")
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "select_second",
				Msg:  tea.KeyMsg{Type: tea.KeyDown},
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, 1, m.selected)
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "pause_selected",
				Msg:  key("p"),
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, []string{"b"}, ctrl.paused)
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "notice",
				Msg:  eventMsg{upload.Notice{Message: "Upload paused"}},
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "Upload paused")
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "batch_completed",
				Msg: eventMsg{upload.BatchCompleted{
					Completed: []upload.Item{done, done2},
					Recent:    []upload.Item{done, done2},
				}},
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "Successfully uploaded 2 files!")
					uitesting.AssertContains(t, view, "Recent uploads (last 24 hours)")
					uitesting.AssertContains(t, view, "just now")
					uitesting.AssertNotContains(t, view, "p pause")
				},
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, UploadStateDone, m.state)
					assert.NoError(t, m.Error())
				},
			}).
			Run(t)
	})

	t.Run("partial failure reports a transfer error", func(t *testing.T) {
		ctrl := &fakeController{submission: upload.Submission{Accepted: []upload.Item{photo, notes}}}
		view, _ := newTestUploadView(t, ctrl, true)

		failed := with(notes, upload.StatusError, 30)
		failed.Error = "upload failed due to network error"

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*UploadView]{
				Name: "failed_item",
				Msg:  eventMsg{upload.ItemUpdated{Item: failed}},
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "Error")
					uitesting.AssertContains(t, view, "network error")
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "failure_notice",
				Msg:  eventMsg{upload.UploadFailed{Item: failed, Err: errors.New(failed.Error)}},
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "Failed to upload notes.txt")
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "batch_completed",
				Msg:  eventMsg{upload.BatchCompleted{Completed: []upload.Item{with(photo, upload.StatusCompleted, 100)}}},
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "Successfully uploaded 1 file!")
					uitesting.AssertContains(t, view, "1 upload failed")
				},
				ModelAssert: func(t *testing.T, m *UploadView) {
					var uiErr *ui.UIError
					require.ErrorAs(t, m.Error(), &uiErr)
					assert.Equal(t, ui.ErrorTypeTransfer, uiErr.Type)
					assert.True(t, uiErr.SilentExit)
				},
			}).
			Run(t)
	})

	t.Run("every file rejected", func(t *testing.T) {
		ctrl := &fakeController{}
		view, _ := newTestUploadView(t, ctrl, true)

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*UploadView]{
				Name: "rejected",
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, UploadStateFailed, m.state)
					assert.ErrorIs(t, m.Error(), upload.ErrNoFilesAccepted)
				},
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "no files were accepted for upload")
				},
			}).
			Run(t)
	})

	t.Run("cancelling the last item ends the view", func(t *testing.T) {
		ctrl := &fakeController{submission: upload.Submission{Accepted: []upload.Item{photo}}}
		view, _ := newTestUploadView(t, ctrl, true)

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*UploadView]{
				Name: "uploading",
				Msg:  eventMsg{upload.ItemUpdated{Item: with(photo, upload.StatusUploading, 10)}},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "cancel_selected",
				Msg:  key("x"),
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, []string{"a"}, ctrl.cancelled)
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "removed",
				Msg:  eventMsg{upload.ItemRemoved{ID: "a", Name: "photo.png"}},
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Empty(t, m.items)
					assert.Equal(t, UploadStateUploading, m.state)
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "session_reset",
				Msg:  eventMsg{upload.SessionUpdated{}},
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, UploadStateCancelled, m.state)
					var uiErr *ui.UIError
					require.ErrorAs(t, m.Error(), &uiErr)
					assert.Equal(t, ui.ErrorTypeUserCancelled, uiErr.Type)
				},
			}).
			Run(t)
	})

	t.Run("rejected action shows a notice", func(t *testing.T) {
		ctrl := &fakeController{
			submission: upload.Submission{Accepted: []upload.Item{photo}},
			actionErr:  upload.ErrInvalidTransition,
		}
		view, _ := newTestUploadView(t, ctrl, true)

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*UploadView]{
				Name: "queued",
				Msg:  eventMsg{upload.ItemUpdated{Item: photo}},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "resume_queued",
				Msg:  key("r"),
				ViewAssert: func(t *testing.T, view string) {
					uitesting.AssertContains(t, view, "not available for this file")
				},
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, []string{"a"}, ctrl.resumed)
				},
			}).
			Run(t)
	})

	t.Run("signal cancels the session", func(t *testing.T) {
		ctrl := &fakeController{submission: upload.Submission{Accepted: []upload.Item{photo}}}
		view, _ := newTestUploadView(t, ctrl, true)

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*UploadView]{
				Name:       "signal",
				Msg:        ui.SignalCancelMsg{},
				ViewGolden: "upload_cancelled",
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, UploadStateCancelled, m.state)
					var uiErr *ui.UIError
					require.ErrorAs(t, m.Error(), &uiErr)
					assert.True(t, uiErr.SilentExit)
				},
			}).
			Run(t)
	})

	t.Run("submit error", func(t *testing.T) {
		ctrl := &fakeController{submitErr: upload.ErrClosed}
		view, _ := newTestUploadView(t, ctrl, true)

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*UploadView]{
				Name: "error",
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, UploadStateFailed, m.state)
					assert.ErrorIs(t, m.Error(), upload.ErrClosed)
				},
			}).
			Run(t)
	})

	t.Run("simple mode", func(t *testing.T) {
		ctrl := &fakeController{submission: upload.Submission{Accepted: []upload.Item{photo}}}
		view, _ := newTestUploadView(t, ctrl, false)

		uitesting.NewTestHarness(t, view).
			Step(uitesting.TestStep[*UploadView]{
				Name: "keys_ignored",
				Msg:  key("p"),
				ViewAssert: func(t *testing.T, view string) {
					assert.Empty(t, view)
				},
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Empty(t, ctrl.paused)
				},
			}).
			Step(uitesting.TestStep[*UploadView]{
				Name: "completed",
				Msg:  eventMsg{upload.BatchCompleted{Completed: []upload.Item{with(photo, upload.StatusCompleted, 100)}}},
				ModelAssert: func(t *testing.T, m *UploadView) {
					assert.Equal(t, UploadStateDone, m.state)
				},
			}).
			Run(t)
	})
}
