package upload

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusQueued, StatusUploading, true},
		{StatusQueued, StatusCancelled, true},
		{StatusQueued, StatusPaused, false},
		{StatusUploading, StatusPaused, true},
		{StatusUploading, StatusCompleted, true},
		{StatusUploading, StatusError, true},
		{StatusUploading, StatusCancelled, true},
		{StatusPaused, StatusUploading, true},
		{StatusPaused, StatusCancelled, true},
		{StatusPaused, StatusCompleted, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusUploading, false},
		{StatusError, StatusUploading, false},
		{StatusError, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestItem_Lifecycle(t *testing.T) {
	it := &Item{Name: "report.pdf", Status: StatusQueued}

	require.NoError(t, it.Start())
	assert.Equal(t, StatusUploading, it.Status)

	assert.True(t, it.Advance(35))
	require.NoError(t, it.Pause())
	assert.Equal(t, StatusPaused, it.Status)
	assert.False(t, it.Advance(50), "paused items ignore progress")
	assert.Equal(t, float64(35), it.Progress)

	require.NoError(t, it.Resume())
	assert.Equal(t, StatusUploading, it.Status)
	assert.Equal(t, float64(0), it.Progress)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, it.Complete(at))
	assert.Equal(t, StatusCompleted, it.Status)
	assert.Equal(t, float64(100), it.Progress)
	require.NotNil(t, it.UploadedAt)
	assert.Equal(t, at, *it.UploadedAt)

	assert.ErrorIs(t, it.Cancel(), ErrInvalidTransition)
	assert.ErrorIs(t, it.Pause(), ErrInvalidTransition)
}

func TestItem_Advance(t *testing.T) {
	it := &Item{Status: StatusUploading}

	assert.True(t, it.Advance(10))
	assert.False(t, it.Advance(5))
	assert.Equal(t, float64(10), it.Progress)

	assert.True(t, it.Advance(250))
	assert.Equal(t, float64(100), it.Progress)

	queued := &Item{Status: StatusQueued}
	assert.False(t, queued.Advance(10))
	assert.Zero(t, queued.Progress)
}

func TestItem_Fail(t *testing.T) {
	t.Run("keeps the error message", func(t *testing.T) {
		it := &Item{Status: StatusUploading, Progress: 40}
		require.NoError(t, it.Fail(errors.New("upload failed due to network error")))
		assert.Equal(t, StatusError, it.Status)
		assert.Equal(t, "upload failed due to network error", it.Error)
	})

	t.Run("falls back to a generic message", func(t *testing.T) {
		it := &Item{Status: StatusUploading}
		require.NoError(t, it.Fail(nil))
		assert.Equal(t, "upload failed", it.Error)
	})

	t.Run("only from uploading", func(t *testing.T) {
		it := &Item{Status: StatusPaused}
		assert.ErrorIs(t, it.Fail(nil), ErrInvalidTransition)
		assert.Empty(t, it.Error)
	})
}

func TestItem_CompleteClearsError(t *testing.T) {
	it := &Item{Status: StatusUploading, Error: "stale"}
	require.NoError(t, it.Complete(time.Now()))
	assert.Empty(t, it.Error)
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusError.IsTerminal())
	assert.False(t, StatusQueued.IsTerminal())
	assert.False(t, StatusUploading.IsTerminal())
	assert.False(t, StatusPaused.IsTerminal())
	assert.False(t, StatusCancelled.IsTerminal())
}
