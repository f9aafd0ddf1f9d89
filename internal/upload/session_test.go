package upload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	session := Session{TotalFiles: 2, TotalBytes: 400, StartedAt: start}
	items := []Item{
		{Size: 100, Status: StatusCompleted, Progress: 100},
		{Size: 300, Status: StatusUploading, Progress: 50},
	}

	t.Run("mixed batch", func(t *testing.T) {
		p := Aggregate(session, items, start.Add(2*time.Second))

		assert.Equal(t, int64(250), p.UploadedBytes)
		assert.InDelta(t, 62.5, p.Percent, 0.0001)
		assert.Equal(t, 2*time.Second, p.Elapsed)
		assert.InDelta(t, 0.125, p.Rate, 0.0001)
		assert.InDelta(t, 125.0, p.BytesPerSecond(), 0.0001)
		assert.Equal(t, 1200*time.Millisecond, p.EstimatedTimeRemaining)
	})

	t.Run("no elapsed time", func(t *testing.T) {
		p := Aggregate(session, items, start)

		assert.Zero(t, p.Rate)
		assert.Zero(t, p.EstimatedTimeRemaining)
	})

	t.Run("clock behind start", func(t *testing.T) {
		p := Aggregate(session, items, start.Add(-time.Minute))

		assert.Zero(t, p.Elapsed)
		assert.GreaterOrEqual(t, p.EstimatedTimeRemaining, time.Duration(0))
	})

	t.Run("inactive session", func(t *testing.T) {
		assert.Equal(t, Progress{}, Aggregate(Session{}, nil, start))
	})
}

func TestAggregate_UploadedNeverExceedsTotal(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	session := Session{TotalFiles: 1, TotalBytes: 100, StartedAt: start}
	items := []Item{{Size: 500, Status: StatusCompleted}}

	p := Aggregate(session, items, start.Add(time.Second))
	assert.Equal(t, int64(100), p.UploadedBytes)
	assert.InDelta(t, 100.0, p.Percent, 0.0001)
	assert.Zero(t, p.EstimatedTimeRemaining)
}

func TestUploadedBytes(t *testing.T) {
	items := []Item{
		{Size: 100, Status: StatusCompleted},
		{Size: 200, Status: StatusUploading, Progress: 25},
		{Size: 400, Status: StatusPaused, Progress: 90},
		{Size: 800, Status: StatusError, Progress: 70},
		{Size: 50, Status: StatusQueued},
	}
	assert.Equal(t, int64(150), UploadedBytes(items))
}

func TestUploadedBytes_KeepsPartialBytes(t *testing.T) {
	var items []Item
	for range 10 {
		items = append(items, Item{Size: 3, Status: StatusUploading, Progress: 50})
	}
	assert.Equal(t, int64(15), UploadedBytes(items))
}
