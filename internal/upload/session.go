package upload

import (
	"time"
)

// Session is the aggregate view over the batch of items currently active.
// TotalFiles and TotalBytes are fixed when files are submitted and do not
// shrink when an item is cancelled or fails.
type Session struct {
	TotalFiles int
	TotalBytes int64
	StartedAt  time.Time
}

// Active reports whether a batch has been submitted and not yet swept.
func (s Session) Active() bool {
	return s.TotalFiles > 0
}

// Progress is the computed session summary.
type Progress struct {
	TotalFiles    int
	TotalBytes    int64
	UploadedBytes int64
	Percent       float64
	Elapsed       time.Duration

	// Rate is in bytes per millisecond.
	Rate float64

	EstimatedTimeRemaining time.Duration
}

// BytesPerSecond returns the session transfer rate per second.
func (p Progress) BytesPerSecond() float64 {
	return p.Rate * 1000
}

// UploadedBytes sums the bytes accounted for by items: the full size of
// completed items, the reported fraction of uploading items and nothing for
// anything else.
// Partial bytes are summed as fractions and truncated once.
func UploadedBytes(items []Item) int64 {
	var total float64
	for _, it := range items {
		switch it.Status {
		case StatusCompleted:
			total += float64(it.Size)
		case StatusUploading:
			total += float64(it.Size) * it.Progress / 100
		}
	}
	return int64(total)
}

// Aggregate computes the session summary for items at time now. It is a pure
// function of its inputs.
func Aggregate(s Session, items []Item, now time.Time) Progress {
	p := Progress{
		TotalFiles: s.TotalFiles,
		TotalBytes: s.TotalBytes,
	}
	if !s.Active() {
		return p
	}

	p.UploadedBytes = min(UploadedBytes(items), s.TotalBytes)
	if s.TotalBytes > 0 {
		p.Percent = float64(p.UploadedBytes) / float64(s.TotalBytes) * 100
	}

	if !s.StartedAt.IsZero() {
		p.Elapsed = max(now.Sub(s.StartedAt), 0)
	}

	elapsedMs := float64(p.Elapsed) / float64(time.Millisecond)
	if elapsedMs > 0 {
		p.Rate = float64(p.UploadedBytes) / elapsedMs
	}

	if p.Rate > 0 {
		remainingMs := float64(s.TotalBytes-p.UploadedBytes) / p.Rate
		p.EstimatedTimeRemaining = max(time.Duration(remainingMs*float64(time.Millisecond)), 0)
	}

	return p
}
