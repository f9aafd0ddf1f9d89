package upload

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a single upload item.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusUploading Status = "uploading"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further automatic transition can happen.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Item is one file's upload record.
type Item struct {
	ID       string
	Name     string
	Size     int64
	MIMEType string
	Status   Status

	// Progress is a percentage in [0, 100].
	Progress float64

	// Preview is a data URL, only set for images.
	Preview string

	// Error is set iff Status is StatusError.
	Error string

	UploadedAt *time.Time
}

// Kind returns the display category for the item's MIME type.
func (it Item) Kind() string {
	return KindOf(it.MIMEType)
}

// File is a local file handed to the orchestrator for upload.
type File struct {
	Path     string
	Name     string
	Size     int64
	MIMEType string
}

// IsImage reports whether the file should get a preview.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.MIMEType, "image/")
}

// Request is what the orchestrator hands to the backend for one attempt.
type Request struct {
	ID       string
	Name     string
	Size     int64
	MIMEType string
	Path     string
}

// ProgressFunc receives the upload percentage of one attempt.
type ProgressFunc func(percent float64)

// Stats summarises the records held by a backend.
type Stats struct {
	TotalUploads int
	TotalSize    int64
	SuccessRate  float64
	AverageSize  float64
}

// KindOf maps a MIME type to a coarse file category used for labels.
func KindOf(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "Image"
	case strings.HasPrefix(mimeType, "video/"):
		return "Video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "Music"
	case mimeType == "application/pdf", strings.HasPrefix(mimeType, "text/"):
		return "FileText"
	case mimeType == "application/zip", strings.HasPrefix(mimeType, "application/x-rar"):
		return "Archive"
	default:
		return "File"
	}
}
