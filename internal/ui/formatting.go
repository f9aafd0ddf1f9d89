package ui

import (
	"fmt"
	"time"

	"github.com/dropzone/dropzone/internal/upload"
	"github.com/dropzone/dropzone/pkg/format"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// ColorizeStatus renders an upload status title-cased in its color.
func ColorizeStatus(status upload.Status) string {
	display := titleCaser.String(string(status))

	switch status {
	case upload.StatusCompleted:
		return GreenStyle.Render(display)
	case upload.StatusUploading:
		return CyanStyle.Render(display)
	case upload.StatusPaused:
		return YellowStyle.Render(display)
	case upload.StatusError:
		return RedStyle.Render(display)
	case upload.StatusQueued, upload.StatusCancelled:
		return PendingStyle.Render(display)
	default:
		return BoldStyle.Render(display)
	}
}

// FormatTimestamp formats a time.Time to a human-readable string
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// FormatAgo describes how long before now t was, e.g. "5 minutes ago".
func FormatAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	default:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

// FormatSize renders a byte count, e.g. "1.18 MB".
func FormatSize(bytes int64) string {
	return format.ByteSize(bytes)
}

// FormatFileCount renders "1 file" or "N files".
func FormatFileCount(n int) string {
	return plural(n, "file")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatError formats an error message with styling
// NOTE: Adds a new line manually. Use strings.TrimSpace if you want to strip it.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	// The trailing newline keeps bubbletea from overwriting the last line on exit.
	// https://github.com/charmbracelet/bubbletea/issues/304
	return ErrorStyle.Render(fmt.Sprintf("✗ Error: %s", err.Error())) + "\n"
}
