package upload

import (
	"fmt"
	"time"
)

// allowed lists the transitions of the per-file state machine. Completed and
// error are terminal and have no entry.
var allowed = map[Status][]Status{
	StatusQueued:    {StatusUploading, StatusCancelled},
	StatusUploading: {StatusPaused, StatusCompleted, StatusError, StatusCancelled},
	StatusPaused:    {StatusUploading, StatusCancelled},
}

// CanTransition reports whether an item in status from may move to to.
func CanTransition(from, to Status) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (it *Item) transition(to Status) error {
	if !CanTransition(it.Status, to) {
		return fmt.Errorf("%w: %s -> %s (%s)", ErrInvalidTransition, it.Status, to, it.Name)
	}
	it.Status = to
	return nil
}

// Start moves a queued item to uploading.
func (it *Item) Start() error {
	if it.Status != StatusQueued {
		return fmt.Errorf("%w: %s -> %s (%s)", ErrInvalidTransition, it.Status, StatusUploading, it.Name)
	}
	return it.transition(StatusUploading)
}

// Advance records a progress report. Reports are ignored unless the item is
// uploading, and progress never moves backwards. It returns whether the
// item changed.
func (it *Item) Advance(percent float64) bool {
	if it.Status != StatusUploading {
		return false
	}
	percent = min(max(percent, 0), 100)
	if percent <= it.Progress {
		return false
	}
	it.Progress = percent
	return true
}

// Pause only changes the displayed status; the caller decides what happens
// to the in-flight attempt.
func (it *Item) Pause() error {
	return it.transition(StatusPaused)
}

// Resume restarts the item from zero. The backend has no partial resume.
func (it *Item) Resume() error {
	if it.Status != StatusPaused {
		return fmt.Errorf("%w: %s -> %s (%s)", ErrInvalidTransition, it.Status, StatusUploading, it.Name)
	}
	if err := it.transition(StatusUploading); err != nil {
		return err
	}
	it.Progress = 0
	return nil
}

// Complete marks the item uploaded at the given time.
func (it *Item) Complete(at time.Time) error {
	if err := it.transition(StatusCompleted); err != nil {
		return err
	}
	it.Progress = 100
	it.Error = ""
	it.UploadedAt = &at
	return nil
}

// Fail records err as the item's error message.
func (it *Item) Fail(err error) error {
	if transErr := it.transition(StatusError); transErr != nil {
		return transErr
	}
	msg := ErrUploadFailed.Error()
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	it.Error = msg
	return nil
}

// Cancel marks the item cancelled. Cancelled items are removed from the
// active set by the orchestrator right after.
func (it *Item) Cancel() error {
	return it.transition(StatusCancelled)
}
