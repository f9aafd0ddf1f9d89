package upload

import (
	"errors"
	"fmt"
)

var (
	ErrFileTooLarge      = errors.New("file too large")
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrNotFound          = errors.New("upload not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrClosed            = errors.New("orchestrator closed")
	ErrNoFilesAccepted   = errors.New("no files were accepted for upload")
	ErrUploadFailed      = errors.New("upload failed")
)

// ValidationError is returned for a file rejected before its upload starts.
type ValidationError struct {
	Name     string
	MIMEType string
	Reason   error
	msg      string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

func newTooLargeError(f File, maxSize int64, maxLabel string) *ValidationError {
	return &ValidationError{
		Name:     f.Name,
		MIMEType: f.MIMEType,
		Reason:   ErrFileTooLarge,
		msg:      fmt.Sprintf("File %q is too large. Maximum size is %s.", f.Name, maxLabel),
	}
}

func newUnsupportedTypeError(f File) *ValidationError {
	return &ValidationError{
		Name:     f.Name,
		MIMEType: f.MIMEType,
		Reason:   ErrUnsupportedType,
		msg:      fmt.Sprintf("File type %q is not supported.", f.MIMEType),
	}
}

// TransferError wraps a backend failure of one upload attempt.
type TransferError struct {
	ID   string
	Name string
	Err  error
}

func (e *TransferError) Error() string {
	if e.Err == nil {
		return ErrUploadFailed.Error()
	}
	return e.Err.Error()
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// PreviewError is logged when a preview cannot be produced. It never
// rejects the file.
type PreviewError struct {
	Name string
	Err  error
}

func (e *PreviewError) Error() string {
	return fmt.Sprintf("preview for %s: %v", e.Name, e.Err)
}

func (e *PreviewError) Unwrap() error {
	return e.Err
}
