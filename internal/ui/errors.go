package ui

import (
	"errors"

	"github.com/dropzone/dropzone/internal/upload"
)

// ErrorType defines the category of error for proper handling
type ErrorType int

const (
	ErrorTypeUserCancelled ErrorType = iota // Ctrl+C, 'q' - silent exit
	ErrorTypeValidation                     // Rejected input - show error, no usage
	ErrorTypeTransfer                       // Backend/upload failures - show error, no usage
	ErrorTypeFileSystem                     // Reading local files - show error, no usage
	ErrorTypeConfiguration                  // Config issues - show error, no usage
	ErrorTypeInternal                       // Unexpected - show error, no usage
)

// UIError carries an error from a Bubbletea model back to Cobra together
// with how it should be presented.
type UIError struct {
	Err           error
	Type          ErrorType
	SuppressUsage bool // Don't show Cobra usage message
	SilentExit    bool // Already rendered by the view, or should stay silent
}

func (e *UIError) Error() string {
	return e.Err.Error()
}

func (e *UIError) Unwrap() error {
	return e.Err
}

func newUIError(err error, t ErrorType) *UIError {
	return &UIError{Err: err, Type: t, SuppressUsage: true}
}

func NewUserCancelledError() *UIError {
	e := newUIError(errors.New("cancelled by user"), ErrorTypeUserCancelled)
	e.SilentExit = true
	return e
}

func NewValidationError(err error) *UIError {
	return newUIError(err, ErrorTypeValidation)
}

func NewTransferError(err error) *UIError {
	return newUIError(err, ErrorTypeTransfer)
}

func NewFileSystemError(err error) *UIError {
	return newUIError(err, ErrorTypeFileSystem)
}

func NewConfigurationError(err error) *UIError {
	return newUIError(err, ErrorTypeConfiguration)
}

func NewInternalError(err error) *UIError {
	return newUIError(err, ErrorTypeInternal)
}

// Classify wraps err in the UIError matching its domain type. Errors that
// already are a *UIError are returned unchanged.
func Classify(err error) *UIError {
	var uiErr *UIError
	if errors.As(err, &uiErr) {
		return uiErr
	}

	var vErr *upload.ValidationError
	var tErr *upload.TransferError
	switch {
	case errors.As(err, &vErr), errors.Is(err, upload.ErrNoFilesAccepted):
		return NewValidationError(err)
	case errors.As(err, &tErr), errors.Is(err, upload.ErrNotFound):
		return NewTransferError(err)
	default:
		return NewInternalError(err)
	}
}
