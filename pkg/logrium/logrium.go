// Package logrium configures the process-wide slog logger for dropzone.
package logrium

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mattn/go-isatty"
)

// Options controls where records go and what every record carries.
type Options struct {
	Interactive bool
	Level       slog.Level

	// Dir holds the debug file. Empty means os.TempDir().
	Dir string

	// Attrs are attached to every record, for example the run ID and the
	// simulation settings that decide how often uploads fail.
	Attrs []slog.Attr
}

var (
	mu      sync.Mutex
	logFile *os.File

	stderrIsTerminal = func() bool { return isatty.IsTerminal(os.Stderr.Fd()) }
)

// Setup configures the global slog logger and returns the debug file path,
// or "" when records go to stderr.
//
// Records go to a timestamped file only while the upload TUI owns the
// terminal: interactive mode with stderr still attached to a TTY. A
// redirected stderr (2>) always receives the records directly.
func Setup(opts Options) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	var output io.Writer = os.Stderr
	var path string

	if opts.Interactive && stderrIsTerminal() {
		dir := opts.Dir
		if dir == "" {
			dir = os.TempDir()
		}
		path = filepath.Join(dir, fmt.Sprintf("dropzone-debug-%s.log", time.Now().Format("2006-01-02T15-04-05")))

		f, err := os.OpenFile(path, //nolint:gosec // Log file in temp directory
			os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return "", err
		}
		closeFileLocked()
		logFile = f
		output = f
	} else {
		closeFileLocked()
	}

	slog.SetDefault(slog.New(newHandler(output, opts.Level, opts.Attrs)))
	return path, nil
}

// Disable discards every record. Used when --verbose is not set.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	closeFileLocked()
	slog.SetDefault(slog.New(slog.DiscardHandler))
}

// SetupForTesting sends records to w until the test completes, then restores
// the previous logger.
//
//	var buf bytes.Buffer
//	logrium.SetupForTesting(t, &buf, slog.LevelDebug)
//	// ... code under test ...
//	assert.Contains(t, buf.String(), "Upload failed")
func SetupForTesting(t *testing.T, w io.Writer, level slog.Level, attrs ...slog.Attr) {
	original := slog.Default()
	slog.SetDefault(slog.New(newHandler(w, level, attrs)))
	t.Cleanup(func() {
		slog.SetDefault(original)
	})
}

func newHandler(w io.Writer, level slog.Level, attrs []slog.Attr) slog.Handler {
	var h slog.Handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	if len(attrs) > 0 {
		h = h.WithAttrs(attrs)
	}
	return h
}

func closeFileLocked() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
