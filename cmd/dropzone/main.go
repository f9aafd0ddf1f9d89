package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dropzone/dropzone/internal/commands"
	"github.com/dropzone/dropzone/internal/ui"
	dropzone_bugsnag "github.com/dropzone/dropzone/pkg/bugsnag"
)

// exitCancelled is the conventional status for a run ended by SIGINT.
const exitCancelled = 130

func main() {
	if err := dropzone_bugsnag.Initialize(); err != nil {
		// Don't fail if Bugsnag initialization fails, just log it
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize error tracking: %v\n", err)
	}

	// Recover from panics and report them to Bugsnag
	defer dropzone_bugsnag.NotifyOnPanic(context.Background())

	rootCmd := commands.NewRootCmd()
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var uiErr *ui.UIError
	if errors.As(err, &uiErr) {
		if uiErr.Type == ui.ErrorTypeInternal {
			dropzone_bugsnag.NotifyError(context.Background(), err)
		}
		if uiErr.Type == ui.ErrorTypeUserCancelled {
			os.Exit(exitCancelled)
		}
		if uiErr.SilentExit {
			// The view already showed it
			os.Exit(1)
		}
	}

	errMsg := err.Error()
	switch {
	case strings.HasPrefix(errMsg, "unknown command"):
		// Unknown command - we've suppressed usage for commands, so we need to manually do this
		_ = rootCmd.Usage()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, err)
	case strings.HasPrefix(errMsg, "unknown flag"):
		// Unknown flag - Cobra already showed usage, don't duplicate
		fmt.Fprintln(os.Stderr, err)
	default:
		fmt.Fprint(os.Stderr, ui.FormatError(err))
	}
	os.Exit(1)
}
