// Package bugsnag reports errors and panics of the dropzone CLI.
// Reporting is opt-out and stays disabled unless an API key is built in.
package bugsnag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/bugsnag/bugsnag-go/v2"
	"github.com/dropzone/dropzone/internal/version"
	"github.com/dropzone/dropzone/pkg/config"
	"github.com/google/uuid"
)

// Build-time variables that can be set via ldflags
// Example: go build -ldflags "-X github.com/dropzone/dropzone/pkg/bugsnag.BugsnagAPIKey=your-key"
var (
	// BugsnagAPIKey is the API key for error reporting, injected at compile time.
	// If not set during build, error reporting will be disabled.
	BugsnagAPIKey = ""

	// DefaultReleaseStage defines the default environment for error reporting.
	// Can be overridden at compile time via ldflags.
	DefaultReleaseStage = "prod"
)

var (
	initialized bool
	enabled     bool

	// runID groups every report sent by one CLI invocation.
	runID = uuid.NewString()
)

// Initialize configures the Bugsnag client. It is a no-op after the first
// call, when telemetry is disabled or when no API key was built in.
func Initialize() error {
	if initialized {
		return nil
	}
	initialized = true

	cfg, _ := config.Load() // Ignore error - proceed with default behavior if config unavailable
	if cfg != nil && !cfg.IsTelemetryEnabled() {
		return nil
	}

	if BugsnagAPIKey == "" {
		return nil
	}

	apiKey := BugsnagAPIKey
	if envKey := os.Getenv("BUGSNAG_API_KEY"); envKey != "" {
		apiKey = envKey
	}

	releaseStage := os.Getenv("DROPZONE_ENV")
	if releaseStage == "" {
		releaseStage = DefaultReleaseStage
	}

	bugsnag.Configure(bugsnag.Configuration{
		APIKey:              apiKey,
		ReleaseStage:        releaseStage,
		AppVersion:          version.Version,
		AppType:             "cli",
		ProjectPackages:     []string{"main", "github.com/dropzone/dropzone"},
		NotifyReleaseStages: []string{"prod", "dev"},
		PanicHandler:        func() {}, // Manual panic handling for better control
		Synchronous:         false,
		AutoCaptureSessions: true,
	})

	addSystemMetadata()
	addRunContext(cfg)

	enabled = true
	return nil
}

// RunID identifies this invocation in reports and log records.
func RunID() string {
	return runID
}

// IsEnabled returns whether Bugsnag error reporting is active.
func IsEnabled() bool {
	return enabled
}

func addSystemMetadata() {
	systemInfo := bugsnag.MetaData{
		"system": {
			"os_type":    runtime.GOOS,
			"os_arch":    runtime.GOARCH,
			"go_version": runtime.Version(),
			"num_cpu":    runtime.NumCPU(),
		},
	}

	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		for tab, data := range systemInfo {
			for key, value := range data {
				event.MetaData.Add(tab, key, value)
			}
		}
		event.MetaData.Add("system", "num_goroutine", runtime.NumGoroutine())
		return nil
	})
}

// addRunContext tags reports with the run ID and the simulation settings,
// which decide how often uploads fail.
func addRunContext(cfg *config.Config) {
	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("run", "id", runID)
		if cfg != nil {
			event.MetaData.Add("run", "failure_rate", cfg.FailureRate)
			event.MetaData.Add("run", "simulation_steps", cfg.SimulationSteps)
		}
		return nil
	})
}

// NotifyError reports an unexpected failure. User cancellations are skipped.
func NotifyError(ctx context.Context, err error) {
	notify(ctx, err, bugsnag.SeverityError)
}

// NotifyWarning reports a recoverable problem.
func NotifyWarning(ctx context.Context, err error) {
	notify(ctx, err, bugsnag.SeverityWarning)
}

func notify(ctx context.Context, err error, severity any) {
	if !initialized {
		_ = Initialize()
	}

	if !enabled || err == nil || IsUserCancellation(err) {
		return
	}

	_ = bugsnag.Notify(err, ctx, severity)
}

// NotifyOnPanic captures and reports panic conditions before propagating them.
// Always use with defer at the start of goroutines and main functions for comprehensive panic tracking.
func NotifyOnPanic(ctx context.Context) {
	if r := recover(); r != nil {
		var err error
		switch x := r.(type) {
		case string:
			err = fmt.Errorf("panic: %s", x)
		case error:
			err = fmt.Errorf("panic: %w", x)
		default:
			err = fmt.Errorf("panic: %v", r)
		}

		NotifyError(ctx, err)

		// Preserve panic behavior for proper error handling
		panic(r)
	}
}

// SetCommandContext tracks which CLI command triggered an error for better debugging.
func SetCommandContext(command string, args []string) {
	if !initialized {
		_ = Initialize()
	}
	if !enabled {
		return
	}

	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("command", "name", command)
		if len(args) > 0 {
			event.MetaData.Add("command", "args", strings.Join(args, " "))
		}
		return nil
	})
}

// IsUserCancellation identifies errors from user-initiated cancellations.
// These errors are excluded from reporting as they represent normal user behavior, not system issues.
func IsUserCancellation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "context canceled") ||
		strings.Contains(errStr, "cancelled by user")
}
