package ui

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// DisplayConfigContextKey is the key used to store DisplayConfig in context
type DisplayConfigContextKey struct{}

// GetDisplayConfigContextKey returns the key used to store DisplayConfig in context
func GetDisplayConfigContextKey() DisplayConfigContextKey {
	return DisplayConfigContextKey{}
}

// DisplayConfig decides between the full TUI and plain line output.
type DisplayConfig struct {
	DisableAnimation bool
	IsInteractive    bool
}

func (d DisplayConfig) SimpleOutput() bool {
	return !d.IsInteractive || d.DisableAnimation
}

// terminalState is what NewDisplayConfig learns from the environment.
type terminalState struct {
	stdoutIsTTY        bool
	stderrSameAsStdout bool
}

func detectTerminal() terminalState {
	state := terminalState{stdoutIsTTY: isatty.IsTerminal(os.Stdout.Fd())}
	if out, err := os.Stdout.Stat(); err == nil {
		if errOut, err := os.Stderr.Stat(); err == nil {
			state.stderrSameAsStdout = os.SameFile(out, errOut)
		}
	}
	return state
}

// resolveDisplay applies the display rules:
//   - --no-color or --no-ansi turns animation off
//   - verbose logs only force plain output when they would land in the same
//     stream as the TUI (2>&1 or a plain terminal)
//   - the TUI needs stdout to be a terminal
func resolveDisplay(term terminalState, noColor, noAnsi, verbose bool) DisplayConfig {
	disableAnimation := noColor || noAnsi
	verboseForcesSimple := verbose && term.stderrSameAsStdout

	return DisplayConfig{
		DisableAnimation: disableAnimation,
		IsInteractive:    term.stdoutIsTTY && !disableAnimation && !verboseForcesSimple,
	}
}

// NewDisplayConfig extracts display options from persistent flags and TTY detection
func NewDisplayConfig(cmd *cobra.Command, verbose bool) (DisplayConfig, error) {
	noColor, _ := cmd.Flags().GetBool("no-color")
	noAnsi, _ := cmd.Flags().GetBool("no-ansi")

	term := detectTerminal()
	opts := resolveDisplay(term, noColor, noAnsi, verbose)

	slog.Debug("Display options determined",
		"command", cmd.Name(),
		"no-color-flag", noColor,
		"no-ansi-flag", noAnsi,
		"verbose-flag", verbose,
		"stdout-is-tty", term.stdoutIsTTY,
		"stderr-same-as-stdout", term.stderrSameAsStdout,
		"is-interactive", opts.IsInteractive,
		"simple-output", opts.SimpleOutput(),
	)

	return opts, nil
}

// GetDisplayConfigFromContext retrieves DisplayConfig from the command context
func GetDisplayConfigFromContext(cmd *cobra.Command) (DisplayConfig, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return DisplayConfig{}, fmt.Errorf("command context is nil")
	}

	opts, ok := ctx.Value(GetDisplayConfigContextKey()).(DisplayConfig)
	if !ok {
		return DisplayConfig{}, fmt.Errorf("display options not found in context")
	}

	return opts, nil
}
