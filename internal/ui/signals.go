package ui

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SignalCancelMsg is sent when a termination signal is received (SIGINT, SIGTERM)
type SignalCancelMsg struct {
	Signal os.Signal
}

const defaultShutdownTimeout = 100 * time.Millisecond

// SetupSignalHandling routes SIGINT/SIGTERM to the program as a
// SignalCancelMsg so the view can stop its uploads before quitting. A
// second signal, or a shutdown that outlives shutdownTimeout, exits the
// process. Close the returned channel once the program has finished.
// NOTE: this should be called before p.Run(), since it alters the program config
func SetupSignalHandling(p *tea.Program, shutdownTimeout time.Duration) chan<- struct{} {
	if shutdownTimeout == 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	tea.WithoutSignalHandler()(p)

	sigChan := make(chan os.Signal, 1)
	doneCh := make(chan struct{})
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)

		var sig os.Signal
		select {
		case sig = <-sigChan:
		case <-doneCh:
			return
		}
		p.Send(SignalCancelMsg{Signal: sig})

		timer := time.NewTimer(shutdownTimeout)
		defer timer.Stop()

		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nForce quitting...\n")
			os.Exit(130)
		case <-timer.C:
			fmt.Fprintf(os.Stderr, "\nTimeout trying to clean up, force quitting...\n")
			os.Exit(130)
		case <-doneCh:
			return
		}
	}()
	return doneCh
}
