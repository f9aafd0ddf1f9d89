package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// SimpleSpinner animates a message on stderr outside of Bubbletea, so
// stdout stays clean for piping.
type SimpleSpinner struct {
	message string
	out     io.Writer
	frames  []string
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewSimpleSpinner(message string) *SimpleSpinner {
	return &SimpleSpinner{
		message: message,
		out:     os.Stderr,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins the animation. Nothing is drawn unless stderr is a terminal.
func (s *SimpleSpinner) Start() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		close(s.done)
		return
	}

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.stop:
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprintf(s.out, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			}
		}
	}()
}

// Stop clears the line and waits for the animation to end. It is safe to
// call more than once.
func (s *SimpleSpinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}
