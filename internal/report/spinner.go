package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Spinner displays an animated spinner with a message on a TTY, or
// prints the message once and returns on a non-TTY writer — the same
// degrade-gracefully behavior as the teacher's output.Spinner, used
// here to cover the engine's long-running external-tool stages (UI-
// module scanning, translation aggregation).
type Spinner struct {
	message string
	writer  io.Writer
	tty     bool
	mu      sync.Mutex
	running bool
	ticker  *time.Ticker
	done    chan struct{}
}

// NewSpinner builds a Spinner writing to w with the given message.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{message: message, writer: w, tty: IsColorEnabled(w), done: make(chan struct{})}
}

// Start begins the spinner animation on a TTY; on a non-TTY writer it
// prints the message once and returns immediately.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	if !s.tty {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	chars := []string{"|", "/", "-", "\\"}
	s.ticker = time.NewTicker(100 * time.Millisecond)
	go func() {
		idx := 0
		for {
			select {
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.running {
					s.mu.Unlock()
					return
				}
				fmt.Fprintf(s.writer, "\r%s  %s", chars[idx], s.message)
				idx = (idx + 1) % len(chars)
				s.mu.Unlock()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop stops the animation and clears the line on a TTY.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	if s.ticker != nil {
		s.ticker.Stop()
		close(s.done)
	}
	if s.tty {
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
	}
}
