package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/alexschlessinger/vanillachat/messages"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Status shows request progress in the terminal title
type Status struct {
	w         io.Writer
	interval  time.Duration
	mu        sync.Mutex
	text      string
	frame     int
	startTime time.Time
	stop      chan struct{}
	done      chan struct{}
}

// NewStatus creates a title status writing escape codes to w
func NewStatus(w io.Writer) *Status {
	return &Status{w: w, interval: 100 * time.Millisecond}
}

// setTitle writes the OSC 0 sequence, which sets window and icon title
func (s *Status) setTitle(title string) {
	fmt.Fprintf(s.w, "\033]0;%s\007", title)
}

// Start saves the current title and animates text until Stop
func (s *Status) Start(text string) {
	s.mu.Lock()
	s.text = text
	s.startTime = time.Now()
	stop, done := make(chan struct{}), make(chan struct{})
	s.stop, s.done = stop, done
	s.mu.Unlock()

	fmt.Fprint(s.w, "\033[22;0t")
	go s.run(stop, done)
}

func (s *Status) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			elapsed := time.Since(s.startTime).Seconds()
			s.setTitle(fmt.Sprintf("%s %s [%.1fs]", spinnerFrames[s.frame%len(spinnerFrames)], s.text, elapsed))
			s.frame++
			s.mu.Unlock()
		}
	}
}

// Update replaces the status text
func (s *Status) Update(format string, args ...any) {
	s.mu.Lock()
	s.text = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

// Stop ends the animation and restores the saved title. It is safe to call more than once.
func (s *Status) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop = nil
	s.mu.Unlock()
	if stop == nil {
		return
	}

	close(stop)
	<-done
	fmt.Fprint(s.w, "\033[23;0t")
	s.setTitle("")
}

// statusProcessor reports stream progress on a Status and forwards events
type statusProcessor struct {
	next   messages.EventProcessor
	status *Status
}

func withStatus(next messages.EventProcessor, status *Status) messages.EventProcessor {
	if status == nil {
		return next
	}
	return &statusProcessor{next: next, status: status}
}

func (p *statusProcessor) OnSnapshot(prev, cur messages.Snapshot) {
	if calls := cur.ToolCalls(); len(calls) > 0 {
		p.status.Update("calling %s", calls[len(calls)-1].ToolName)
	} else {
		p.status.Update("streaming (%d chars)", len(cur.Text()))
	}
	p.next.OnSnapshot(prev, cur)
}

func (p *statusProcessor) OnComplete(final messages.Snapshot) {
	p.status.Stop()
	p.next.OnComplete(final)
}

func (p *statusProcessor) OnError(err error) {
	p.status.Stop()
	p.next.OnError(err)
}

// createStatus returns a title status when stdout and stderr are terminals
func createStatus(config *Config, w io.Writer) *Status {
	if config.Quiet || config.JSONOutput || !isTerminal() {
		return nil
	}
	return NewStatus(w)
}
