package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// spinner animates a single status line on stderr until stopped or until
// its parent context is done. Either way the line is erased.
type spinner struct {
	w      io.Writer
	parent context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	msg   string
	drawn int // visible width of the last frame
}

func newSpinner(ctx context.Context, msg string) *spinner {
	return newSpinnerTo(ctx, os.Stderr, msg)
}

func newSpinnerTo(ctx context.Context, w io.Writer, msg string) *spinner {
	return &spinner{w: w, parent: ctx, cancel: func() {}, msg: msg}
}

func (s *spinner) start() {
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *spinner) run(ctx context.Context) {
	defer s.wg.Done()
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			s.erase()
			return
		case <-tick.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *spinner) setMessage(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

func (s *spinner) draw(frame rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(string(frame)), StyleDim.Render(s.msg))
	s.drawn = max(s.drawn, len(s.msg)+2)
}

func (s *spinner) erase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
		s.drawn = 0
	}
}

// stop erases the line and waits for the animation to exit. Safe to call
// repeatedly and without start.
func (s *spinner) stop() {
	s.cancel()
	s.wg.Wait()
}

// fail stops the spinner and prints msg as an error line.
func (s *spinner) fail(msg string) {
	s.stop()
	printError("%s", msg)
}
