package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsAndErases(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Stacking...")
	s.start()
	time.Sleep(3 * spinnerInterval)
	s.setMessage("Stacked")
	time.Sleep(3 * spinnerInterval)
	s.stop()

	out := buf.String()
	for _, want := range []string{"Stacking...", "Stacked"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output %q should end with an erased line", out)
	}
}

func TestSpinnerParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	s := newSpinnerTo(ctx, &buf, "working")
	s.start()
	time.Sleep(2 * spinnerInterval)
	cancel()

	done := make(chan struct{})
	go func() { s.stop(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop did not return after the parent was canceled")
	}
	if !strings.HasSuffix(buf.String(), "\r") {
		t.Errorf("output %q should end with an erased line", buf.String())
	}
}

func TestSpinnerStop(t *testing.T) {
	t.Run("repeated", func(t *testing.T) {
		s := newSpinnerTo(context.Background(), &bytes.Buffer{}, "x")
		s.start()
		s.stop()
		s.stop()
	})
	t.Run("never started", func(t *testing.T) {
		var buf bytes.Buffer
		newSpinnerTo(context.Background(), &buf, "x").stop()
		if buf.Len() != 0 {
			t.Errorf("unstarted spinner wrote %q", buf.String())
		}
	})
}
