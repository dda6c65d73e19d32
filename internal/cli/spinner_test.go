package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("working")
	s.Start()
	s.Stop()
	s.Stop()
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner("never started")
	s.Stop()
}

func TestSpinnerParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "working")
	s.Start()
	cancel()

	deadline := time.After(time.Second)
	for !s.Cancelled() {
		select {
		case <-deadline:
			t.Fatal("spinner did not observe cancellation")
		case <-time.After(5 * time.Millisecond):
		}
	}
	s.Stop()
}

func TestSpinnerWritesFramesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("rendering")
	s.w = &buf
	s.enabled = true
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "rendering") {
		t.Errorf("spinner output = %q", buf.String())
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	var out bytes.Buffer
	s := newSpinner("rendering")
	s.Start()
	s.StopWithError(&out, "Rendering failed")
	if !strings.Contains(out.String(), "Rendering failed") {
		t.Errorf("output = %q", out.String())
	}
}
