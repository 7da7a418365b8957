package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer written by the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerStop(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Rendering shop...")
	s.Start()
	time.Sleep(3 * spinnerInterval)

	if d := s.Stop(); d < 3*spinnerInterval {
		t.Errorf("Stop() = %v, want at least %v", d, 3*spinnerInterval)
	}
	s.Stop()
	if !s.Cancelled() {
		t.Error("Cancelled() = false after Stop, want true")
	}
	if !strings.Contains(out.String(), "Rendering shop...") {
		t.Errorf("output %q missing message", out.String())
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var out syncBuffer
	s := newSpinnerTo(ctx, &out, "Rendering...")
	s.Start()
	time.Sleep(60 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("Cancelled() = false after context timeout, want true")
	}
	s.Stop()
}
