package audio

import (
	"testing"
	"time"
)

func TestEndpointerLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := NewEndpointer(0.04, 900*time.Millisecond)
	e.SetNow(func() time.Time { return now })

	// Silence before any speech is not a live utterance.
	if e.Observe(0.01) {
		t.Error("live before any speech")
	}

	// Speech starts.
	if !e.Observe(0.5) {
		t.Error("not live on loud sample")
	}

	// Brief pause inside the window stays live.
	now = now.Add(400 * time.Millisecond)
	if !e.Observe(0.01) {
		t.Error("dropped during short pause")
	}

	// Silence past the window ends the utterance.
	now = now.Add(600 * time.Millisecond)
	if e.Observe(0.01) {
		t.Error("still live after silence window elapsed")
	}
	if e.Active() {
		t.Error("active after utterance ended")
	}
}

func TestEndpointerSpeechResetsWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := NewEndpointer(0.04, 900*time.Millisecond)
	e.SetNow(func() time.Time { return now })

	e.Observe(0.5)
	now = now.Add(800 * time.Millisecond)
	e.Observe(0.5) // speech again just before the window closes

	now = now.Add(800 * time.Millisecond)
	if !e.Observe(0.01) {
		t.Error("window was not reset by the second speech sample")
	}
}

func TestEndpointerReset(t *testing.T) {
	e := NewEndpointer(0.04, 900*time.Millisecond)
	e.Observe(0.5)
	e.Reset()
	if e.Active() {
		t.Error("active after Reset")
	}
	if e.Observe(0.01) {
		t.Error("live immediately after Reset")
	}
}
