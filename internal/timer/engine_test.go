package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// manualScheduler queues callbacks and fires them on demand.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualEntry
}

type manualEntry struct {
	f         func()
	cancelled bool
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &manualEntry{f: f}
	s.pending = append(s.pending, e)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		e.cancelled = true
	}
}

// fire runs the oldest pending callback unless it was cancelled.
func (s *manualScheduler) fire(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		t.Fatal("no pending tick")
	}
	e := s.pending[0]
	s.pending = s.pending[1:]
	s.mu.Unlock()

	if !e.cancelled {
		e.f()
	}
}

func newTestEngine() (*Engine, *manualScheduler) {
	sched := &manualScheduler{}
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	e := NewEngine(nil, zerolog.Nop(), func() time.Time { return now }, sched)
	return e, sched
}

func TestEngineCountdown(t *testing.T) {
	e, sched := newTestEngine()

	var completed Timer
	var message string
	e.OnComplete(func(tm Timer, msg string) {
		completed = tm
		message = msg
	})

	created, err := e.Create(3, "3 seconds")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Remaining != 3 {
		t.Fatalf("Remaining = %d, want 3", created.Remaining)
	}

	sched.fire(t)
	got, ok := e.Get(created.ID)
	if !ok || got.Remaining != 2 {
		t.Fatalf("after 1 tick: remaining = %d, ok = %v", got.Remaining, ok)
	}

	sched.fire(t)
	sched.fire(t)

	if _, ok := e.Get(created.ID); ok {
		t.Error("timer still present after reaching zero")
	}
	if completed.ID != created.ID {
		t.Errorf("onComplete timer = %q, want %q", completed.ID, created.ID)
	}
	if message != "Commander, your timer for 3 seconds is complete." {
		t.Errorf("completion message = %q", message)
	}
}

func TestEngineCancelStopsTicks(t *testing.T) {
	e, sched := newTestEngine()

	var completions int
	e.OnComplete(func(Timer, string) { completions++ })

	created, err := e.Create(1, "1 second")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !e.Cancel(created.ID) {
		t.Fatal("Cancel returned false for active timer")
	}
	if len(e.Active()) != 0 {
		t.Error("timer still active after cancel")
	}

	// The queued tick must be a no-op.
	sched.fire(t)
	if completions != 0 {
		t.Errorf("completions = %d, want 0", completions)
	}
}

func TestEngineCancelIdempotent(t *testing.T) {
	e, _ := newTestEngine()

	created, _ := e.Create(10, "10 seconds")
	if !e.Cancel(created.ID) {
		t.Fatal("first cancel failed")
	}
	if e.Cancel(created.ID) {
		t.Error("second cancel reported success")
	}
	if e.Cancel("timer_unknown") {
		t.Error("cancel of unknown id reported success")
	}
}

func TestEngineUniqueIDs(t *testing.T) {
	e, _ := newTestEngine()

	// Fixed clock: every Create lands on the same millisecond.
	a, _ := e.Create(60, "1 minute")
	b, _ := e.Create(60, "1 minute")
	if a.ID == b.ID {
		t.Errorf("duplicate timer ids: %q", a.ID)
	}
}

func TestEngineCancelAll(t *testing.T) {
	e, _ := newTestEngine()

	e.Create(10, "10 seconds")
	e.Create(20, "20 seconds")
	e.CancelAll()
	if n := len(e.Active()); n != 0 {
		t.Errorf("active = %d after CancelAll, want 0", n)
	}
}

func TestEngineRejectsZeroDuration(t *testing.T) {
	e, _ := newTestEngine()
	if _, err := e.Create(0, "nothing"); err != ErrZeroDuration {
		t.Errorf("err = %v, want ErrZeroDuration", err)
	}
}
