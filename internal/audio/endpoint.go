package audio

import (
	"sync"
	"time"
)

// Endpointer decides when a foreground utterance has ended, based on the
// amplitude level staying under a threshold for a maximum silence window.
type Endpointer struct {
	mu         sync.Mutex
	threshold  float64
	maxSilence time.Duration

	active     bool
	lastActive time.Time
	now        func() time.Time
}

// NewEndpointer creates an endpointer. A zero threshold or silence window
// falls back to defaults.
func NewEndpointer(threshold float64, maxSilence time.Duration) *Endpointer {
	if threshold <= 0 {
		threshold = 0.04
	}
	if maxSilence <= 0 {
		maxSilence = 900 * time.Millisecond
	}
	return &Endpointer{
		threshold:  threshold,
		maxSilence: maxSilence,
		now:        time.Now,
	}
}

// SetNow overrides the clock, for tests.
func (e *Endpointer) SetNow(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// Observe feeds one level sample. It returns true while the utterance is
// considered live: either the level is above the threshold, or silence
// has not yet exceeded the window since the last active sample.
func (e *Endpointer) Observe(level float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if level >= e.threshold {
		e.active = true
		e.lastActive = e.now()
		return true
	}
	if !e.active {
		return false
	}
	if e.now().Sub(e.lastActive) > e.maxSilence {
		e.active = false
		return false
	}
	return true
}

// Active reports whether speech is currently considered live.
func (e *Endpointer) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Reset clears endpointer state for the next utterance.
func (e *Endpointer) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
	e.lastActive = time.Time{}
}
