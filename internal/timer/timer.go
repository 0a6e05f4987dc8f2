package timer

import (
	"fmt"
	"time"
)

// Timer is one active countdown. Remaining is decremented once per
// second by the engine; 0 ≤ Remaining ≤ Duration always holds, and a
// timer that reaches zero is removed within the same tick.
type Timer struct {
	ID          string    `json:"id"`
	Duration    int       `json:"duration"`  // total seconds, > 0
	Remaining   int       `json:"remaining"` // seconds left
	Description string    `json:"description"`
	StartedAt   time.Time `json:"started_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// Display is the per-tick UI state for one timer.
type Display struct {
	ID          string  `json:"id"`
	Remaining   int     `json:"remaining"`
	Digital     string  `json:"digital"`
	Angle       float64 `json:"angle"` // analog hand rotation, degrees
	Description string  `json:"description"`
}

// FormatDigital renders remaining seconds as H:MM:SS once an hour or
// more is left, M:SS otherwise.
func FormatDigital(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// HandAngle returns the analog hand rotation in degrees for the elapsed
// fraction of the countdown: 0 at start, 360 at completion.
func HandAngle(duration, remaining int) float64 {
	if duration <= 0 {
		return 0
	}
	elapsed := duration - remaining
	return 360.0 * float64(elapsed) / float64(duration)
}

// display builds the UI state for a timer.
func (t *Timer) display() Display {
	return Display{
		ID:          t.ID,
		Remaining:   t.Remaining,
		Digital:     FormatDigital(t.Remaining),
		Angle:       HandAngle(t.Duration, t.Remaining),
		Description: t.Description,
	}
}
