package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/orionvoice/orion/internal/bus"
)

// Scheduler schedules the once-per-second ticks. The indirection lets
// tests drive time manually instead of sleeping.
type Scheduler interface {
	// AfterFunc runs f after d. The returned func cancels the pending
	// call; cancelling an already-fired or already-cancelled entry is a
	// no-op.
	AfterFunc(d time.Duration, f func()) (cancel func())
}

// realScheduler backs the engine with time.AfterFunc.
type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// NewRealScheduler returns a Scheduler over the wall clock.
func NewRealScheduler() Scheduler { return realScheduler{} }

type activeTimer struct {
	timer      Timer
	cancelTick func()
	live       bool // cleared on cancel/complete; ticks check it under the lock
}

// Engine owns the active timer set and the countdown driver. All state
// changes happen under one lock, so a cancelled timer can never process
// another tick.
type Engine struct {
	mu     sync.Mutex
	timers map[string]*activeTimer

	now   func() time.Time
	sched Scheduler

	eventBus *bus.EventBus
	logger   zerolog.Logger

	onComplete func(t Timer, message string)
}

// NewEngine creates a timer engine. now and sched may be nil for wall
// clock defaults.
func NewEngine(eventBus *bus.EventBus, logger zerolog.Logger, now func() time.Time, sched Scheduler) *Engine {
	if now == nil {
		now = time.Now
	}
	if sched == nil {
		sched = NewRealScheduler()
	}
	return &Engine{
		timers:   make(map[string]*activeTimer),
		now:      now,
		sched:    sched,
		eventBus: eventBus,
		logger:   logger.With().Str("component", "timer").Logger(),
	}
}

// OnComplete registers the completion callback (conversation log, speech
// and notification are wired there).
func (e *Engine) OnComplete(fn func(t Timer, message string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onComplete = fn
}

// Create starts a countdown of totalSeconds described by phrase
// (e.g. "5 minutes"). Returns the created timer snapshot.
func (e *Engine) Create(totalSeconds int, phrase string) (Timer, error) {
	if totalSeconds <= 0 {
		return Timer{}, ErrZeroDuration
	}

	e.mu.Lock()
	start := e.now()
	id := fmt.Sprintf("timer_%d", start.UnixMilli())
	for _, taken := e.timers[id]; taken; _, taken = e.timers[id] {
		// Two timers in the same millisecond; bump until free.
		start = start.Add(time.Millisecond)
		id = fmt.Sprintf("timer_%d", start.UnixMilli())
	}

	at := &activeTimer{
		timer: Timer{
			ID:          id,
			Duration:    totalSeconds,
			Remaining:   totalSeconds,
			Description: phrase,
			StartedAt:   start,
			EndsAt:      start.Add(time.Duration(totalSeconds) * time.Second),
		},
		live: true,
	}
	e.timers[id] = at
	at.cancelTick = e.sched.AfterFunc(time.Second, func() { e.tick(id) })
	snapshot := at.timer
	e.mu.Unlock()

	e.logger.Info().Str("id", id).Int("seconds", totalSeconds).Str("phrase", phrase).Msg("Timer created")
	e.publish(bus.EventTypeTimerCreated, map[string]any{"timer": snapshot})
	e.publish(bus.EventTypeTimerDisplay, map[string]any{"display": snapshot.display()})
	return snapshot, nil
}

// tick decrements one timer by a second. The liveness flag is checked
// under the lock, so a tick queued before a cancel is a no-op.
func (e *Engine) tick(id string) {
	e.mu.Lock()
	at, ok := e.timers[id]
	if !ok || !at.live {
		e.mu.Unlock()
		return
	}

	at.timer.Remaining--
	if at.timer.Remaining < 0 {
		at.timer.Remaining = 0
	}
	display := at.timer.display()

	if at.timer.Remaining == 0 {
		// Terminal: remove within the same tick that hit zero.
		at.live = false
		delete(e.timers, id)
		snapshot := at.timer
		onComplete := e.onComplete
		e.mu.Unlock()

		message := fmt.Sprintf("Commander, your timer for %s is complete.", snapshot.Description)
		e.logger.Info().Str("id", id).Msg("Timer completed")
		e.publish(bus.EventTypeTimerDisplay, map[string]any{"display": display})
		e.publish(bus.EventTypeTimerCompleted, map[string]any{"timer": snapshot, "message": message})
		e.publish(bus.EventTypeNotify, map[string]any{"title": "Orion Timer", "body": message})
		if onComplete != nil {
			onComplete(snapshot, message)
		}
		return
	}

	at.cancelTick = e.sched.AfterFunc(time.Second, func() { e.tick(id) })
	e.mu.Unlock()

	e.publish(bus.EventTypeTimerDisplay, map[string]any{"display": display})
}

// Cancel stops a countdown and removes the timer. Cancelling an unknown
// or already-finished timer returns false; it never errors and never
// lets another tick through.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	at, ok := e.timers[id]
	if !ok {
		e.mu.Unlock()
		return false
	}
	at.live = false
	delete(e.timers, id)
	cancelTick := at.cancelTick
	snapshot := at.timer
	e.mu.Unlock()

	if cancelTick != nil {
		cancelTick()
	}
	e.logger.Info().Str("id", id).Msg("Timer cancelled")
	e.publish(bus.EventTypeTimerCancelled, map[string]any{"timer": snapshot})
	return true
}

// CancelAll cancels every active timer.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	ids := make([]string, 0, len(e.timers))
	for id := range e.timers {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	for _, id := range ids {
		e.Cancel(id)
	}
}

// Active returns snapshots of all running timers.
func (e *Engine) Active() []Timer {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Timer, 0, len(e.timers))
	for _, at := range e.timers {
		out = append(out, at.timer)
	}
	return out
}

// Get returns a snapshot of one timer.
func (e *Engine) Get(id string) (Timer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	at, ok := e.timers[id]
	if !ok {
		return Timer{}, false
	}
	return at.timer, true
}

func (e *Engine) publish(t bus.EventType, data map[string]any) {
	if e.eventBus != nil {
		e.eventBus.Publish(bus.Event{Type: t, Data: data})
	}
}
