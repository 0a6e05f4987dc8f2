// Package intent interprets transcribed commands: a remote LLM-backed
// endpoint when reachable, with a local rule-based fallback.
package intent

import (
	"fmt"
	"strings"
	"time"

	"github.com/orionvoice/orion/internal/timer"
)

// Intent identifies what a command asked for.
type Intent string

const (
	IntentTimer    Intent = "timer"
	IntentTime     Intent = "time"
	IntentDate     Intent = "date"
	IntentGreeting Intent = "greeting"
	IntentHelp     Intent = "help"
	IntentUnknown  Intent = "unknown"
	IntentRemote   Intent = "ai_response"
)

// Result is an interpreted command.
type Result struct {
	Intent  Intent
	Message string
	Source  string                // "local" or "remote"
	Timer   *timer.ParsedDuration // set for successful timer intents
}

// Local is the rule-based fallback interpreter. Interpret is pure given
// the injected clock; rules run in a fixed priority order because the
// keyword sets overlap (rule 1 must claim "timer" before rule 2 reads it
// as a time-of-day query).
type Local struct {
	now func() time.Time
}

// NewLocal creates a local interpreter. now may be nil for wall clock.
func NewLocal(now func() time.Time) *Local {
	if now == nil {
		now = time.Now
	}
	return &Local{now: now}
}

func containsAny(cmd string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(cmd, w) {
			return true
		}
	}
	return false
}

// Interpret pattern-matches a lower-cased transcript against the known
// intents, first match wins.
func (l *Local) Interpret(command string) Result {
	cmd := strings.ToLower(strings.TrimSpace(command))

	// 1. Timer/alarm, checked before the generic time query below.
	if containsAny(cmd, "timer", "countdown", "remind") && containsAny(cmd, "set", "create", "start") {
		return l.timerResult(cmd)
	}

	// 2. Time of day. The "timer" guard is a substring heuristic;
	// words like "sometimes" also trip the first test.
	if containsAny(cmd, "time", "clock") && !strings.Contains(cmd, "timer") {
		return Result{
			Intent:  IntentTime,
			Message: fmt.Sprintf("The current time is %s, Commander.", l.now().Format("3:04 PM")),
			Source:  "local",
		}
	}

	// 3. Date.
	if containsAny(cmd, "date", "today") {
		return Result{
			Intent:  IntentDate,
			Message: fmt.Sprintf("Today is %s, Commander.", l.now().Format("Monday, January 2, 2006")),
			Source:  "local",
		}
	}

	// 4. Greeting, varied by hour.
	if containsAny(cmd, "hello", "hi", "hey", "greeting") {
		greeting := "Good evening"
		switch hour := l.now().Hour(); {
		case hour < 12:
			greeting = "Good morning"
		case hour < 17:
			greeting = "Good afternoon"
		}
		return Result{
			Intent:  IntentGreeting,
			Message: fmt.Sprintf("%s, Commander! I am Orion, your strategic voice assistant. How may I assist you with your mission today?", greeting),
			Source:  "local",
		}
	}

	// 5. Help.
	if containsAny(cmd, "help", "commands") {
		return Result{
			Intent:  IntentHelp,
			Message: "I stand ready to assist with timers, time queries, dates, and tactical conversations. What is your mission, Commander?",
			Source:  "local",
		}
	}

	// 6. Fallback.
	return Result{
		Intent:  IntentUnknown,
		Message: "Command received and processed, Commander. I did not recognize that instruction locally.",
		Source:  "local",
	}
}

// TimerIntent reports whether a command asks for a timer, without
// interpreting the rest of it.
func TimerIntent(command string) bool {
	cmd := strings.ToLower(command)
	return containsAny(cmd, "timer", "countdown", "remind") && containsAny(cmd, "set", "create", "start")
}

func (l *Local) timerResult(cmd string) Result {
	parsed, err := timer.ParseDuration(cmd)
	switch err {
	case nil:
		return Result{
			Intent:  IntentTimer,
			Message: fmt.Sprintf("Timer set for %s, Commander.", parsed.Phrase),
			Source:  "local",
			Timer:   parsed,
		}
	case timer.ErrZeroDuration:
		return Result{
			Intent:  IntentTimer,
			Message: "Timer duration must be greater than zero, Commander.",
			Source:  "local",
		}
	default:
		return Result{
			Intent:  IntentTimer,
			Message: "I couldn't understand the timer duration, Commander. Try 'set timer for 5 minutes'.",
			Source:  "local",
		}
	}
}
