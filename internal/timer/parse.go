// Package timer implements Orion's named countdown timers: duration
// parsing from transcribed commands, a once-per-second countdown engine,
// and the analog/digital display state it drives.
package timer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Parse errors, surfaced as conversational responses upstream.
var (
	ErrNoDuration   = errors.New("no duration found in command")
	ErrZeroDuration = errors.New("duration must be greater than zero")
)

var durationToken = regexp.MustCompile(`(\d+)\s*(seconds?|secs?|minutes?|mins?|hours?|hrs?)\b`)

// ParsedDuration is the result of scanning a command for duration tokens.
type ParsedDuration struct {
	Seconds int    // accumulated total
	Phrase  string // human-readable, tokens in order of appearance
}

// ParseDuration scans command text for every `<integer> <unit>` token,
// accumulates the total in seconds, and builds the spoken phrase from the
// tokens in order of appearance ("1 minute 30 seconds"). Zero tokens
// yields ErrNoDuration; a zero total yields ErrZeroDuration.
func ParseDuration(text string) (*ParsedDuration, error) {
	matches := durationToken.FindAllStringSubmatch(strings.ToLower(text), -1)
	if len(matches) == 0 {
		return nil, ErrNoDuration
	}

	var total int
	var parts []string
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		unit, mult := canonicalUnit(m[2])
		total += n * mult
		parts = append(parts, spokenQuantity(n, unit))
	}

	if total <= 0 {
		return nil, ErrZeroDuration
	}
	return &ParsedDuration{Seconds: total, Phrase: strings.Join(parts, " ")}, nil
}

func canonicalUnit(unit string) (string, int) {
	switch {
	case strings.HasPrefix(unit, "h"):
		return "hour", 3600
	case strings.HasPrefix(unit, "min"), strings.HasPrefix(unit, "minute"):
		return "minute", 60
	default:
		return "second", 1
	}
}

func spokenQuantity(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
