package timer

import (
	"testing"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		seconds int
		phrase  string
	}{
		{"minutes", "set a timer for 5 minutes", 300, "5 minutes"},
		{"seconds", "set timer for 30 seconds", 30, "30 seconds"},
		{"hours", "start a 2 hour countdown", 7200, "2 hours"},
		{"mixed units", "set a timer for 1 minute 30 seconds", 90, "1 minute 30 seconds"},
		{"abbreviations", "timer for 10 min 5 sec", 605, "10 minutes 5 seconds"},
		{"singular", "set a timer for 1 hour", 3600, "1 hour"},
		{"no space", "set a timer for 45seconds", 45, "45 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.text)
			if err != nil {
				t.Fatalf("ParseDuration(%q) error: %v", tt.text, err)
			}
			if got.Seconds != tt.seconds {
				t.Errorf("Seconds = %d, want %d", got.Seconds, tt.seconds)
			}
			if got.Phrase != tt.phrase {
				t.Errorf("Phrase = %q, want %q", got.Phrase, tt.phrase)
			}
		})
	}
}

func TestParseDurationNoTokens(t *testing.T) {
	if _, err := ParseDuration("set a timer"); err != ErrNoDuration {
		t.Errorf("err = %v, want ErrNoDuration", err)
	}
	if _, err := ParseDuration("remind me later"); err != ErrNoDuration {
		t.Errorf("err = %v, want ErrNoDuration", err)
	}
}

func TestParseDurationZeroTotal(t *testing.T) {
	if _, err := ParseDuration("set a timer for 0 seconds"); err != ErrZeroDuration {
		t.Errorf("err = %v, want ErrZeroDuration", err)
	}
	if _, err := ParseDuration("set a timer for 0 minutes 0 seconds"); err != ErrZeroDuration {
		t.Errorf("err = %v, want ErrZeroDuration", err)
	}
}

func TestFormatDigital(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{65, "1:05"},
		{600, "10:00"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatDigital(tt.seconds); got != tt.want {
			t.Errorf("FormatDigital(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestHandAngle(t *testing.T) {
	if got := HandAngle(60, 60); got != 0 {
		t.Errorf("full remaining: angle = %v, want 0", got)
	}
	if got := HandAngle(60, 30); got != 180 {
		t.Errorf("half elapsed: angle = %v, want 180", got)
	}
	if got := HandAngle(60, 0); got != 360 {
		t.Errorf("complete: angle = %v, want 360", got)
	}
	if got := HandAngle(0, 0); got != 0 {
		t.Errorf("zero duration: angle = %v, want 0", got)
	}
}
