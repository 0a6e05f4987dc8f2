// Package audio provides microphone amplitude metering, silence
// endpointing, and waveform display frames for Orion. Audio capture and
// playback happen in the browser; this package owns the math and state.
package audio

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrDeviceNotFound   = errors.New("audio device not found")
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrInvalidFormat    = errors.New("invalid audio format")
)

// Format represents audio encoding format
type Format string

const (
	FormatWAV Format = "wav"
	FormatPCM Format = "pcm"
)

// Chunk represents a chunk of audio data received from the browser
type Chunk struct {
	Data       []byte        `json:"data"`        // Raw audio bytes
	Format     Format        `json:"format"`      // Audio format
	SampleRate int           `json:"sample_rate"` // Sample rate in Hz
	Channels   int           `json:"channels"`    // Number of channels
	Duration   time.Duration `json:"duration"`    // Duration of this chunk
	Timestamp  time.Time     `json:"timestamp"`   // When this chunk was captured
	Level      float64       `json:"level"`       // Peak-to-peak amplitude, 0..1
}

// Segment represents a complete captured utterance
type Segment struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Audio     []byte        `json:"audio"`
	Format    Format        `json:"format"`
}
