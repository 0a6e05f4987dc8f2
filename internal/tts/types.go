// Package tts provides text-to-speech synthesis and playback control for
// Orion.
package tts

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrProviderUnavailable = errors.New("TTS provider unavailable")
	ErrNoVoices            = errors.New("no voices available")
	ErrTextTooLong         = errors.New("text exceeds maximum length")
)

// Provider is the interface all TTS providers must implement
type Provider interface {
	// Name returns the provider identifier (e.g., "openai")
	Name() string

	// Synthesize converts text to audio
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error)

	// ListVoices returns available voices
	ListVoices(ctx context.Context) ([]Voice, error)

	// Health checks if the provider is available
	Health(ctx context.Context) error
}

// SynthesizeRequest represents a synthesis request
type SynthesizeRequest struct {
	Text    string  `json:"text"`
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed,omitempty"`  // 0.5 to 2.0
	Format  string  `json:"format,omitempty"` // wav, mp3, opus
}

// SynthesizeResponse represents a synthesis result
type SynthesizeResponse struct {
	Audio          []byte        `json:"audio"`           // Raw audio data
	Format         string        `json:"format"`          // Audio format
	SampleRate     int           `json:"sample_rate"`     // Sample rate in Hz
	Duration       time.Duration `json:"duration"`        // Audio duration
	ProcessingTime time.Duration `json:"processing_time"` // How long synthesis took
	VoiceID        string        `json:"voice_id"`        // Voice used
	Provider       string        `json:"provider"`        // Provider name
}

// Voice represents an available TTS voice
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   string `json:"gender"` // male, female, neutral
}

// Config holds TTS configuration
type Config struct {
	Provider        string   `json:"provider"`         // Provider name
	Model           string   `json:"model"`            // Model name
	Speed           float64  `json:"speed"`            // Default speed
	PreferredVoices []string `json:"preferred_voices"` // ordered name substrings
	AvoidVoices     []string `json:"avoid_voices"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Provider: "openai",
		Model:    "tts-1",
		Speed:    1.0,
		PreferredVoices: []string{
			"onyx", "male", "man", "david", "mark", "george", "james", "richard",
		},
		AvoidVoices: []string{
			"female", "woman", "zira", "hazel", "susan", "samantha",
		},
	}
}
