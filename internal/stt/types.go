// Package stt provides speech-to-text transcription and the wake-word /
// foreground recognition pair for Orion.
package stt

import (
	"context"
	"time"
)

// Provider is the interface all STT providers must implement
type Provider interface {
	// Name returns the provider identifier (e.g., "whisper")
	Name() string

	// Transcribe converts audio to text
	Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error)

	// Health checks if the provider is available
	Health(ctx context.Context) error

	// Capabilities returns the provider's feature set
	Capabilities() ProviderCapabilities
}

// TranscribeRequest represents a transcription request
type TranscribeRequest struct {
	Audio      []byte `json:"-"`                  // Raw audio data
	Format     string `json:"format,omitempty"`   // Audio format (wav, pcm)
	SampleRate int    `json:"sample_rate"`        // Sample rate in Hz
	Channels   int    `json:"channels"`           // Number of channels
	Language   string `json:"language,omitempty"` // Language code (e.g., "en")
}

// TranscribeResponse represents a transcription result
type TranscribeResponse struct {
	Text           string        `json:"text"`            // Transcribed text
	Confidence     float64       `json:"confidence"`      // Overall confidence (0-1)
	Language       string        `json:"language"`        // Detected/specified language
	ProcessingTime time.Duration `json:"processing_time"` // How long transcription took
	IsFinal        bool          `json:"is_final"`        // True if this is a final result
}

// ProviderCapabilities describes what features a provider supports
type ProviderCapabilities struct {
	SupportedLanguages []string `json:"supported_languages"`
	MaxAudioLengthSec  int      `json:"max_audio_length_sec"`
	AvgLatencyMs       int      `json:"avg_latency_ms"`
	IsLocal            bool     `json:"is_local"`
}

// Config holds STT configuration
type Config struct {
	Provider string `json:"provider"` // Provider name
	Model    string `json:"model"`    // Model name
	Language string `json:"language"` // Default language
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Provider: "whisper",
		Model:    "whisper-1",
		Language: "en",
	}
}
