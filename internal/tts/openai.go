package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// OpenAI TTS voices
const (
	VoiceAlloy   = "alloy"   // Neutral, balanced
	VoiceEcho    = "echo"    // Male, warm
	VoiceFable   = "fable"   // British, expressive
	VoiceOnyx    = "onyx"    // Male, deep
	VoiceNova    = "nova"    // Female, warm
	VoiceShimmer = "shimmer" // Female, clear and bright
)

// OpenAIProvider implements TTS using OpenAI's TTS API
type OpenAIProvider struct {
	apiKey string
	client *http.Client
	logger zerolog.Logger
	config *OpenAIConfig
}

// OpenAIConfig holds OpenAI TTS configuration
type OpenAIConfig struct {
	APIKey       string        `json:"api_key"`
	BaseURL      string        `json:"base_url"`
	Model        string        `json:"model"`         // tts-1 or tts-1-hd
	DefaultVoice string        `json:"default_voice"` // alloy, echo, fable, onyx, nova, shimmer
	Speed        float64       `json:"speed"`         // 0.25 to 4.0
	Timeout      time.Duration `json:"timeout"`
}

// DefaultOpenAIConfig returns sensible defaults
func DefaultOpenAIConfig() *OpenAIConfig {
	return &OpenAIConfig{
		BaseURL:      "https://api.openai.com/v1/audio/speech",
		Model:        "tts-1",
		DefaultVoice: VoiceOnyx, // male, deep; Orion's register
		Speed:        1.0,
		Timeout:      30 * time.Second,
	}
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(logger zerolog.Logger, config *OpenAIConfig) *OpenAIProvider {
	if config == nil {
		config = DefaultOpenAIConfig()
	}

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	return &OpenAIProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With().Str("provider", "openai-tts").Logger(),
		config: config,
	}
}

// Name returns the provider identifier
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// openAITTSRequest is the request format for OpenAI TTS API
type openAITTSRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
}

// Synthesize converts text to audio using OpenAI TTS
func (p *OpenAIProvider) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	if p.apiKey == "" {
		return nil, ErrProviderUnavailable
	}

	startTime := time.Now()

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = p.config.DefaultVoice
	}
	speed := req.Speed
	if speed == 0 {
		speed = p.config.Speed
	}

	ttsReq := openAITTSRequest{
		Model:          p.config.Model,
		Input:          req.Text,
		Voice:          voiceID,
		ResponseFormat: "mp3", // MP3 is efficient and widely supported
		Speed:          speed,
	}

	body, err := json.Marshal(ttsReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	p.logger.Debug().
		Str("voice", voiceID).
		Str("model", p.config.Model).
		Int("textLen", len(req.Text)).
		Msg("Sending TTS request to OpenAI")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		p.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", string(bodyBytes)).
			Msg("OpenAI TTS request failed")
		return nil, fmt.Errorf("OpenAI TTS error: %s", string(bodyBytes))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	processingTime := time.Since(startTime)
	p.logger.Info().
		Str("voice", voiceID).
		Int("audioBytes", len(audioData)).
		Dur("processingTime", processingTime).
		Msg("OpenAI TTS synthesis complete")

	return &SynthesizeResponse{
		Audio:          audioData,
		Format:         "mp3",
		SampleRate:     24000, // OpenAI TTS uses 24kHz
		ProcessingTime: processingTime,
		VoiceID:        voiceID,
		Provider:       p.Name(),
	}, nil
}

// ListVoices returns available OpenAI voices
func (p *OpenAIProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	return []Voice{
		{ID: VoiceNova, Name: "Nova (Female, Warm)", Language: "en", Gender: "female"},
		{ID: VoiceShimmer, Name: "Shimmer (Female, Clear)", Language: "en", Gender: "female"},
		{ID: VoiceAlloy, Name: "Alloy (Neutral)", Language: "en", Gender: "neutral"},
		{ID: VoiceEcho, Name: "Echo (Male, Warm)", Language: "en", Gender: "male"},
		{ID: VoiceOnyx, Name: "Onyx (Male, Deep)", Language: "en", Gender: "male"},
		{ID: VoiceFable, Name: "Fable (British)", Language: "en", Gender: "neutral"},
	}, nil
}

// Health checks if OpenAI API is available
func (p *OpenAIProvider) Health(ctx context.Context) error {
	if p.apiKey == "" {
		return ErrProviderUnavailable
	}
	return nil
}
