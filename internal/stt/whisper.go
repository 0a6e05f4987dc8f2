package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// WhisperProvider implements STT against a Whisper-compatible HTTP API.
type WhisperProvider struct {
	apiKey string
	client *http.Client
	logger zerolog.Logger
	config *WhisperConfig
}

// WhisperConfig holds Whisper API configuration
type WhisperConfig struct {
	APIKey   string        `json:"api_key"`
	BaseURL  string        `json:"base_url"`
	Model    string        `json:"model"`    // "whisper-1"
	Language string        `json:"language"` // Optional language hint
	Timeout  time.Duration `json:"timeout"`
}

// DefaultWhisperConfig returns sensible defaults
func DefaultWhisperConfig() *WhisperConfig {
	return &WhisperConfig{
		BaseURL:  "https://api.openai.com/v1/audio/transcriptions",
		Model:    "whisper-1",
		Language: "en",
		Timeout:  30 * time.Second,
	}
}

// NewWhisperProvider creates a new Whisper API provider
func NewWhisperProvider(logger zerolog.Logger, config *WhisperConfig) *WhisperProvider {
	if config == nil {
		config = DefaultWhisperConfig()
	}

	// Try to get API key from config, then environment
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	return &WhisperProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With().Str("provider", "whisper").Logger(),
		config: config,
	}
}

// Name returns the provider identifier
func (p *WhisperProvider) Name() string {
	return "whisper"
}

// Transcribe sends audio to the Whisper API for transcription
func (p *WhisperProvider) Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error) {
	startTime := time.Now()

	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: API key not configured", ErrDeviceUnavailable)
	}
	if len(req.Audio) == 0 {
		return nil, ErrNoSpeech
	}

	// Wrap PCM data in a WAV container
	wavData := req.Audio
	if req.Format != "wav" {
		wavData = wrapWAV(req.Audio, req.SampleRate, req.Channels)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.WriteField("model", p.config.Model); err != nil {
		return nil, fmt.Errorf("failed to write model field: %w", err)
	}
	language := req.Language
	if language == "" {
		language = p.config.Language
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return nil, fmt.Errorf("failed to write language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.config.BaseURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		p.logger.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Whisper API error")
		return nil, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if NormalizeTranscript(result.Text) == "" {
		return nil, ErrNoSpeech
	}

	processingTime := time.Since(startTime)
	p.logger.Info().Str("text", result.Text).Dur("time", processingTime).Msg("Transcription complete")

	return &TranscribeResponse{
		Text:           result.Text,
		Confidence:     0.95, // Whisper doesn't provide confidence
		Language:       language,
		ProcessingTime: processingTime,
		IsFinal:        true,
	}, nil
}

// Health checks if the provider is configured
func (p *WhisperProvider) Health(ctx context.Context) error {
	if p.apiKey == "" {
		return fmt.Errorf("API key not configured")
	}
	return nil
}

// Capabilities returns the provider's feature set
func (p *WhisperProvider) Capabilities() ProviderCapabilities {
	return ProviderCapabilities{
		SupportedLanguages: []string{"en", "es", "fr", "de", "ja", "zh"},
		MaxAudioLengthSec:  600,
		AvgLatencyMs:       1500,
		IsLocal:            false,
	}
}

// wrapWAV creates a WAV container around raw PCM data
func wrapWAV(pcmData []byte, sampleRate, channels int) []byte {
	if sampleRate == 0 {
		sampleRate = 16000
	}
	if channels == 0 {
		channels = 1
	}

	bitsPerSample := 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(pcmData)
	fileSize := 36 + dataSize

	header := make([]byte, 44)
	// RIFF header
	copy(header[0:4], "RIFF")
	putLE32(header[4:8], fileSize)
	copy(header[8:12], "WAVE")

	// fmt subchunk
	copy(header[12:16], "fmt ")
	putLE32(header[16:20], 16) // Subchunk1Size
	header[20] = 1             // AudioFormat (PCM)
	header[22] = byte(channels)
	putLE32(header[24:28], sampleRate)
	putLE32(header[28:32], byteRate)
	header[32] = byte(blockAlign)
	header[34] = byte(bitsPerSample)

	// data subchunk
	copy(header[36:40], "data")
	putLE32(header[40:44], dataSize)

	return append(header, pcmData...)
}

func putLE32(b []byte, v int) {
	b[0] = byte(v & 0xff)
	b[1] = byte((v >> 8) & 0xff)
	b[2] = byte((v >> 16) & 0xff)
	b[3] = byte((v >> 24) & 0xff)
}
