package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrRemoteUnavailable covers every remote interpreter failure mode:
// missing configuration, network errors, non-2xx statuses, and empty
// completions. The router treats them all the same.
var ErrRemoteUnavailable = errors.New("remote interpreter unavailable")

const systemPrompt = "You are Orion, a strategic AI voice assistant. Address the user as Commander. " +
	"Keep replies concise and mission-focused; they will be spoken aloud, so avoid markdown, " +
	"lists, and code. Two or three sentences at most."

// RemoteConfig configures the chat-completions client.
type RemoteConfig struct {
	URL       string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Remote interprets commands through an OpenAI-compatible chat
// completions endpoint.
type Remote struct {
	config RemoteConfig
	client *http.Client
	logger zerolog.Logger
}

// NewRemote creates a remote interpreter client.
func NewRemote(config RemoteConfig, logger zerolog.Logger) *Remote {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 300
	}
	return &Remote{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With().Str("component", "intent-remote").Logger(),
	}
}

// Configured reports whether the client has an endpoint and key to call.
func (r *Remote) Configured() bool {
	return r.config.URL != "" && r.config.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Interpret sends the command to the model and returns its reply.
func (r *Remote) Interpret(ctx context.Context, command string) (Result, error) {
	if !r.Configured() {
		return Result{}, fmt.Errorf("%w: no endpoint or API key configured", ErrRemoteUnavailable)
	}

	body, err := json.Marshal(chatRequest{
		Model: r.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: command},
		},
		Temperature: 0.7,
		MaxTokens:   r.config.MaxTokens,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.URL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.config.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.Warn().Int("status", resp.StatusCode).Msg("Remote interpreter error")
		return Result{}, fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if parsed.Error != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrRemoteUnavailable, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return Result{}, fmt.Errorf("%w: empty completion", ErrRemoteUnavailable)
	}

	return Result{
		Intent:  IntentRemote,
		Message: parsed.Choices[0].Message.Content,
		Source:  "remote",
	}, nil
}
