package stt

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RecognizerState is the lifecycle state of a recognizer instance.
type RecognizerState string

const (
	StateIdle      RecognizerState = "idle"
	StateStarting  RecognizerState = "starting"
	StateListening RecognizerState = "listening"
)

// Mode distinguishes the two recognizer instances.
type Mode int

const (
	// ModeWake listens continuously and restarts itself after every end
	// event until explicitly stopped.
	ModeWake Mode = iota
	// ModeForeground captures a single utterance and returns to idle.
	ModeForeground
)

// RecognizerConfig holds recognizer settings.
type RecognizerConfig struct {
	Mode       Mode
	SampleRate int
	Channels   int
	Language   string
	Timeout    time.Duration
}

// Recognizer wraps an STT provider with the idle/starting/listening
// lifecycle. Audio segments are fed in from the audio manager; final
// transcripts and classified errors are reported through callbacks.
type Recognizer struct {
	config   RecognizerConfig
	provider Provider
	logger   zerolog.Logger

	mu         sync.Mutex
	state      RecognizerState
	generation uint64 // bumped on Start/Stop so stale results are dropped

	onResult func(text string)
	onError  func(err error)
	onEnd    func()
}

// NewRecognizer creates a recognizer over the given provider.
func NewRecognizer(config RecognizerConfig, provider Provider, logger zerolog.Logger) *Recognizer {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	name := "foreground"
	if config.Mode == ModeWake {
		name = "wake"
	}
	return &Recognizer{
		config:   config,
		provider: provider,
		logger:   logger.With().Str("component", "recognizer").Str("mode", name).Logger(),
		state:    StateIdle,
	}
}

// OnResult registers the final-transcript callback.
func (r *Recognizer) OnResult(fn func(text string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onResult = fn
}

// OnError registers the error callback. Errors are already classified.
func (r *Recognizer) OnError(fn func(err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = fn
}

// OnEnd registers the callback invoked whenever the recognizer returns
// to idle (single-shot completion or stop).
func (r *Recognizer) OnEnd(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEnd = fn
}

// State returns the current lifecycle state.
func (r *Recognizer) State() RecognizerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Listening reports whether the recognizer accepts audio.
func (r *Recognizer) Listening() bool {
	return r.State() == StateListening
}

// Start moves idle → starting → listening. Starting an already-listening
// recognizer is a no-op.
func (r *Recognizer) Start() {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return
	}
	r.state = StateStarting
	r.generation++
	// No device warm-up on this side; capture lives in the browser.
	r.state = StateListening
	r.mu.Unlock()

	r.logger.Debug().Msg("Recognizer listening")
}

// Stop returns the recognizer to idle. Idempotent: stopping an idle
// recognizer does nothing and never throws it back into listening.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	if r.state == StateIdle {
		r.mu.Unlock()
		return
	}
	r.state = StateIdle
	r.generation++
	onEnd := r.onEnd
	r.mu.Unlock()

	r.logger.Debug().Msg("Recognizer stopped")
	if onEnd != nil {
		onEnd()
	}
}

// Feed hands a completed audio segment to the recognizer. Ignored unless
// listening. Transcription runs asynchronously; results arriving after a
// Stop are dropped.
func (r *Recognizer) Feed(audio []byte) {
	r.mu.Lock()
	if r.state != StateListening {
		r.mu.Unlock()
		return
	}
	gen := r.generation
	r.mu.Unlock()

	go r.transcribe(audio, gen)
}

func (r *Recognizer) transcribe(audio []byte, gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	resp, err := r.provider.Transcribe(ctx, &TranscribeRequest{
		Audio:      audio,
		Format:     "pcm",
		SampleRate: r.config.SampleRate,
		Channels:   r.config.Channels,
		Language:   r.config.Language,
	})

	r.mu.Lock()
	if gen != r.generation {
		// Torn down while transcribing; drop the result.
		r.mu.Unlock()
		return
	}
	onResult := r.onResult
	onError := r.onError
	onEnd := r.onEnd
	single := r.config.Mode == ModeForeground
	if single {
		r.state = StateIdle
		r.generation++
	}
	r.mu.Unlock()

	if err != nil {
		classified := Classify(err)
		r.logger.Warn().Err(err).Msg("Transcription failed")
		if onError != nil {
			onError(classified)
		}
	} else if onResult != nil {
		onResult(resp.Text)
	}

	if single && onEnd != nil {
		onEnd()
	}
}
