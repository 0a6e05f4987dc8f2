package tts

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/orionvoice/orion/internal/bus"
)

// Speaker turns response text into playback. It owns the "speaking"
// flag: at most one utterance is in flight, and starting a new one
// cancels whatever is playing. Audio bytes are handed to the gateway for
// browser playback; the browser reports playback end.
type Speaker struct {
	provider Provider
	config   *Config
	eventBus *bus.EventBus
	logger   zerolog.Logger

	mu         sync.Mutex
	speaking   bool
	generation uint64
	voiceID    string
	voicePick  bool // voice selection already ran

	onAudio func(utteranceID string, audio []byte, format string)
	onHalt  func() // tells the browser to cut playback immediately
}

// NewSpeaker creates a speaker over the given provider.
func NewSpeaker(provider Provider, config *Config, eventBus *bus.EventBus, logger zerolog.Logger) *Speaker {
	if config == nil {
		config = DefaultConfig()
	}
	return &Speaker{
		provider: provider,
		config:   config,
		eventBus: eventBus,
		logger:   logger.With().Str("component", "speaker").Logger(),
	}
}

// OnAudio registers the playback sink.
func (s *Speaker) OnAudio(fn func(utteranceID string, audio []byte, format string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAudio = fn
}

// OnHalt registers the immediate-stop signal sink.
func (s *Speaker) OnHalt(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onHalt = fn
}

// Speaking reports whether an utterance is in flight.
func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Speak synthesizes and plays text. Any currently playing utterance is
// cancelled first so audio never overlaps. Synthesis failure ends the
// attempt silently (logged, speaking state cleared) and is returned to
// the caller.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.speaking {
		// Cancel in-flight playback before starting over.
		s.generation++
		if s.onHalt != nil {
			go s.onHalt()
		}
	}
	s.speaking = true
	s.generation++
	gen := s.generation
	onAudio := s.onAudio
	s.mu.Unlock()

	s.publish(bus.EventTypeSpeakingStarted, map[string]any{"text": text})

	voice, err := s.pickVoice(ctx)
	if err != nil {
		// No voices at all: silent no-op.
		s.logger.Warn().Err(err).Msg("No voice available, skipping speech")
		s.finish(gen)
		return err
	}

	resp, err := s.provider.Synthesize(ctx, &SynthesizeRequest{
		Text:    text,
		VoiceID: voice,
		Speed:   s.config.Speed,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Synthesis failed")
		s.finish(gen)
		return err
	}

	s.mu.Lock()
	stale := gen != s.generation
	s.mu.Unlock()
	if stale {
		// Pre-empted by a newer Speak or a Stop while synthesizing.
		return nil
	}

	if onAudio != nil {
		onAudio(strconv.FormatUint(gen, 10), resp.Audio, resp.Format)
	} else {
		// Nothing to play through; treat as immediately finished.
		s.finish(gen)
	}
	return nil
}

// PlaybackEnded is called by the gateway when the browser finishes
// playing an utterance. Stale ids (cancelled utterances) are ignored.
func (s *Speaker) PlaybackEnded(utteranceID string) {
	gen, err := strconv.ParseUint(utteranceID, 10, 64)
	if err != nil {
		return
	}
	s.finish(gen)
}

// Stop halts playback immediately and clears the speaking flag.
// Idempotent: stopping an idle speaker does nothing.
func (s *Speaker) Stop() {
	s.mu.Lock()
	if !s.speaking {
		s.mu.Unlock()
		return
	}
	s.speaking = false
	s.generation++
	onHalt := s.onHalt
	s.mu.Unlock()

	if onHalt != nil {
		onHalt()
	}
	s.publish(bus.EventTypeSpeakingStopped, nil)
	s.logger.Debug().Msg("Speech stopped")
}

// finish clears the speaking flag if gen is still the live utterance.
func (s *Speaker) finish(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || !s.speaking {
		s.mu.Unlock()
		return
	}
	s.speaking = false
	s.mu.Unlock()

	s.publish(bus.EventTypeSpeakingStopped, nil)
}

// pickVoice runs voice selection once and caches the result.
func (s *Speaker) pickVoice(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.voicePick {
		id := s.voiceID
		s.mu.Unlock()
		if id == "" {
			return "", ErrNoVoices
		}
		return id, nil
	}
	s.mu.Unlock()

	voices, err := s.provider.ListVoices(ctx)
	if err != nil {
		voices = nil
	}
	id := SelectVoice(voices, s.config.PreferredVoices, s.config.AvoidVoices)

	s.mu.Lock()
	s.voicePick = true
	s.voiceID = id
	s.mu.Unlock()

	if id == "" {
		return "", ErrNoVoices
	}
	s.logger.Info().Str("voice", id).Msg("Voice selected")
	return id, nil
}

func (s *Speaker) publish(t bus.EventType, data map[string]any) {
	if s.eventBus != nil {
		s.eventBus.Publish(bus.Event{Type: t, Data: data})
	}
}
