package audio

import (
	"encoding/base64"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/orionvoice/orion/internal/bus"
)

// ManagerConfig holds audio intake configuration.
type ManagerConfig struct {
	SampleRate       int
	Channels         int
	BitDepth         int
	SilenceThreshold float64
	MaxSilence       time.Duration
	MaxUtterance     time.Duration
	WaveFrameRate    int
	WavePoints       int
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() *ManagerConfig {
	return &ManagerConfig{
		SampleRate:       16000,
		Channels:         1,
		BitDepth:         16,
		SilenceThreshold: 0.04,
		MaxSilence:       900 * time.Millisecond,
		MaxUtterance:     12 * time.Second,
		WaveFrameRate:    30,
		WavePoints:       128,
	}
}

// Manager coordinates audio intake from the browser: it meters every
// chunk, drives the waveform display, and accumulates utterances while a
// capture is open. The microphone itself lives browser-side; a capture
// failure there arrives as a device error and must leave the display
// inactive.
type Manager struct {
	config *ManagerConfig
	meter  *LevelMeter
	wave   *Wave

	eventBus *bus.EventBus
	logger   zerolog.Logger

	mu            sync.Mutex
	capturing     bool
	endpointer    *Endpointer
	buffer        []byte
	start         time.Time
	sawSpeech     bool
	onUtterance   func(Segment)
	onDeviceError func(error)
}

// NewManager creates a new audio manager.
func NewManager(config *ManagerConfig, eventBus *bus.EventBus, logger zerolog.Logger) *Manager {
	if config == nil {
		config = DefaultManagerConfig()
	}

	m := &Manager{
		config:   config,
		meter:    NewLevelMeter(3),
		eventBus: eventBus,
		logger:   logger.With().Str("component", "audio").Logger(),
		buffer:   make([]byte, 0, config.SampleRate*2*10),
	}
	m.wave = NewWave(config.WavePoints, config.WaveFrameRate, func(f Frame) {
		if eventBus != nil {
			eventBus.Publish(bus.Event{
				Type: bus.EventTypeWaveFrame,
				Data: map[string]any{"frame": f},
			})
		}
	})
	return m
}

// OnUtterance registers the callback invoked with each completed capture.
func (m *Manager) OnUtterance(fn func(Segment)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUtterance = fn
}

// OnDeviceError registers the callback invoked when the browser reports
// a capture failure.
func (m *Manager) OnDeviceError(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDeviceError = fn
}

// BeginCapture opens an utterance capture. Chunks arriving until the
// endpointer reports end-of-speech (or the utterance cap) are
// accumulated. Idempotent while a capture is already open.
func (m *Manager) BeginCapture() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capturing {
		return
	}
	m.capturing = true
	m.sawSpeech = false
	m.start = time.Now()
	m.buffer = m.buffer[:0]
	m.endpointer = NewEndpointer(m.config.SilenceThreshold, m.config.MaxSilence)
	m.meter.Reset()
	m.wave.SetActive(true)
	m.logger.Debug().Msg("Capture opened")
}

// EndCapture closes any open capture without emitting an utterance.
// Safe to call when no capture is open.
func (m *Manager) EndCapture() {
	m.mu.Lock()
	open := m.capturing
	m.capturing = false
	m.mu.Unlock()

	m.wave.SetActive(false)
	if open {
		m.logger.Debug().Msg("Capture closed")
	}
}

// ProcessChunk handles one base64-encoded PCM chunk from the browser.
func (m *Manager) ProcessChunk(audioBase64 string) {
	audioData, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to decode audio chunk")
		return
	}

	level := m.meter.Process(audioData, m.config.BitDepth)
	m.wave.SetLoudness(level)
	if m.eventBus != nil {
		m.eventBus.Publish(bus.Event{
			Type: bus.EventTypeAudioLevel,
			Data: map[string]any{"level": level},
		})
	}

	m.mu.Lock()
	if !m.capturing {
		m.mu.Unlock()
		return
	}

	live := m.endpointer.Observe(level)
	if live {
		m.sawSpeech = true
		m.buffer = append(m.buffer, audioData...)
	}

	done := (m.sawSpeech && !live) || time.Since(m.start) > m.config.MaxUtterance
	if !done {
		m.mu.Unlock()
		return
	}

	m.capturing = false
	segment := Segment{
		StartTime: m.start,
		EndTime:   time.Now(),
		Duration:  time.Since(m.start),
		Audio:     append([]byte(nil), m.buffer...),
		Format:    FormatPCM,
	}
	callback := m.onUtterance
	m.buffer = m.buffer[:0]
	m.mu.Unlock()

	m.wave.SetActive(false)
	m.logger.Debug().Dur("duration", segment.Duration).Int("bytes", len(segment.Audio)).Msg("Utterance captured")

	if m.eventBus != nil {
		m.eventBus.Publish(bus.Event{
			Type: bus.EventTypeSpeechEnd,
			Data: map[string]any{"duration": segment.Duration, "audio_len": len(segment.Audio)},
		})
	}
	if callback != nil {
		go callback(segment)
	}
}

// DeviceError reports a browser-side capture failure. The waveform is
// forced inactive, no frame is rendered for the failed capture, and the
// registered callback hears about it so listening can shut down.
func (m *Manager) DeviceError(err error) {
	m.EndCapture()
	m.logger.Warn().Err(err).Msg("Audio device unavailable")
	if m.eventBus != nil {
		m.eventBus.Publish(bus.Event{
			Type: bus.EventTypeAudioError,
			Data: map[string]any{"error": err.Error()},
		})
	}

	m.mu.Lock()
	callback := m.onDeviceError
	m.mu.Unlock()
	if callback != nil {
		callback(err)
	}
}

// Wave exposes the display generator, for wiring the playback side.
func (m *Manager) Wave() *Wave {
	return m.wave
}

// Config returns the active configuration.
func (m *Manager) Config() *ManagerConfig {
	return m.config
}
