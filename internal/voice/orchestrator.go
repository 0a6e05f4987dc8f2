// Package voice coordinates Orion's listening loop: wake phrase
// detection, foreground command capture, interpretation, and speech.
package voice

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/orionvoice/orion/internal/audio"
	"github.com/orionvoice/orion/internal/bus"
	"github.com/orionvoice/orion/internal/intent"
	"github.com/orionvoice/orion/internal/mission"
	"github.com/orionvoice/orion/internal/stt"
	"github.com/orionvoice/orion/internal/timer"
	"github.com/orionvoice/orion/internal/tts"
)

// State is the orchestrator's single mode. Exactly one holds at a time;
// every transition goes through setState.
type State string

const (
	// StateIdle: not listening, not speaking.
	StateIdle State = "idle"
	// StateWake: passively listening for a wake phrase.
	StateWake State = "wake_listening"
	// StateForeground: actively capturing one command.
	StateForeground State = "foreground_listening"
	// StateSpeaking: playing a response; listening is suspended so the
	// assistant does not hear itself.
	StateSpeaking State = "speaking"
)

// Config holds the orchestrator settings.
type Config struct {
	WakeEnabled     bool
	Acknowledgement string
	GraceDelay      time.Duration // pause before re-arming wake listening after speech
	InterpretTime   time.Duration
}

// Orchestrator runs the conversation loop. It owns the mode state
// machine; the audio manager, recognizers, speaker, interpreter, timer
// engine, and mission log are driven from here.
type Orchestrator struct {
	config Config

	audio   *audio.Manager
	wakeRec *stt.Recognizer
	fgRec   *stt.Recognizer
	matcher *stt.WakeMatcher
	speaker *tts.Speaker
	router  *intent.Router
	engine  *timer.Engine
	log     *mission.Log

	eventBus *bus.EventBus
	logger   zerolog.Logger

	mu          sync.Mutex
	state       State
	afterSpeech func()
	rearm       uint64 // invalidates pending grace-delay re-arms
}

// NewOrchestrator wires the conversation loop together.
func NewOrchestrator(
	cfg Config,
	audioMgr *audio.Manager,
	wakeRec, fgRec *stt.Recognizer,
	matcher *stt.WakeMatcher,
	speaker *tts.Speaker,
	router *intent.Router,
	engine *timer.Engine,
	missionLog *mission.Log,
	eventBus *bus.EventBus,
	logger zerolog.Logger,
) *Orchestrator {
	if cfg.GraceDelay <= 0 {
		cfg.GraceDelay = 400 * time.Millisecond
	}
	if cfg.InterpretTime <= 0 {
		cfg.InterpretTime = 20 * time.Second
	}

	o := &Orchestrator{
		config:   cfg,
		audio:    audioMgr,
		wakeRec:  wakeRec,
		fgRec:    fgRec,
		matcher:  matcher,
		speaker:  speaker,
		router:   router,
		engine:   engine,
		log:      missionLog,
		eventBus: eventBus,
		logger:   logger.With().Str("component", "voice").Logger(),
		state:    StateIdle,
	}

	audioMgr.OnUtterance(o.onUtterance)
	audioMgr.OnDeviceError(o.onDeviceError)
	wakeRec.OnResult(o.onWakeTranscript)
	wakeRec.OnError(o.onWakeError)
	fgRec.OnResult(o.onCommandTranscript)
	fgRec.OnError(o.onCommandError)
	engine.OnComplete(o.onTimerComplete)

	return o
}

// State returns the current mode.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Start begins wake phrase listening. No-op unless idle.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	if o.state != StateIdle || !o.config.WakeEnabled {
		o.mu.Unlock()
		return
	}
	o.setStateLocked(StateWake)
	o.mu.Unlock()

	o.wakeRec.Start()
	o.audio.BeginCapture()
	o.logger.Info().Msg("Wake listening started")
}

// Stop drops everything back to idle: speech is cut, recognizers stop,
// capture closes. Idempotent.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.rearm++
	o.afterSpeech = nil
	already := o.state == StateIdle
	o.setStateLocked(StateIdle)
	o.mu.Unlock()

	o.speaker.Stop()
	o.wakeRec.Stop()
	o.fgRec.Stop()
	o.audio.EndCapture()
	if !already {
		o.logger.Info().Msg("Stopped")
	}
}

// PlaybackEnded reports that the browser finished playing an utterance.
func (o *Orchestrator) PlaybackEnded(utteranceID string) {
	o.speaker.PlaybackEnded(utteranceID)
	if o.speaker.Speaking() {
		return
	}

	o.mu.Lock()
	if o.state != StateSpeaking {
		o.mu.Unlock()
		return
	}
	after := o.afterSpeech
	o.afterSpeech = nil
	o.mu.Unlock()

	if after != nil {
		after()
	}
}

// SetWakePhrases swaps the wake phrase list, for config hot reload.
func (o *Orchestrator) SetWakePhrases(phrases []string) {
	o.matcher.SetPhrases(phrases)
	o.logger.Info().Strs("phrases", o.matcher.Phrases()).Msg("Wake phrases updated")
}

// onUtterance routes a completed capture to whichever recognizer the
// current mode feeds.
func (o *Orchestrator) onUtterance(seg audio.Segment) {
	switch o.State() {
	case StateWake:
		o.wakeRec.Feed(seg.Audio)
		// Wake listening is continuous; reopen for the next utterance.
		o.audio.BeginCapture()
	case StateForeground:
		o.fgRec.Feed(seg.Audio)
	}
}

// onWakeTranscript checks a background transcript for a wake phrase.
func (o *Orchestrator) onWakeTranscript(text string) {
	normalized := stt.NormalizeTranscript(text)
	if normalized == "" {
		return
	}

	match := o.matcher.Match(normalized)
	if match == nil {
		o.logger.Debug().Str("heard", normalized).Msg("No wake phrase")
		return
	}

	o.mu.Lock()
	if o.state != StateWake {
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	o.logger.Info().Str("phrase", match.Phrase).Str("command", match.Command).Msg("Wake phrase detected")
	o.publish(bus.EventTypeWakeDetected, map[string]any{"phrase": match.Phrase, "command": match.Command})

	o.wakeRec.Stop()
	o.audio.EndCapture()

	if match.Command != "" {
		// Phrase and command arrived in one utterance.
		o.handleCommand(match.Command)
		return
	}

	// Bare wake: acknowledge, then open foreground listening.
	o.speak(o.config.Acknowledgement, o.enterForeground)
}

func (o *Orchestrator) onWakeError(err error) {
	// Background recognition failures stay silent; keep listening.
	o.logger.Debug().Err(err).Msg("Wake recognition error")
}

// enterForeground opens a single-command capture.
func (o *Orchestrator) enterForeground() {
	o.mu.Lock()
	o.setStateLocked(StateForeground)
	o.mu.Unlock()

	o.fgRec.Start()
	o.audio.BeginCapture()
}

// onCommandTranscript handles the foreground command.
func (o *Orchestrator) onCommandTranscript(text string) {
	o.audio.EndCapture()
	normalized := stt.NormalizeTranscript(text)
	if normalized == "" {
		o.onCommandError(stt.ErrNoSpeech)
		return
	}
	o.handleCommand(normalized)
}

// onCommandError speaks a distinct message per failure kind. Transient
// failures reopen the command capture; device and permission failures
// need the user to intervene, so listening drops to idle instead of
// retrying.
func (o *Orchestrator) onCommandError(err error) {
	o.audio.EndCapture()
	o.logger.Warn().Err(err).Msg("Command recognition failed")
	o.publish(bus.EventTypeSTTError, map[string]any{"error": err.Error()})

	after := o.toIdle
	if stt.Transient(err) {
		after = o.enterForeground
	}
	o.speak(stt.UserMessage(err), after)
}

// onDeviceError handles a browser-side capture failure: the microphone
// is gone, so announce it and drop to idle. The user restarts listening
// once the device is back.
func (o *Orchestrator) onDeviceError(err error) {
	if o.State() == StateIdle {
		return
	}
	classified := stt.Classify(err)
	o.logger.Warn().Err(err).Msg("Audio device failed, stopping listening")
	o.publish(bus.EventTypeSTTError, map[string]any{"error": classified.Error()})

	o.wakeRec.Stop()
	o.fgRec.Stop()
	o.speak(stt.UserMessage(classified), o.toIdle)
}

// toIdle parks the loop without re-arming wake listening.
func (o *Orchestrator) toIdle() {
	o.mu.Lock()
	o.rearm++
	o.setStateLocked(StateIdle)
	o.mu.Unlock()
}

// handleCommand runs one finalized command through the interpreter and
// speaks the response. The transcript is never dropped: it is logged to
// the mission and always produces a reply.
func (o *Orchestrator) handleCommand(command string) {
	o.publish(bus.EventTypeTranscript, map[string]any{"text": command})
	if err := o.log.Append(mission.SenderUser, command); err != nil {
		o.logger.Warn().Err(err).Msg("Failed to log user message")
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.config.InterpretTime)
	result := o.router.Interpret(ctx, command)
	cancel()

	if result.Timer != nil {
		if _, err := o.engine.Create(result.Timer.Seconds, result.Timer.Phrase); err != nil {
			o.logger.Warn().Err(err).Msg("Timer creation failed")
		}
	}

	if err := o.log.Append(mission.SenderAssistant, result.Message); err != nil {
		o.logger.Warn().Err(err).Msg("Failed to log assistant message")
	}
	o.publish(bus.EventTypeReply, map[string]any{
		"text":   result.Message,
		"intent": string(result.Intent),
		"source": result.Source,
	})

	o.speak(result.Message, o.resumeWake)
}

// onTimerComplete announces a finished timer. Listening is suspended
// for the announcement and resumes afterwards.
func (o *Orchestrator) onTimerComplete(_ timer.Timer, message string) {
	if err := o.log.Append(mission.SenderAssistant, message); err != nil {
		o.logger.Warn().Err(err).Msg("Failed to log timer announcement")
	}

	o.mu.Lock()
	interrupted := o.state == StateWake
	o.mu.Unlock()
	if interrupted {
		o.wakeRec.Stop()
		o.audio.EndCapture()
	}

	switch o.State() {
	case StateForeground, StateSpeaking:
		// Mid-conversation; the browser notification already fired, so
		// skip the spoken announcement rather than cutting the exchange.
		return
	}

	o.speak(message, o.resumeWake)
}

// speak plays text and runs after once playback finishes. A synthesis
// failure skips straight to after so the loop never stalls.
func (o *Orchestrator) speak(text string, after func()) {
	o.mu.Lock()
	o.rearm++
	o.setStateLocked(StateSpeaking)
	o.afterSpeech = after
	o.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := o.speaker.Speak(ctx, text); err != nil {
			o.mu.Lock()
			pending := o.afterSpeech
			o.afterSpeech = nil
			o.mu.Unlock()
			if pending != nil {
				pending()
			}
		}
	}()
}

// resumeWake re-arms wake listening after the configured grace delay,
// so the tail of the assistant's own speech is not captured.
func (o *Orchestrator) resumeWake() {
	if !o.config.WakeEnabled {
		o.mu.Lock()
		o.setStateLocked(StateIdle)
		o.mu.Unlock()
		return
	}

	o.mu.Lock()
	o.rearm++
	token := o.rearm
	o.mu.Unlock()

	time.AfterFunc(o.config.GraceDelay, func() {
		o.mu.Lock()
		if o.rearm != token {
			o.mu.Unlock()
			return
		}
		o.setStateLocked(StateWake)
		o.mu.Unlock()

		o.wakeRec.Start()
		o.audio.BeginCapture()
	})
}

// setStateLocked records and publishes a state transition. Caller holds
// the lock.
func (o *Orchestrator) setStateLocked(next State) {
	if o.state == next {
		return
	}
	o.state = next
	if o.eventBus != nil {
		o.eventBus.Publish(bus.Event{
			Type: bus.EventTypeStateChanged,
			Data: map[string]any{"state": string(next)},
		})
	}
}

func (o *Orchestrator) publish(t bus.EventType, data map[string]any) {
	if o.eventBus != nil {
		o.eventBus.Publish(bus.Event{Type: t, Data: data})
	}
}
