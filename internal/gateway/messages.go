package gateway

import (
	"github.com/orionvoice/orion/internal/audio"
	"github.com/orionvoice/orion/internal/logging"
	"github.com/orionvoice/orion/internal/mission"
	"github.com/orionvoice/orion/internal/timer"
)

// Inbound messages from the browser.

// InboundMessage carries just enough to dispatch on type; the handler
// re-parses the raw payload into the concrete struct.
type InboundMessage struct {
	Type string `json:"type"`
}

// AuthMessage presents the session token. Voice messages are ignored
// until it is accepted; login itself happens elsewhere.
type AuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// AudioChunkMessage streams one base64 PCM chunk from the microphone.
type AudioChunkMessage struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// AudioErrorMessage reports a browser-side capture failure.
type AudioErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// PlaybackEndedMessage reports that an utterance finished playing.
type PlaybackEndedMessage struct {
	Type        string `json:"type"`
	UtteranceID string `json:"utterance_id"`
}

// MissionActionMessage covers mission switch/create/delete.
type MissionActionMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

// TimerCancelMessage cancels one countdown.
type TimerCancelMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Outbound messages to the browser.

// AuthResultMessage reports whether the session token was accepted.
type AuthResultMessage struct {
	Type string `json:"type"`
	OK   bool   `json:"ok"`
}

// StateMessage announces an orchestrator mode change.
type StateMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// WaveFrameMessage carries one waveform display frame.
type WaveFrameMessage struct {
	Type   string    `json:"type"`
	Active bool      `json:"active"`
	Points []float64 `json:"points"`
}

// TranscriptMessage carries a finalized user transcript.
type TranscriptMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ReplyMessage carries the assistant's textual response.
type ReplyMessage struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Intent string `json:"intent"`
	Source string `json:"source"`
}

// SpeechAudioMessage carries synthesized audio for playback.
type SpeechAudioMessage struct {
	Type        string `json:"type"`
	UtteranceID string `json:"utterance_id"`
	Data        string `json:"data"` // base64
	Format      string `json:"format"`
}

// SpeechHaltMessage tells the browser to cut playback immediately.
type SpeechHaltMessage struct {
	Type string `json:"type"`
}

// TimerDisplayMessage carries one per-tick timer display update.
type TimerDisplayMessage struct {
	Type    string        `json:"type"`
	Display timer.Display `json:"display"`
}

// TimerMessage carries timer lifecycle events.
type TimerMessage struct {
	Type    string      `json:"type"`
	Timer   timer.Timer `json:"timer"`
	Message string      `json:"message,omitempty"`
}

// NotifyMessage asks the browser to raise a desktop notification.
type NotifyMessage struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// MissionHistoryMessage carries a mission and its recent messages.
type MissionHistoryMessage struct {
	Type     string            `json:"type"`
	Mission  mission.Mission   `json:"mission"`
	Messages []mission.Message `json:"messages"`
}

// MissionListMessage lists all missions.
type MissionListMessage struct {
	Type     string            `json:"type"`
	Missions []mission.Mission `json:"missions"`
	ActiveID string            `json:"active_id"`
}

// MessageAppendedMessage carries one newly logged utterance.
type MessageAppendedMessage struct {
	Type    string          `json:"type"`
	Message mission.Message `json:"message"`
}

// LogEntryMessage streams one log line to the browser console view.
type LogEntryMessage struct {
	Type  string           `json:"type"`
	Entry logging.LogEntry `json:"entry"`
}

// ErrorMessage reports a server-side failure for a client request.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// AudioLevelMessage carries the smoothed input level.
type AudioLevelMessage struct {
	Type  string  `json:"type"`
	Level float64 `json:"level"`
}

func waveFrameMessage(f audio.Frame) WaveFrameMessage {
	return WaveFrameMessage{Type: "wave.frame", Active: f.Active, Points: f.Points}
}
