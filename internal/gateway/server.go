// Package gateway serves the browser UI over WebSocket: audio chunks
// and control messages in, state, transcripts, speech audio, waveform
// and timer frames out.
package gateway

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/orionvoice/orion/internal/audio"
	"github.com/orionvoice/orion/internal/bus"
	"github.com/orionvoice/orion/internal/logging"
	"github.com/orionvoice/orion/internal/mission"
	"github.com/orionvoice/orion/internal/timer"
	"github.com/orionvoice/orion/internal/voice"
)

// ServerConfig holds gateway settings.
type ServerConfig struct {
	Addr          string
	AllowedOrigin string // empty allows same-host only
	AuthToken     string // empty means sessions are trusted on connect
	WriteTimeout  time.Duration
	PingInterval  time.Duration
}

// Server is the WebSocket gateway. One browser tab is one client; all
// outbound traffic is broadcast, so a second tab mirrors the first.
type Server struct {
	config ServerConfig

	audio      *audio.Manager
	orch       *voice.Orchestrator
	missionLog *mission.Log
	engine     *timer.Engine
	logger     zerolog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	logs    *logging.Logger

	httpServer *http.Server
}

// client is one connected browser. Writes go through send so a slow
// reader never blocks the broadcast path; a full buffer drops the
// client. send is never closed: the client's read loop may be queueing
// a reply at any moment, so teardown is signalled through done and the
// connection instead.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	// authed gates voice messages for this session. Only touched from
	// the session's read loop.
	authed bool
}

const sendBuffer = 256

// NewServer creates the gateway and subscribes it to the event bus.
func NewServer(
	cfg ServerConfig,
	audioMgr *audio.Manager,
	orch *voice.Orchestrator,
	missionLog *mission.Log,
	engine *timer.Engine,
	eventBus *bus.EventBus,
	logger zerolog.Logger,
) *Server {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}

	s := &Server{
		config:     cfg,
		audio:      audioMgr,
		orch:       orch,
		missionLog: missionLog,
		engine:     engine,
		logger:     logger.With().Str("component", "gateway").Logger(),
		clients:    make(map[*client]struct{}),
	}
	s.subscribe(eventBus)
	return s
}

// Start serves HTTP until Shutdown. Blocks.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{Addr: s.config.Addr, Handler: mux}
	s.logger.Info().Str("addr", s.config.Addr).Msg("Gateway listening")

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown closes the listener and all client connections.
func (s *Server) Shutdown() {
	if s.httpServer != nil {
		s.httpServer.Close()
	}
	s.mu.Lock()
	for c := range s.clients {
		s.evict(c)
	}
	s.mu.Unlock()
}

// evict removes a client and signals its pumps to exit. Caller holds
// s.mu. Returns false if the client was already gone.
func (s *Server) evict(c *client) bool {
	if _, ok := s.clients[c]; !ok {
		return false
	}
	delete(s.clients, c)
	close(c.done)
	if c.conn != nil {
		c.conn.Close()
	}
	return true
}

// StreamLogs mirrors every log entry to connected clients. Fresh
// clients also get the recent history replayed in their snapshot.
func (s *Server) StreamLogs(l *logging.Logger) {
	s.mu.Lock()
	s.logs = l
	s.mu.Unlock()
	l.SetOnLog(func(entry logging.LogEntry) {
		s.broadcast(LogEntryMessage{Type: "log.entry", Entry: entry})
	})
}

// SendSpeech delivers synthesized audio for playback.
func (s *Server) SendSpeech(utteranceID string, audioData []byte, format string) {
	s.broadcast(SpeechAudioMessage{
		Type:        "speech.audio",
		UtteranceID: utteranceID,
		Data:        base64.StdEncoding.EncodeToString(audioData),
		Format:      format,
	})
}

// SendSpeechHalt tells every client to cut playback now.
func (s *Server) SendSpeechHalt() {
	s.broadcast(SpeechHaltMessage{Type: "speech.halt"})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.config.AllowedOrigin == "" {
		return true
	}
	return r.Header.Get("Origin") == s.config.AllowedOrigin
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Upgrade failed")
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		authed: s.config.AuthToken == "",
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Info().Str("remote", conn.RemoteAddr().String()).Int("clients", n).Msg("Client connected")

	go s.writePump(c)
	s.sendSnapshot(c)
	s.readPump(c)
}

// sendSnapshot brings a fresh client up to date: current mode, active
// mission history, and running timers.
func (s *Server) sendSnapshot(c *client) {
	s.sendTo(c, StateMessage{Type: "state", State: string(s.orch.State())})

	if history, err := s.missionLog.History(); err == nil {
		s.sendTo(c, MissionHistoryMessage{
			Type:     "mission.history",
			Mission:  s.missionLog.Active(),
			Messages: history,
		})
	}
	s.sendMissionList(c)

	for _, t := range s.engine.Active() {
		s.sendTo(c, TimerMessage{Type: "timer.created", Timer: t})
	}

	s.mu.Lock()
	logs := s.logs
	s.mu.Unlock()
	if logs != nil {
		for _, entry := range logs.GetHistory(logReplayLimit) {
			s.sendTo(c, LogEntryMessage{Type: "log.entry", Entry: entry})
		}
	}
}

const logReplayLimit = 50

func (s *Server) sendMissionList(c *client) {
	missions, err := s.missionLog.Missions()
	if err != nil {
		return
	}
	msg := MissionListMessage{Type: "mission.list", Missions: missions, ActiveID: s.missionLog.Active().ID}
	if c != nil {
		s.sendTo(c, msg)
	} else {
		s.broadcast(msg)
	}
}

func (s *Server) readPump(c *client) {
	defer s.drop(c)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		s.dispatch(c, raw)
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one inbound message.
func (s *Server) dispatch(c *client, raw []byte) {
	var head InboundMessage
	if err := json.Unmarshal(raw, &head); err != nil {
		s.logger.Warn().Err(err).Msg("Unparseable message")
		return
	}

	switch head.Type {
	case "auth":
		var msg AuthMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		c.authed = s.config.AuthToken == "" || msg.Token == s.config.AuthToken
		s.sendTo(c, AuthResultMessage{Type: "auth", OK: c.authed})
		if !c.authed {
			s.logger.Warn().Msg("Auth rejected")
		}

	case "audio.chunk":
		if !c.authed {
			return
		}
		var msg AudioChunkMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		s.audio.ProcessChunk(msg.Data)

	case "audio.error":
		var msg AudioErrorMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		s.audio.DeviceError(errors.New(msg.Error))

	case "control.listen":
		if !c.authed {
			s.sendTo(c, ErrorMessage{Type: "error", Error: "not authenticated"})
			return
		}
		s.orch.Start()

	case "control.stop":
		s.orch.Stop()

	case "playback.ended":
		var msg PlaybackEndedMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		s.orch.PlaybackEnded(msg.UtteranceID)

	case "mission.switch":
		var msg MissionActionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		history, err := s.missionLog.Switch(msg.ID)
		if err != nil {
			s.sendTo(c, ErrorMessage{Type: "error", Error: err.Error()})
			return
		}
		s.broadcast(MissionHistoryMessage{
			Type:     "mission.history",
			Mission:  s.missionLog.Active(),
			Messages: history,
		})

	case "mission.create":
		var msg MissionActionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		if _, err := s.missionLog.Create(msg.Title); err != nil {
			s.sendTo(c, ErrorMessage{Type: "error", Error: err.Error()})
			return
		}
		s.broadcast(MissionHistoryMessage{
			Type:    "mission.history",
			Mission: s.missionLog.Active(),
		})
		s.sendMissionList(nil)

	case "mission.delete":
		var msg MissionActionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		if err := s.missionLog.Delete(msg.ID); err != nil {
			s.sendTo(c, ErrorMessage{Type: "error", Error: err.Error()})
			return
		}
		s.sendMissionList(nil)

	case "mission.list":
		s.sendMissionList(c)

	case "timer.cancel":
		var msg TimerCancelMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		s.engine.Cancel(msg.ID)

	default:
		s.logger.Debug().Str("type", head.Type).Msg("Unknown message type")
	}
}

// subscribe mirrors bus events to all clients.
func (s *Server) subscribe(eventBus *bus.EventBus) {
	if eventBus == nil {
		return
	}

	eventBus.Subscribe(bus.EventTypeStateChanged, func(e bus.Event) {
		if state, ok := e.Data["state"].(string); ok {
			s.broadcast(StateMessage{Type: "state", State: state})
		}
	})
	eventBus.Subscribe(bus.EventTypeWaveFrame, func(e bus.Event) {
		if f, ok := e.Data["frame"].(audio.Frame); ok {
			s.broadcast(waveFrameMessage(f))
		}
	})
	eventBus.Subscribe(bus.EventTypeAudioLevel, func(e bus.Event) {
		if level, ok := e.Data["level"].(float64); ok {
			s.broadcast(AudioLevelMessage{Type: "audio.level", Level: level})
		}
	})
	eventBus.Subscribe(bus.EventTypeTranscript, func(e bus.Event) {
		if text, ok := e.Data["text"].(string); ok {
			s.broadcast(TranscriptMessage{Type: "transcript", Text: text})
		}
	})
	eventBus.Subscribe(bus.EventTypeReply, func(e bus.Event) {
		text, _ := e.Data["text"].(string)
		intentName, _ := e.Data["intent"].(string)
		source, _ := e.Data["source"].(string)
		s.broadcast(ReplyMessage{Type: "reply", Text: text, Intent: intentName, Source: source})
	})
	eventBus.Subscribe(bus.EventTypeTimerCreated, func(e bus.Event) {
		if t, ok := e.Data["timer"].(timer.Timer); ok {
			s.broadcast(TimerMessage{Type: "timer.created", Timer: t})
		}
	})
	eventBus.Subscribe(bus.EventTypeTimerDisplay, func(e bus.Event) {
		if d, ok := e.Data["display"].(timer.Display); ok {
			s.broadcast(TimerDisplayMessage{Type: "timer.display", Display: d})
		}
	})
	eventBus.Subscribe(bus.EventTypeTimerCompleted, func(e bus.Event) {
		t, _ := e.Data["timer"].(timer.Timer)
		message, _ := e.Data["message"].(string)
		s.broadcast(TimerMessage{Type: "timer.done", Timer: t, Message: message})
	})
	eventBus.Subscribe(bus.EventTypeTimerCancelled, func(e bus.Event) {
		if t, ok := e.Data["timer"].(timer.Timer); ok {
			s.broadcast(TimerMessage{Type: "timer.cancelled", Timer: t})
		}
	})
	eventBus.Subscribe(bus.EventTypeNotify, func(e bus.Event) {
		title, _ := e.Data["title"].(string)
		body, _ := e.Data["body"].(string)
		s.broadcast(NotifyMessage{Type: "notify", Title: title, Body: body})
	})
	eventBus.Subscribe(bus.EventTypeMessageAppended, func(e bus.Event) {
		if m, ok := e.Data["message"].(mission.Message); ok {
			s.broadcast(MessageAppendedMessage{Type: "mission.message", Message: m})
		}
	})
	eventBus.Subscribe(bus.EventTypeAudioError, func(e bus.Event) {
		if msg, ok := e.Data["error"].(string); ok {
			s.broadcast(ErrorMessage{Type: "audio.error", Error: msg})
		}
	})
	eventBus.Subscribe(bus.EventTypeSTTError, func(e bus.Event) {
		if msg, ok := e.Data["error"].(string); ok {
			s.broadcast(ErrorMessage{Type: "stt.error", Error: msg})
		}
	})
}

func (s *Server) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Slow consumer; cut it loose rather than stall everyone.
			s.evict(c)
		}
	}
}

func (s *Server) sendTo(c *client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	evicted := s.evict(c)
	n := len(s.clients)
	s.mu.Unlock()

	if evicted {
		s.logger.Info().Int("clients", n).Msg("Client disconnected")
	}
}
