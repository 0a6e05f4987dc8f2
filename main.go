// Orion - a voice assistant that lives in the browser: wake phrase
// listening, spoken command interpretation, countdown timers, and
// persistent mission history, served over WebSocket.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/orionvoice/orion/internal/audio"
	"github.com/orionvoice/orion/internal/bus"
	"github.com/orionvoice/orion/internal/config"
	"github.com/orionvoice/orion/internal/gateway"
	"github.com/orionvoice/orion/internal/intent"
	"github.com/orionvoice/orion/internal/logging"
	"github.com/orionvoice/orion/internal/mission"
	"github.com/orionvoice/orion/internal/stt"
	"github.com/orionvoice/orion/internal/timer"
	"github.com/orionvoice/orion/internal/tts"
	"github.com/orionvoice/orion/internal/voice"
)

func main() {
	// Optional .env for API keys in development.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Defaults still work; log once we have a logger.
	}

	logger, logErr := logging.New(&logging.Config{
		Level:   logging.LogLevel(cfg.Logging.Level),
		Console: cfg.Logging.Console,
	})
	if logErr != nil {
		os.Exit(1)
	}
	defer logger.Close()
	zlog := logger.Zerolog()
	if err != nil {
		logger.Warn("main", "Config load failed, using defaults", map[string]interface{}{"error": err.Error()})
	}

	eventBus := bus.NewEventBus()

	// Mission history.
	store, err := mission.OpenBadger(cfg.Missions.DBPath, zlog)
	if err != nil {
		logger.Error("main", "Failed to open mission store", err, nil)
		os.Exit(1)
	}
	missionLog, err := mission.NewLog(store, cfg.Missions.DefaultTitle, cfg.Missions.HistoryLimit, eventBus, zlog)
	if err != nil {
		logger.Error("main", "Failed to open mission log", err, nil)
		os.Exit(1)
	}
	defer missionLog.Close()

	// Audio intake and waveform display.
	audioMgr := audio.NewManager(&audio.ManagerConfig{
		SampleRate:       cfg.Audio.SampleRate,
		Channels:         cfg.Audio.Channels,
		BitDepth:         cfg.Audio.BitDepth,
		SilenceThreshold: cfg.Audio.SilenceThreshold,
		MaxSilence:       cfg.Audio.MaxSilence,
		MaxUtterance:     cfg.Audio.MaxUtterance,
		WaveFrameRate:    cfg.Audio.WaveFrameRate,
		WavePoints:       cfg.Audio.WavePoints,
	}, eventBus, zlog)

	// Speech recognition: one continuous wake recognizer, one
	// single-shot foreground recognizer, same provider behind both.
	sttCfg := stt.DefaultWhisperConfig()
	sttCfg.APIKey = cfg.STT.APIKey
	sttCfg.Model = cfg.STT.Model
	sttCfg.Language = cfg.STT.Language
	sttCfg.Timeout = cfg.STT.Timeout
	sttProvider := stt.NewWhisperProvider(zlog, sttCfg)
	wakeRec := stt.NewRecognizer(stt.RecognizerConfig{
		Mode:       stt.ModeWake,
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		Language:   cfg.STT.Language,
		Timeout:    cfg.STT.Timeout,
	}, sttProvider, zlog)
	fgRec := stt.NewRecognizer(stt.RecognizerConfig{
		Mode:       stt.ModeForeground,
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		Language:   cfg.STT.Language,
		Timeout:    cfg.STT.Timeout,
	}, sttProvider, zlog)
	matcher := stt.NewWakeMatcher(cfg.Wake.Phrases)

	// Speech synthesis.
	ttsCfg := tts.DefaultOpenAIConfig()
	ttsCfg.APIKey = cfg.TTS.APIKey
	ttsCfg.Model = cfg.TTS.Model
	ttsCfg.Speed = cfg.TTS.Speed
	ttsCfg.Timeout = cfg.TTS.Timeout
	ttsProvider := tts.NewOpenAIProvider(zlog, ttsCfg)
	speaker := tts.NewSpeaker(ttsProvider, &tts.Config{
		Provider:        cfg.TTS.Provider,
		Model:           cfg.TTS.Model,
		Speed:           cfg.TTS.Speed,
		PreferredVoices: cfg.TTS.PreferredVoices,
		AvoidVoices:     cfg.TTS.AvoidVoices,
	}, eventBus, zlog)

	// Command interpretation: remote model first, local rules fallback.
	remote := intent.NewRemote(intent.RemoteConfig{
		URL:       cfg.Interpreter.RemoteURL,
		APIKey:    envOr(cfg.Interpreter.APIKey, "GROQ_API_KEY"),
		Model:     cfg.Interpreter.Model,
		MaxTokens: cfg.Interpreter.MaxTokens,
		Timeout:   cfg.Interpreter.Timeout,
	}, zlog)
	router := intent.NewRouter(remote, intent.NewLocal(nil), zlog)

	engine := timer.NewEngine(eventBus, zlog, nil, nil)

	orch := voice.NewOrchestrator(voice.Config{
		WakeEnabled:     cfg.Wake.Enabled,
		Acknowledgement: cfg.Wake.Acknowledgement,
		GraceDelay:      cfg.Wake.GraceDelay,
	}, audioMgr, wakeRec, fgRec, matcher, speaker, router, engine, missionLog, eventBus, zlog)

	server := gateway.NewServer(gateway.ServerConfig{
		Addr:          cfg.Server.Addr,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		AuthToken:     envOr(cfg.Server.AuthToken, "ORION_AUTH_TOKEN"),
		WriteTimeout:  cfg.Server.WriteTimeout,
		PingInterval:  cfg.Server.PingInterval,
	}, audioMgr, orch, missionLog, engine, eventBus, zlog)

	speaker.OnAudio(server.SendSpeech)
	speaker.OnHalt(server.SendSpeechHalt)
	server.StreamLogs(logger)

	// Wake phrase edits take effect without a restart.
	stopWatch, err := config.Watch(func(next *config.Config) {
		orch.SetWakePhrases(next.Wake.Phrases)
	})
	if err != nil {
		logger.Warn("main", "Config watch unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		defer stopWatch()
	}

	// With session auth configured, voice stays down until an
	// authenticated browser sends control.listen.
	if cfg.Server.AuthToken == "" && os.Getenv("ORION_AUTH_TOKEN") == "" {
		orch.Start()
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("main", "Shutting down", nil)
		orch.Stop()
		engine.CancelAll()
		server.Shutdown()
	}()

	if err := server.Start(); err != nil {
		logger.Error("main", "Gateway failed", err, nil)
		os.Exit(1)
	}
}

// envOr returns the configured value, or the named environment
// variable when the config leaves it empty.
func envOr(configured, envName string) string {
	if configured != "" {
		return configured
	}
	return os.Getenv(envName)
}
