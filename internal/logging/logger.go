// Package logging wraps zerolog with a date-named log file, optional
// console output, and a bounded in-memory history that the gateway
// streams to the browser log panel.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel names a minimum severity.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogEntry is one log line in the shape the browser panel renders.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
	Data      string `json:"data,omitempty"`
}

// Logger writes structured logs to file and console while keeping a
// bounded history for replay to freshly connected clients.
type Logger struct {
	zlog zerolog.Logger
	file *os.File

	mu      sync.RWMutex
	history []LogEntry
	maxHist int
	onLog   func(LogEntry)
}

// Config holds logger configuration.
type Config struct {
	LogDir     string   // directory for log files (default ~/.orion/logs)
	Level      LogLevel // minimum level (default debug)
	MaxHistory int      // entries kept in memory (default 1000)
	Console    bool     // also log to stdout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		LogDir:     filepath.Join(home, ".orion", "logs"),
		Level:      LevelDebug,
		MaxHistory: 1000,
		Console:    true,
	}
}

// New opens a date-named log file and builds the logger around it.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultConfig().LogDir
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 1000
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(cfg.LogDir, fmt.Sprintf("orion_%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	writers := []io.Writer{file}
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}

	level := zerolog.DebugLevel
	switch cfg.Level {
	case LevelInfo:
		level = zerolog.InfoLevel
	case LevelWarn:
		level = zerolog.WarnLevel
	case LevelError:
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	l := &Logger{
		zlog: zerolog.New(io.MultiWriter(writers...)).With().
			Timestamp().
			Str("app", "orion").
			Logger(),
		file:    file,
		history: make([]LogEntry, 0, cfg.MaxHistory),
		maxHist: cfg.MaxHistory,
	}

	l.Info("logging", "Logger initialized", map[string]interface{}{
		"logFile": logPath,
		"level":   string(cfg.Level),
	})
	return l, nil
}

// SetOnLog registers a callback fired with every new entry, for
// real-time streaming to the browser.
func (l *Logger) SetOnLog(fn func(LogEntry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onLog = fn
}

// GetHistory returns up to limit recent entries, oldest first. A
// non-positive limit returns everything retained.
func (l *Logger) GetHistory(limit int) []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.history) {
		limit = len(l.history)
	}
	out := make([]LogEntry, limit)
	copy(out, l.history[len(l.history)-limit:])
	return out
}

// Zerolog returns the underlying zerolog.Logger; packages scope it with
// their own component field.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.Info("logging", "Logger shutting down", nil)
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Debug logs a debug message.
func (l *Logger) Debug(component, msg string, data map[string]interface{}) {
	l.emit(zerolog.DebugLevel, "debug", component, msg, nil, data)
}

// Info logs an info message.
func (l *Logger) Info(component, msg string, data map[string]interface{}) {
	l.emit(zerolog.InfoLevel, "info", component, msg, nil, data)
}

// Warn logs a warning message.
func (l *Logger) Warn(component, msg string, data map[string]interface{}) {
	l.emit(zerolog.WarnLevel, "warn", component, msg, nil, data)
}

// Error logs an error message.
func (l *Logger) Error(component, msg string, err error, data map[string]interface{}) {
	l.emit(zerolog.ErrorLevel, "error", component, msg, err, data)
}

func (l *Logger) emit(lvl zerolog.Level, name, component, msg string, err error, data map[string]interface{}) {
	ev := l.zlog.WithLevel(lvl).Str("component", component)
	if err != nil {
		ev = ev.Err(err)
	}
	for k, v := range data {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)

	entry := LogEntry{
		Timestamp: time.Now().Format("15:04:05.000"),
		Level:     name,
		Component: component,
		Message:   msg,
		Data:      formatData(data),
	}
	if err != nil {
		if entry.Data != "" {
			entry.Data += ", "
		}
		entry.Data += "error=" + err.Error()
	}

	l.mu.Lock()
	l.history = append(l.history, entry)
	if len(l.history) > l.maxHist {
		l.history = l.history[len(l.history)-l.maxHist:]
	}
	onLog := l.onLog
	l.mu.Unlock()

	if onLog != nil {
		go onLog(entry)
	}
}

func formatData(data map[string]interface{}) string {
	out := ""
	for k, v := range data {
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%s=%v", k, v)
	}
	return out
}
