// Package config provides configuration management for Orion
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Wake        WakeConfig        `mapstructure:"wake"`
	Audio       AudioConfig       `mapstructure:"audio"`
	STT         STTConfig         `mapstructure:"stt"`
	TTS         TTSConfig         `mapstructure:"tts"`
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Missions    MissionConfig     `mapstructure:"missions"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig configures the WebSocket gateway
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	AllowedOrigin string        `mapstructure:"allowed_origin"`
	AuthToken     string        `mapstructure:"auth_token"` // empty disables session auth
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	PingInterval  time.Duration `mapstructure:"ping_interval"`
}

// WakeConfig configures wake word detection
type WakeConfig struct {
	Phrases         []string      `mapstructure:"phrases"`
	Acknowledgement string        `mapstructure:"acknowledgement"`
	GraceDelay      time.Duration `mapstructure:"grace_delay"` // delay before re-arming wake listening
	Enabled         bool          `mapstructure:"enabled"`
}

// AudioConfig configures audio intake and the waveform display
type AudioConfig struct {
	SampleRate       int           `mapstructure:"sample_rate"`
	Channels         int           `mapstructure:"channels"`
	BitDepth         int           `mapstructure:"bit_depth"`
	SilenceThreshold float64       `mapstructure:"silence_threshold"`
	MaxSilence       time.Duration `mapstructure:"max_silence"`
	MaxUtterance     time.Duration `mapstructure:"max_utterance"`
	WaveFrameRate    int           `mapstructure:"wave_frame_rate"` // frames per second, display refresh cap
	WavePoints       int           `mapstructure:"wave_points"`
}

// STTConfig configures speech-to-text
type STTConfig struct {
	Provider string        `mapstructure:"provider"` // whisper
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TTSConfig configures text-to-speech
type TTSConfig struct {
	Provider        string        `mapstructure:"provider"` // openai
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	Speed           float64       `mapstructure:"speed"`
	PreferredVoices []string      `mapstructure:"preferred_voices"` // ordered name substrings, deep/authoritative first
	AvoidVoices     []string      `mapstructure:"avoid_voices"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// InterpreterConfig configures the remote command endpoint
type InterpreterConfig struct {
	RemoteURL string        `mapstructure:"remote_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// MissionConfig configures conversation history storage
type MissionConfig struct {
	DBPath       string `mapstructure:"db_path"`
	DefaultTitle string `mapstructure:"default_title"`
	HistoryLimit int    `mapstructure:"history_limit"`
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Server: ServerConfig{
			Addr:          ":8790",
			AllowedOrigin: "",
			AuthToken:     "",
			WriteTimeout:  10 * time.Second,
			PingInterval:  30 * time.Second,
		},
		Wake: WakeConfig{
			Phrases: []string{
				"hey orion",
				"talk to me orion",
				"daddy's home orion",
				"orion",
			},
			Acknowledgement: "Orion standing by, Commander.",
			GraceDelay:      400 * time.Millisecond,
			Enabled:         true,
		},
		Audio: AudioConfig{
			SampleRate:       16000,
			Channels:         1,
			BitDepth:         16,
			SilenceThreshold: 0.04,
			MaxSilence:       900 * time.Millisecond,
			MaxUtterance:     12 * time.Second,
			WaveFrameRate:    30,
			WavePoints:       128,
		},
		STT: STTConfig{
			Provider: "whisper",
			Model:    "whisper-1",
			Language: "en",
			Timeout:  30 * time.Second,
		},
		TTS: TTSConfig{
			Provider: "openai",
			Model:    "tts-1",
			Speed:    1.0,
			PreferredVoices: []string{
				"onyx", "male", "man", "david", "mark", "george", "james", "richard",
			},
			AvoidVoices: []string{
				"female", "woman", "zira", "hazel", "susan", "samantha",
			},
			Timeout: 30 * time.Second,
		},
		Interpreter: InterpreterConfig{
			RemoteURL: "https://api.groq.com/openai/v1/chat/completions",
			Model:     "llama-3.3-70b-versatile",
			MaxTokens: 300,
			Timeout:   15 * time.Second,
		},
		Missions: MissionConfig{
			DBPath:       filepath.Join(home, ".orion", "missions"),
			DefaultTitle: "General Chat",
			HistoryLimit: 50,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configDir, err := GetConfigDir()
	if err != nil {
		return cfg, err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return cfg, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("ORION")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
		// Config file not found, use defaults and create one
		if err := Save(cfg); err != nil {
			return cfg, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the configuration to file
func Save(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	viper.Set("server", cfg.Server)
	viper.Set("wake", cfg.Wake)
	viper.Set("audio", cfg.Audio)
	viper.Set("stt", cfg.STT)
	viper.Set("tts", cfg.TTS)
	viper.Set("interpreter", cfg.Interpreter)
	viper.Set("missions", cfg.Missions)
	viper.Set("logging", cfg.Logging)

	configPath := filepath.Join(configDir, "config.yaml")
	return viper.WriteConfigAs(configPath)
}

// Watch watches the config file and invokes onChange with the re-read
// config whenever it is written. Used to pick up wake phrase edits
// without a restart. The returned stop function closes the watcher.
func Watch(onChange func(*Config)) (stop func(), err error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(configDir); err != nil {
		watcher.Close()
		return nil, err
	}

	configPath := filepath.Join(configDir, "config.yaml")
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != configPath {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if cfg, err := Load(); err == nil {
					onChange(cfg)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { watcher.Close() }, nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".orion"), nil
}
