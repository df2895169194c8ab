// Package config loads service configuration from the environment, with
// .env file support for local development.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/voicebridge/voicebridge/core/realtime"
)

// Config holds all configuration for the relay.
type Config struct {
	// Server configuration
	Port      string `envconfig:"PORT" default:"3000"`
	StaticDir string `envconfig:"STATIC_DIR" default:"public"` // browser UI files

	// Realtime session configuration
	OpenAIAPIKey       string `envconfig:"OPENAI_API_KEY" required:"true"`
	RealtimeModel      string `envconfig:"REALTIME_MODEL" default:"gpt-4o-realtime-preview"`
	Instructions       string `envconfig:"INSTRUCTIONS" default:""`
	Voice              string `envconfig:"VOICE" default:"alloy"`                       // alloy, echo, fable, onyx, nova, shimmer
	TurnDetection      string `envconfig:"TURN_DETECTION" default:"none"`               // none, server_vad
	TranscriptionModel string `envconfig:"TRANSCRIPTION_MODEL" default:"whisper-1"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads configuration from the environment, first merging in a .env
// file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv reads configuration from environment variables only, for
// containerized deployments where .env files are not used.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := realtime.ParseVoice(cfg.Voice); err != nil {
		return nil, err
	}
	if !realtime.TurnDetection(cfg.TurnDetection).Valid() {
		return nil, fmt.Errorf("unrecognized turn detection mode %q", cfg.TurnDetection)
	}

	return &cfg, nil
}

// SessionConfig translates the configured session parameters into the
// realtime client's form.
func (c *Config) SessionConfig() realtime.SessionConfig {
	return realtime.SessionConfig{
		Instructions:       c.Instructions,
		Voice:              realtime.Voice(c.Voice),
		TurnDetection:      realtime.TurnDetection(c.TurnDetection),
		TranscriptionModel: c.TranscriptionModel,
	}
}
