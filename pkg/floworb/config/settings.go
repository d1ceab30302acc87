package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Settings is the resolved application configuration.
type Settings struct {
	Port        int      `validate:"min=1,max=65535"`
	CORSOrigins []string `validate:"dive,required"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	RunTimeout      time.Duration `validate:"min=0"`
	ReasoningPrompt string        `validate:"required"`
	NotificationTTL time.Duration `validate:"min=0"`
	Metrics         bool
	Tracing         bool

	// JournalPath is a SQLite file for run history. Empty keeps it in memory.
	JournalPath string

	APIKeyEnv         string `validate:"required"`
	ImageModel        string `validate:"required"`
	ReasoningModel    string `validate:"required"`
	VideoModel        string `validate:"required"`
	VideoPollInterval time.Duration `validate:"gt=0"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Port:              9090,
		CORSOrigins:       []string{"*"},
		LogLevel:          "info",
		LogFormat:         "text",
		RunTimeout:        5 * time.Minute,
		ReasoningPrompt:   "Analyze this image and provide a detailed prompt for image generation.",
		NotificationTTL:   4 * time.Second,
		Metrics:           true,
		APIKeyEnv:         "GEMINI_API_KEY",
		ImageModel:        "gemini-2.5-flash-image",
		ReasoningModel:    "gemini-3-pro-preview",
		VideoModel:        "veo-3.1-fast-generate-preview",
		VideoPollInterval: 5 * time.Second,
	}
}

// Settings resolves the application settings from c, falling back to
// Defaults for anything unset.
//
// Expected layout:
//
//	server:
//	  port: 9090
//	  cors_origins: ["*"]
//	log:
//	  level: info
//	  format: text
//	engine:
//	  run_timeout: 5m
//	  reasoning_prompt: "..."
//	  notification_ttl: 4s
//	  metrics: true
//	  tracing: false
//	journal:
//	  path: floworb.db
//	gemini:
//	  api_key_env: GEMINI_API_KEY
//	  image_model: gemini-2.5-flash-image
//	  reasoning_model: gemini-3-pro-preview
//	  video_model: veo-3.1-fast-generate-preview
//	  poll_interval: 5s
func (c Config) Settings() Settings {
	d := Defaults()

	server := c.Sub("server")
	logs := c.Sub("log")
	engine := c.Sub("engine")
	gemini := c.Sub("gemini")

	return Settings{
		Port:              server.Int("port", d.Port),
		CORSOrigins:       server.StringSlice("cors_origins", d.CORSOrigins),
		LogLevel:          logs.String("level", d.LogLevel),
		LogFormat:         logs.String("format", d.LogFormat),
		RunTimeout:        engine.Duration("run_timeout", d.RunTimeout),
		ReasoningPrompt:   engine.String("reasoning_prompt", d.ReasoningPrompt),
		NotificationTTL:   engine.Duration("notification_ttl", d.NotificationTTL),
		Metrics:           engine.Bool("metrics", d.Metrics),
		Tracing:           engine.Bool("tracing", d.Tracing),
		JournalPath:       c.Sub("journal").String("path", d.JournalPath),
		APIKeyEnv:         gemini.String("api_key_env", d.APIKeyEnv),
		ImageModel:        gemini.String("image_model", d.ImageModel),
		ReasoningModel:    gemini.String("reasoning_model", d.ReasoningModel),
		VideoModel:        gemini.String("video_model", d.VideoModel),
		VideoPollInterval: gemini.Duration("poll_interval", d.VideoPollInterval),
	}
}

// Validate checks the settings for values the server cannot start with.
func (s Settings) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
