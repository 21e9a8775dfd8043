// Package config defines service configuration and how it is loaded.
package config

import (
	"runtime"

	"github.com/okian/spadl/internal/domain/normalize"
	"github.com/okian/spadl/internal/domain/registry"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the log encoding: json or console.
	LogFormat string `koanf:"log_format" validate:"oneof=json console"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// QueueSize bounds the number of games waiting for a worker.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`

	// WorkerCount sets the number of conversion workers.
	WorkerCount int `koanf:"worker_count" validate:"gt=0"`

	// DedupeSize sets how many submitted game ids are remembered.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=0"`

	// MaxGames bounds the number of stored results; 0 keeps all.
	MaxGames int `koanf:"max_games" validate:"gte=0"`

	// FieldLength and FieldWidth are the canonical pitch dimensions in metres.
	FieldLength float64 `koanf:"field_length" validate:"gt=0"`
	FieldWidth  float64 `koanf:"field_width" validate:"gt=0"`

	// DefaultBodyPart is assigned to events that do not name one.
	DefaultBodyPart string `koanf:"default_bodypart" validate:"oneof=foot head other head/other foot_left foot_right"`

	// AddDribbles toggles synthetic dribble insertion.
	AddDribbles bool `koanf:"add_dribbles"`

	// RateLimitRPS and RateLimitBurst throttle each API client; RPS 0 disables.
	RateLimitRPS   float64 `koanf:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"gt=0"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"gt=0"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "json",
		Addr:            ":9080",
		QueueSize:       1024,
		WorkerCount:     runtime.NumCPU() * 2,
		DedupeSize:      10_000,
		MaxGames:        0,
		FieldLength:     normalize.DefaultFieldLength,
		FieldWidth:      normalize.DefaultFieldWidth,
		DefaultBodyPart: registry.Foot,
		AddDribbles:     true,
		RateLimitRPS:    50,
		RateLimitBurst:  100,
		MaxBodyBytes:    32 << 20,
	}
}
