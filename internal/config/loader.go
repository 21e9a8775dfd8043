package config

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix = "SPADL_"
	EnvFile   = "SPADL_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if SPADL_CONFIG is set
//  3. env (prefix SPADL_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "read %s", path), ErrLoadConfig)
		}
	}

	// SPADL_QUEUE_SIZE -> queue_size; underscores are kept to match the
	// flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read environment"), ErrLoadConfig)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode config"), ErrLoadConfig)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return errors.Mark(errors.Wrap(err, "validate config"), ErrInvalidConfig)
	}
	return nil
}
