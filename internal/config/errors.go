package config

import "github.com/cockroachdb/errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
