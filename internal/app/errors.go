package service

import "github.com/cockroachdb/errors"

// Sentinel kinds returned by the service.
var (
	ErrNotStarted          = errors.New("service not started")
	ErrDuplicate           = errors.New("game already submitted")
	ErrBackpressure        = errors.New("conversion queue is full")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrEmptyGameID         = errors.New("empty game id")
)
