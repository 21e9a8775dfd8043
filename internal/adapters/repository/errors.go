package repository

import "github.com/cockroachdb/errors"

// Sentinel kinds for result store errors.
var (
	ErrNotFound      = errors.New("game not found")
	ErrInvalidResult = errors.New("invalid result")
)
