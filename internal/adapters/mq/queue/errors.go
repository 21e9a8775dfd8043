package queue

import "github.com/cockroachdb/errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueClosed = errors.New("queue closed")
	ErrQueueFull   = errors.New("queue full")
)
