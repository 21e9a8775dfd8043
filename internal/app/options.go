package service

import (
	"github.com/okian/spadl/internal/domain/normalize"
	"github.com/okian/spadl/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of queue workers and the size of the
// batch conversion pool.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of games waiting for a worker.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submitted game ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxGames bounds the number of stored results. Zero keeps every game.
func WithMaxGames(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxGames = n
		}
	}
}

// WithPitch sets the canonical pitch dimensions in metres.
func WithPitch(length, width float64) Option {
	return func(s *Service) {
		if length > 0 && width > 0 {
			s.pitch = normalize.Pitch{Length: length, Width: width}
		}
	}
}

// WithDefaultBodyPart sets the body part assigned to events without one.
func WithDefaultBodyPart(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultBodyPart = name
		}
	}
}

// WithDribbles toggles synthetic dribble insertion.
func WithDribbles(enabled bool) Option {
	return func(s *Service) {
		s.dribbles = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
