package repository

import "context"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxGames bounds the number of stored games. When full, the result that
// was completed first is evicted. Zero or negative means unbounded.
func WithMaxGames(n int) Option {
	return func(s *MemoryStore) {
		s.maxGames = n
	}
}

// WithOnEvict registers fn to run for every game evicted by WithMaxGames.
// Explicit deletes do not trigger it.
func WithOnEvict(fn func(ctx context.Context, gameID string)) Option {
	return func(s *MemoryStore) {
		s.onEvict = fn
	}
}
