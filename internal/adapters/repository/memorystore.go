package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/okian/spadl/pkg/metrics"
)

// MemoryStore is an in-memory Store safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	results  map[string]Result
	order    []string // game ids, oldest first
	maxGames int
	onEvict  func(ctx context.Context, gameID string)
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{results: make(map[string]Result)}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateStoredGames(0)
	return s
}

// Put stores r.
func (s *MemoryStore) Put(ctx context.Context, r Result) error { //nolint:gocritic // hugeParam: Result is stored by value
	if r.GameID == "" {
		return errors.Wrap(ErrInvalidResult, "empty game id")
	}

	var evicted string
	s.mu.Lock()
	if _, ok := s.results[r.GameID]; ok {
		s.removeOrder(r.GameID)
	} else if s.maxGames > 0 && len(s.results) >= s.maxGames {
		evicted = s.order[0]
		s.order = s.order[1:]
		delete(s.results, evicted)
	}
	s.results[r.GameID] = r
	s.order = append(s.order, r.GameID)
	metrics.UpdateStoredGames(len(s.results))
	s.mu.Unlock()

	// called without the lock so the callback may use the store
	if evicted != "" && s.onEvict != nil {
		s.onEvict(ctx, evicted)
	}
	return nil
}

// Get returns the result for gameID.
func (s *MemoryStore) Get(ctx context.Context, gameID string) (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[gameID]
	if !ok {
		return Result{}, errors.Wrapf(ErrNotFound, "game %s", gameID)
	}
	return r, nil
}

// List returns stored game ids in ascending order.
func (s *MemoryStore) List(ctx context.Context) []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.results))
	for id := range s.results {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Delete removes a game's result.
func (s *MemoryStore) Delete(ctx context.Context, gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[gameID]; !ok {
		return
	}
	delete(s.results, gameID)
	s.removeOrder(gameID)
	metrics.UpdateStoredGames(len(s.results))
}

// Count returns the number of stored games.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

func (s *MemoryStore) removeOrder(gameID string) {
	for i, id := range s.order {
		if id == gameID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
