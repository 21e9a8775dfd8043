// Package dedupe tracks which games have already been submitted so a game is
// converted at most once until its result is discarded.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10000

// Deduper records seen game ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded, recording it
	// when it was not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so it can be submitted again.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// InMemoryDeduper keeps ids in insertion order and evicts the oldest first.
type InMemoryDeduper struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	seen    map[string]*list.Element
}

// NewInMemoryDeduper creates a deduper remembering up to 10000 ids by default.
func NewInMemoryDeduper(opts ...Option) *InMemoryDeduper {
	d := &InMemoryDeduper{
		maxSize: defaultMaxSize,
		order:   list.New(),
		seen:    make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SeenAndRecord implements Deduper.
func (d *InMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 {
		for d.order.Len() >= d.maxSize {
			oldest := d.order.Front()
			delete(d.seen, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}
	d.seen[id] = d.order.PushBack(id)
	return false
}

// Unrecord implements Deduper.
func (d *InMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.seen[id]; ok {
		d.order.Remove(e)
		delete(d.seen, id)
	}
}

// Size implements Deduper.
func (d *InMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
