package dedupe

// Option configures a Deduper.
type Option func(*InMemoryDeduper)

// WithMaxSize bounds the number of remembered game ids. When the bound is
// reached the oldest id is forgotten. A size of zero or less is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *InMemoryDeduper) {
		d.maxSize = maxSize
	}
}
