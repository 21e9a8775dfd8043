package normalize

import "github.com/cockroachdb/errors"

// Sentinel kinds for normalization errors.
var (
	// ErrInvalidTimestamp marks a raw clock that does not map into [0, MaxTimeSeconds].
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrInvalidGrid marks a provider grid with a non-positive extent.
	ErrInvalidGrid = errors.New("invalid provider grid")
)
