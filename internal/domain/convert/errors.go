package convert

import "github.com/cockroachdb/errors"

// ErrInvalidSource is returned when a Source cannot be used for conversion.
var ErrInvalidSource = errors.New("invalid event source")
