package minutes

import "github.com/cockroachdb/errors"

// ErrIncompleteLineupData is returned when the roster entries of a game
// cannot describe who was on the pitch.
var ErrIncompleteLineupData = errors.New("incomplete lineup data")
