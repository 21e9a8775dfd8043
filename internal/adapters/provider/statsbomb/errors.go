package statsbomb

import "github.com/cockroachdb/errors"

// ErrDecode is returned when a payload is not a StatsBomb event array.
var ErrDecode = errors.New("statsbomb: decode events")
