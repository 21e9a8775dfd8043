package normalize

import "github.com/cockroachdb/errors"

// Period bounds and clock limits.
const (
	FirstPeriod    = 1
	LastPeriod     = 5
	MaxTimeSeconds = 60 * 60

	halfSeconds      = 45 * 60
	extraHalfSeconds = 15 * 60
)

// periodOffsets[p] is removed once for every period boundary crossed before p.
var periodOffsets = [...]int{
	1: halfSeconds,      // leaving the first half
	2: halfSeconds,      // leaving the second half
	3: extraHalfSeconds, // leaving the first extra-time half
	4: extraHalfSeconds, // leaving the second extra-time half
}

// Offset returns the number of seconds subtracted from the raw clock in period.
func Offset(period int) int {
	total := 0
	for p := FirstPeriod; p < period && p < len(periodOffsets); p++ {
		total += periodOffsets[p]
	}
	return total
}

// TimeSeconds converts a raw (period, minute, second) triple, where the
// provider's minute counter keeps running across periods, into the canonical
// clock. Values outside [0, MaxTimeSeconds] are rejected, never clamped.
func TimeSeconds(period, minute, second int) (float64, error) {
	if period < FirstPeriod || period > LastPeriod {
		return 0, errors.Wrapf(ErrInvalidTimestamp, "period %d outside [%d,%d]", period, FirstPeriod, LastPeriod)
	}
	if minute < 0 || second < 0 {
		return 0, errors.Wrapf(ErrInvalidTimestamp, "negative clock %d:%02d", minute, second)
	}
	t := 60*minute + second - Offset(period)
	if t < 0 || t > MaxTimeSeconds {
		return 0, errors.Wrapf(ErrInvalidTimestamp,
			"period %d clock %d:%02d normalizes to %ds outside [0,%d]", period, minute, second, t, MaxTimeSeconds)
	}
	return float64(t), nil
}
