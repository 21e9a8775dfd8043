package testevents

import "time"

// Defaults applied when Config leaves a field empty.
const (
	DefaultPollInterval = 250 * time.Millisecond
	DefaultWaitTimeout  = 2 * time.Minute
	DefaultTimeout      = 30 * time.Second
)

// PercentageMultiplier converts ratios to percentages.
const PercentageMultiplier = 100
