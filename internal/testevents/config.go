package testevents

import "time"

// Config holds configuration for the smoke test.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumGames     int           // Number of games to generate
	Seed         uint64        // Seed of the first game; game i uses Seed+i
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between result polls
	WaitTimeout  time.Duration // How long to wait for a game to finish
	OutputDir    string        // Directory for generated event files; empty skips saving
	Verbose      bool          // Enable verbose logging
	FieldLength  float64       // Pitch length the server normalizes to
	FieldWidth   float64       // Pitch width the server normalizes to
}

// Stats holds test statistics.
type Stats struct {
	GamesGenerated  int
	GamesSubmitted  int
	GamesAccepted   int
	GamesDuplicate  int
	GamesFailed     int
	GamesVerified   int
	ActionsReceived int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
