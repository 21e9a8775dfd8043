package testevents

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/okian/spadl/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run generates games, submits them to a running server and verifies what it
// serves back.
func Run(ctx context.Context, config *Config) error {
	applyDefaults(config)
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting spadl smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("games", config.NumGames),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("verbose", config.Verbose))

	client := NewHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return errors.Wrap(err, "service health check failed")
	}

	// Step 2: Generate games
	matches := make([]*Match, config.NumGames)
	for i := range matches {
		seed := config.Seed + uint64(i)
		matches[i] = GenerateMatch("smoke-"+strconv.FormatUint(seed, 10), seed)
	}
	stats.GamesGenerated = len(matches)

	// Step 3: Save generated games
	if config.OutputDir != "" {
		if err := saveMatches(ctx, config.OutputDir, matches); err != nil {
			logger.Get().Warn(ctx, "failed to save games", logger.Error(err))
		}
	}

	// Step 4: Submit games concurrently
	submitMatches(ctx, config, client, matches, stats)

	// Step 5: Verify results
	if err := verifyMatches(ctx, config, client, matches, stats); err != nil {
		return errors.Wrap(err, "result verification failed")
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

func applyDefaults(config *Config) {
	if config.NumGames < 1 {
		config.NumGames = 1
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = DefaultWaitTimeout
	}
}

func verifyMatches(ctx context.Context, config *Config, client *HTTPClient, matches []*Match, stats *Stats) error {
	logger.Get().Info(ctx, "verifying games", logger.Int("games", len(matches)))

	contract := contractFor(config)
	var actions atomic.Int64
	p := pool.New().WithErrors().WithMaxGoroutines(config.Workers)
	for _, m := range matches {
		p.Go(func() error {
			n, err := verifyMatch(ctx, config, client, contract, m)
			if err != nil {
				return err
			}
			actions.Add(int64(n))
			if config.Verbose {
				logger.Get().Info(ctx, "game verified", logger.String("game_id", m.GameID), logger.Int("actions", n))
			}
			return nil
		})
	}
	err := p.Wait()

	stats.ActionsReceived = int(actions.Load())
	if err != nil {
		return err
	}
	stats.GamesVerified = len(matches)
	return nil
}

// saveMatches writes each game's event document to dir as <game id>.json.
func saveMatches(ctx context.Context, dir string, matches []*Match) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	for _, m := range matches {
		payload, err := m.Payload()
		if err != nil {
			return err
		}
		name := filepath.Join(dir, m.GameID+".json")
		if err := os.WriteFile(name, payload, filePermission); err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	}
	logger.Get().Info(ctx, "games saved", logger.String("dir", dir), logger.Int("games", len(matches)))
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, gamesPerSecond float64
	if stats.GamesSubmitted > 0 {
		successRate = float64(stats.GamesVerified) / float64(stats.GamesSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		gamesPerSecond = float64(stats.GamesVerified) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("gamesGenerated", stats.GamesGenerated),
		logger.Int("gamesSubmitted", stats.GamesSubmitted),
		logger.Int("gamesAccepted", stats.GamesAccepted),
		logger.Int("gamesDuplicate", stats.GamesDuplicate),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("gamesVerified", stats.GamesVerified),
		logger.Int("actionsReceived", stats.ActionsReceived),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("gamesPerSecond", gamesPerSecond))
}
