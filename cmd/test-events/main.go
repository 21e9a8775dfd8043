package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/spadl/internal/domain/normalize"
	"github.com/okian/spadl/internal/testevents"
)

// Default configuration constants.
const (
	defaultNumGames    = 20
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numGames    = flag.Int("games", defaultNumGames, "Number of games to generate and submit")
		seed        = flag.Uint64("seed", 1, "Seed of the first generated game")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout     = flag.Duration("timeout", testevents.DefaultTimeout, "HTTP request timeout")
		wait        = flag.Duration("wait", testevents.DefaultWaitTimeout, "How long to wait for each game")
		outputDir   = flag.String("output", "", "Directory to save generated event files")
		fieldLength = flag.Float64("field-length", normalize.DefaultFieldLength, "Pitch length the server normalizes to")
		fieldWidth  = flag.Float64("field-width", normalize.DefaultFieldWidth, "Pitch width the server normalizes to")
		logFormat   = flag.String("log-format", "console", "Log format: json or console")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp()
		return
	}

	if err := testevents.SetupLogging(*logFormat, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testevents.Config{
		BaseURL:     *baseURL,
		NumGames:    *numGames,
		Seed:        *seed,
		Workers:     *workers,
		Timeout:     *timeout,
		WaitTimeout: *wait,
		OutputDir:   *outputDir,
		Verbose:     *verbose,
		FieldLength: *fieldLength,
		FieldWidth:  *fieldWidth,
	}

	if err := testevents.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: cancel is called explicitly
	}
}
