package testevents

import (
	"os"

	"github.com/cockroachdb/errors"

	"github.com/okian/spadl/pkg/logger"
)

// SetupLogging initializes the global logger. verbose enables debug output.
func SetupLogging(format string, verbose bool) error {
	if err := logger.InitWithFormat(format); err != nil {
		return errors.Wrap(err, "initialize logger")
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the smoke test tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`SPADL Smoke Test Tool
=====================

Generates synthetic StatsBomb matches, submits them to a running spadl
server and verifies the converted actions and player minutes it serves.

Usage:
  go run ./cmd/test-events [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -games int         Number of games to generate and submit (default 20)
  -seed uint         Seed of the first generated game (default 1)
  -workers int       Number of concurrent submitters (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 30s)
  -wait duration     How long to wait for each game (default 2m)
  -output string     Directory to save generated event files
  -log-format string Log format: json or console (default "console")
  -verbose           Enable verbose logging
  -help              Show this help message
`)
}
