// Command spadl converts StatsBomb event data to SPADL actions.
//
// Usage:
//
//	spadl serve
//	spadl convert --events 7584.json --game-id 7584 --home-team-id 782
//	spadl minutes --events 7584.json --game-id 7584
//	spadl validate --actions actions.json
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/spadl/pkg/logger"
)

type rootFlags struct {
	logLevel  string
	logFormat string
}

func main() {
	// .env values never override the real environment
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "spadl",
		Short:        "Convert soccer event data to SPADL actions",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level for one-shot commands (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", logger.FormatConsole, "Log format for one-shot commands (json, console)")

	root.AddCommand(serveCmd())
	root.AddCommand(convertCmd(flags))
	root.AddCommand(minutesCmd(flags))
	root.AddCommand(validateCmd(flags))
	return root
}

// initLogging configures the global logger for the one-shot commands. The
// server takes its logging settings from the configuration instead.
func initLogging(flags *rootFlags) error {
	if err := logger.InitWithFormat(flags.logFormat); err != nil {
		return err
	}
	return logger.SetLevelString(flags.logLevel)
}
