// Package logger constructs the application's zerolog logger.
package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger writing to stderr. Format is "console" for
// human-readable output or "json" for machine-readable output.
func New(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var logger zerolog.Logger
	switch format {
	case "console":
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	case "json":
		logger = zerolog.New(os.Stderr)
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}

	return logger.Level(lvl).With().Timestamp().Logger(), nil
}
