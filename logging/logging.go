// Package logging wraps zerolog with the engine's default field set,
// following the shape of alexandrem-coral's internal/logging package.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config controls the logger New builds.
type Config struct {
	// Level is one of "trace", "debug", "info", "warn" (or "warning"),
	// "error", matched case-insensitively; anything else defaults to
	// "info".
	Level string
	// Pretty enables zerolog's human-readable console writer instead
	// of newline-delimited JSON. DefaultConfig, which cmd/gographer
	// uses, sets it to true; the zero value is false.
	Pretty bool
	// Output overrides the destination writer; nil defaults to stderr
	// so that stdout stays reserved for report output.
	Output io.Writer
}

// DefaultConfig is what cmd/gographer uses absent explicit flags: a
// pretty console logger at info level.
func DefaultConfig() Config {
	return Config{Level: "info", Pretty: true}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New builds a configured zerolog.Logger.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

// NewWithComponent builds a logger stamped with a "component" field,
// so log lines from the loader, disassembler, and matcher stay
// distinguishable in aggregate output.
func NewWithComponent(cfg Config, component string) zerolog.Logger {
	return New(cfg).With().Str("component", component).Logger()
}
