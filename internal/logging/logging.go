// Package logging configures the process-wide slog logger.
//
// Logs are structured JSON on stderr, tagged with the module name and build
// version. The level comes from an explicit flag value, then the
// KIBRARIAN_LOG_LEVEL and LOG_LEVEL environment variables, and defaults to
// warn so normal command output stays uncluttered. Debug logs carry source
// locations.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kibrarian-labs/kibrarian/internal/branding"
)

const defaultLevel = slog.LevelWarn

// ParseLogLevel converts a level name to a slog.Level. Unknown or empty
// names yield the default level. Matching is case-insensitive and accepts
// "warning" as an alias for "warn".
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultLevel
	}
}

// LevelFromEnv returns the level name configured in the environment, or "".
func LevelFromEnv() string {
	if v := os.Getenv(branding.EnvVar("LOG_LEVEL")); v != "" {
		return v
	}
	return os.Getenv("LOG_LEVEL")
}

// NewStructuredLogger returns a JSON logger on stderr for the given module.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	return newStructuredLogger(os.Stderr, module, version, level)
}

func newStructuredLogger(w io.Writer, module, version, level string) *slog.Logger {
	lvl := ParseLogLevel(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(handler).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}

// SetDefaultStructuredLogger installs a structured logger as the slog
// default, with the level taken from the environment.
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, LevelFromEnv())
}

// SetDefaultStructuredLoggerWithLevel installs a structured logger as the
// slog default with an explicit level. An empty level falls back to the
// environment.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	if level == "" {
		level = LevelFromEnv()
	}
	slog.SetDefault(NewStructuredLogger(module, version, level))
}
