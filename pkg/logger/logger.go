// Package logger owns the process-wide slog setup for the research
// management service: JSON records in production, human-readable text
// in development, with the service name stamped on every record.
package logger

import (
	"log/slog"
	"os"
)

const serviceName = "research-management"

var defaultLogger *slog.Logger

// Init builds the process logger for the given APP_ENV value and
// installs it as the slog default.
func Init(env string) {
	var handler slog.Handler

	switch env {
	case "production", "staging":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	defaultLogger = slog.New(handler).With(slog.String("service", serviceName))
	slog.SetDefault(defaultLogger)
}

// Default returns the process logger, initializing a development one
// when Init has not run yet (tests, one-off commands).
func Default() *slog.Logger {
	if defaultLogger == nil {
		Init("development")
	}
	return defaultLogger
}
