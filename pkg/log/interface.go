// Package log provides structured logging for the houseprice pipeline.
//
// The Logger interface is a minimal, slog-compatible surface so that
// components can take a logger as a dependency and tests can swap in a
// TestLogger. The default implementation writes JSON through log/slog with
// ErrFmtHandler; warnings raised through pkg/errors are written by zerolog.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("training").With(
//	    log.ModelNameKey, "LinearRegression",
//	)
//	logger.Info("Training started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 1000,
//	    log.FeaturesKey, 6,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
type Logger interface {
	// Debug logs a debug-level message with optional key-value fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional key-value fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional key-value fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error it
	// is logged under ErrAttrKey together with its stacktrace.
	//
	//   logger.Error("Failed to load artifacts", err, log.ArtifactDirKey, dir)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
