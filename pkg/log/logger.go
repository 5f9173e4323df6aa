package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	perrors "github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/rs/zerolog"
)

// SetupLogger function setup logger.
func SetupLogger(loglevel string) {
	SetupLoggerWithWriter(os.Stdout, loglevel)
}

// SetupLoggerWithWriter installs the default slog logger writing JSON to w,
// and routes library warnings (pkg/errors.Warn) to a zerolog logger on the
// same writer.
func SetupLoggerWithWriter(w io.Writer, loglevel string) {
	level := toLogLevel(loglevel)
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     level,
		// Replace attributes to convert to CloudLogging format.
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{
					Key:   "severity",
					Value: attr.Value,
				}
			case slog.MessageKey:
				attr = slog.Attr{
					Key:   "message",
					Value: attr.Value,
				}
			case slog.SourceKey:
				attr = slog.Attr{
					Key:   "logging.googleapis.com/sourceLocation",
					Value: attr.Value,
				}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(w, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))

	warnLogger := zerolog.New(w).With().Timestamp().Str(ComponentKey, "warnings").Logger()
	if level > slog.LevelWarn {
		warnLogger = warnLogger.Level(zerolog.ErrorLevel)
	}
	perrors.SetZerologWarnFunc(func(warning error) {
		event := warnLogger.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			event = event.Object("warning", obj)
		}
		event.Msg(warning.Error())
	})
}

// ParseLevel converts a textual level into a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level :%s", level)
	}
}

func toLogLevel(level string) slog.Level {
	l, err := ParseLevel(level)
	if err != nil {
		panic(err.Error())
	}
	return l
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

// GetLogger returns a Logger backed by the current default slog logger.
func GetLogger() Logger {
	return &slogLogger{l: slog.Default()}
}

// GetLoggerWithName returns a Logger tagged with the given component name.
func GetLoggerWithName(name string) Logger {
	return &slogLogger{l: slog.Default().With(ComponentKey, name)}
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }

// Error treats a leading error field as the error attribute so that
// ErrFmtHandler can attach its stacktrace.
func (s *slogLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttr(err)}, fields[1:]...)
		}
	}
	s.l.Error(msg, fields...)
}

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}
