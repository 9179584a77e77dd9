package entdb

import (
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/entdb/core"
)

// Logger wraps slog.Logger with entdb-specific context so backends log with
// consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithEnt tags the logger with an ent id.
func (l *Logger) WithEnt(id core.ID) *Logger {
	return &Logger{Logger: l.Logger.With(slog.Uint64("ent_id", uint64(id)))}
}

// WithBackend tags the logger with a backend name.
func (l *Logger) WithBackend(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("backend", name))}
}
