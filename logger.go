package featureset

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with featureset-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSetID adds the container id to the logger.
func (l *Logger) WithSetID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("set_id", id),
	}
}

// WithSize adds the container dimensions to the logger.
func (l *Logger) WithSize(rows, cols int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows, "cols", cols),
	}
}

// LogSave logs a container save operation.
func (l *Logger) LogSave(ctx context.Context, path string, rows, cols int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "container saved",
			"path", path,
			"rows", rows,
			"cols", cols,
		)
	}
}

// LogLoad logs a container load operation.
func (l *Logger) LogLoad(ctx context.Context, path string, mmap bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "container loaded",
			"path", path,
			"mmap", mmap,
		)
	}
}

// LogMerge logs a merge operation.
func (l *Logger) LogMerge(ctx context.Context, fastPath bool, rows, cols int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "merge failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "merge completed",
			"fast_path", fastPath,
			"rows", rows,
			"cols", cols,
		)
	}
}
