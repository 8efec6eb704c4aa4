package memdebug

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with memdebug-specific context.
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
// At slog.LevelDebug every allocation, resize and release is traced.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithArena adds an arena name field to the logger.
func (l *Logger) WithArena(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("arena", name),
	}
}

// WithSite adds a call site group to the logger.
func (l *Logger) WithSite(site CallSite) *Logger {
	return &Logger{
		Logger: l.Logger.With("site", site),
	}
}

// tracing reports whether lifecycle events would be emitted.
func (l *Logger) tracing(ctx context.Context) bool {
	return l.Enabled(ctx, slog.LevelDebug)
}

// LogAlloc logs an allocation.
func (l *Logger) LogAlloc(ctx context.Context, addr uintptr, size int, site CallSite) {
	l.DebugContext(ctx, "malloc",
		"size", size,
		"addr", addr,
		"site", site,
	)
}

// LogRealloc logs a resize.
func (l *Logger) LogRealloc(ctx context.Context, oldAddr, newAddr uintptr, size int, site CallSite) {
	l.DebugContext(ctx, "realloc",
		"old_addr", oldAddr,
		"size", size,
		"addr", newAddr,
		"site", site,
	)
}

// LogFree logs a release.
func (l *Logger) LogFree(ctx context.Context, addr uintptr, site CallSite) {
	l.DebugContext(ctx, "free",
		"addr", addr,
		"site", site,
	)
}

// LogFault logs a fatal memory fault just before the process exits.
func (l *Logger) LogFault(ctx context.Context, err error) {
	l.ErrorContext(ctx, "memory fault",
		"exit_code", ExitCode(err),
		"error", err,
	)
}

// LogArena logs an arena lifecycle event.
func (l *Logger) LogArena(ctx context.Context, name, event string, regions int) {
	l.DebugContext(ctx, "arena "+event,
		"arena", name,
		"regions", regions,
	)
}
