// Package logger provides structured logging built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Level represents a logging level.
type Level slog.Level

// Supported logging levels.
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// TraceIDFn extracts a trace id from the context for log correlation.
type TraceIDFn func(ctx context.Context) string

// LoggerInterface is the logging contract shared infrastructure depends on.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
}

// Logger writes structured log records to the configured writer.
type Logger struct {
	handler   slog.Handler
	traceIDFn TraceIDFn
}

// New creates a Logger writing JSON records to w at the given minimum level.
// The service name is attached to every record. traceIDFn may be nil.
func New(w io.Writer, minLevel Level, service string, traceIDFn TraceIDFn) *Logger {
	handler := slog.Handler(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.Level(minLevel),
	}))
	handler = handler.WithAttrs([]slog.Attr{slog.String("service", service)})

	return &Logger{
		handler:   handler,
		traceIDFn: traceIDFn,
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelDebug, msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelWarn, msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelError, msg, args...)
}

func (l *Logger) write(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.handler.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.Add(args...)

	if l.traceIDFn != nil {
		if traceID := l.traceIDFn(ctx); traceID != "" {
			r.Add("trace_id", traceID)
		}
	}

	_ = l.handler.Handle(ctx, r)
}
