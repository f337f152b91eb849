// Package logging provides a tiny abstraction over slog so downstream code
// depends on a minimal interface while callers plug in any structured
// handler (JSON, text, tint). Components receive a Logger at construction;
// the zero-configuration default is NoOpLogger.
package logging

import (
	"io"
	"log/slog"
)

// Logger is the minimal structured logging interface used throughout the
// engine. Args follow slog key/value convention.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement Logger.
type SlogAdapter struct{ *slog.Logger }

// NewSlogAdapter creates a Logger from an existing *slog.Logger.
func NewSlogAdapter(l *slog.Logger) Logger { return &SlogAdapter{Logger: l} }

// NewJSONLogger creates a Logger writing JSON records at the given level.
func NewJSONLogger(w io.Writer, level slog.Level) Logger {
	return NewSlogAdapter(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

// With returns a Logger with the given attributes attached to every record.
func (s *SlogAdapter) With(args ...any) Logger {
	return &SlogAdapter{Logger: s.Logger.With(args...)}
}

// NoOpLogger discards all log messages. Useful in tests or when logging is
// disabled.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...any) {}
func (NoOpLogger) Info(string, ...any)  {}
func (NoOpLogger) Warn(string, ...any)  {}
func (NoOpLogger) Error(string, ...any) {}
