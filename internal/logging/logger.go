package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger is the leveled logging capability handed to every component.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// LevelLogger provides leveled printf-style logging on top of a slog handler
type LevelLogger struct {
	level LogLevel
	sl    *slog.Logger
}

// New creates a logger with the specified level writing text records to w
func New(level LogLevel, w io.Writer) *LevelLogger {
	return NewWithHandler(level, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// NewWithHandler creates a logger over an arbitrary slog handler
func NewWithHandler(level LogLevel, h slog.Handler) *LevelLogger {
	return &LevelLogger{level: level, sl: slog.New(h)}
}

// NewDefault creates a stderr logger based on the LOG_LEVEL and LOG_FORMAT
// environment variables
func NewDefault() *LevelLogger {
	level := ParseLevel(os.Getenv("LOG_LEVEL"))
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		return NewWithHandler(level, slog.NewJSONHandler(os.Stderr, opts))
	}
	return NewWithHandler(level, slog.NewTextHandler(os.Stderr, opts))
}

// ParseLevel maps ERROR|WARN|INFO|DEBUG to a level, defaulting to INFO
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN", "WARNING":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// With returns a logger that adds the given attributes to every record
func (l *LevelLogger) With(args ...any) *LevelLogger {
	return &LevelLogger{level: l.level, sl: l.sl.With(args...)}
}

// Error logs error messages
func (l *LevelLogger) Error(format string, args ...interface{}) {
	l.log(LogLevelError, slog.LevelError, format, args...)
}

// Warn logs warning messages
func (l *LevelLogger) Warn(format string, args ...interface{}) {
	l.log(LogLevelWarn, slog.LevelWarn, format, args...)
}

// Info logs info messages
func (l *LevelLogger) Info(format string, args ...interface{}) {
	l.log(LogLevelInfo, slog.LevelInfo, format, args...)
}

// Debug logs debug messages
func (l *LevelLogger) Debug(format string, args ...interface{}) {
	l.log(LogLevelDebug, slog.LevelDebug, format, args...)
}

// GetLevel returns the current log level
func (l *LevelLogger) GetLevel() LogLevel {
	return l.level
}

func (l *LevelLogger) log(threshold LogLevel, sl slog.Level, format string, args ...interface{}) {
	if l.level < threshold {
		return
	}
	l.sl.Log(context.Background(), sl, fmt.Sprintf(format, args...))
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Nop returns a logger that discards everything
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns l, or a discarding logger when l is nil
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
