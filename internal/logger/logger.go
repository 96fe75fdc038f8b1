package logger

import (
	"log/slog"
	"os"
	"strings"
)

var (
	levelVar      slog.LevelVar
	defaultLogger *slog.Logger
)

func init() {
	// Default to JSON handler for structured logs
	levelVar.Set(slog.LevelInfo)
	defaultLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: &levelVar,
	}))
}

// Setup reconfigures the process logger from config values. Unknown values
// keep the defaults (info, json).
func Setup(level, format string) {
	switch strings.ToLower(level) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: &levelVar}
	if strings.ToLower(format) == "text" {
		defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	} else {
		defaultLogger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
}

// SetLogger sets the global logger instance.
func SetLogger(l *slog.Logger) {
	defaultLogger = l
}

// Logger returns the default logger.
func Logger() *slog.Logger {
	return defaultLogger
}

// Info logs at Info level.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Error logs at Error level.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// Warn logs at Warn level.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Debug logs at Debug level.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}
