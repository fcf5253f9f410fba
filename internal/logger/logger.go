// Package logger wraps log/slog with the level/format switches the
// services read from the environment.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	JSON = "json"
	Text = "text"
)

// Logger embeds *slog.Logger so callers use the usual Info/Warn/Error.
type Logger struct {
	*slog.Logger
}

// Config selects level, output format and a service attribute stamped on
// every record.
type Config struct {
	Level     string
	Format    string
	Output    io.Writer
	AddSource bool
	Service   string
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, Text) {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *Logger {
	return New(Config{Output: io.Discard})
}

// Fatal logs at error level and exits with status 1.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
