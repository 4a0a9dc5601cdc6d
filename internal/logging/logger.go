// Package logging provides structured logging for the assistant.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/normanking/pia/internal/config"
)

// Logger wraps slog and owns the optional log file.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New creates a text logger at info level writing to stdout.
func New() *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &Logger{Logger: slog.New(handler)}
}

// FromConfig creates a logger from the loaded configuration. When a log file
// is configured but cannot be opened the logger falls back to stdout rather
// than failing startup.
func FromConfig(cfg *config.Config) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var output io.Writer = os.Stdout
	var logFile *os.File
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			output = f
			logFile = f
		}
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler), file: logFile}
}

// Component returns a child logger tagged with a component name.
func (l *Logger) Component(name string) *slog.Logger {
	return l.Logger.With("component", name)
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
