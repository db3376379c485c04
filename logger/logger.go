// Package logger configures the process-wide slog logger. Level and format
// come from the config file and fall back to LOG_LEVEL and LOG_FORMAT.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
)

// Options selects the handler. Empty fields fall back to the environment and
// then to info/text on stderr.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// ParseLevel maps a level name to a slog level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger without touching the default.
func New(opts Options) *slog.Logger {
	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	format := opts.Format
	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	ho := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(out, ho)
	} else {
		h = slog.NewTextHandler(out, ho)
	}
	return slog.New(h)
}

// Setup replaces the default logger and returns it.
func Setup(opts Options) *slog.Logger {
	l := New(opts)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	return l
}

// Discard installs a logger that drops everything. The terminal UI uses it
// when no log file is configured.
func Discard() *slog.Logger {
	return Setup(Options{Output: io.Discard})
}

// L returns the default logger, initializing it from the environment.
func L() *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		return Setup(Options{})
	}
	return l
}
