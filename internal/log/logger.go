// Package log owns the process-wide zerolog logger.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Canonical field names.
const (
	FieldComponent = "component"
	FieldTaskID    = "task_id"
	FieldPath      = "path"
	FieldOutput    = "output"
	FieldFormat    = "format"
	FieldState     = "state"
	FieldPercent   = "percent"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level  string    // "debug", "info", ...; empty falls back to LOG_LEVEL, then info
	Output io.Writer // defaults to os.Stderr
	JSON   bool      // force JSON even on a terminal
}

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Configure replaces the global logger. Safe to call more than once; the CLI
// calls it after flags and config are resolved.
func Configure(cfg Config) {
	level := zerolog.InfoLevel
	lv := cfg.Level
	if lv == "" {
		lv = os.Getenv("LOG_LEVEL")
	}
	if lv != "" {
		if parsed, err := zerolog.ParseLevel(lv); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	w := cfg.Output
	if w == nil {
		w = os.Stderr
		if !cfg.JSON && term.IsTerminal(int(os.Stderr.Fd())) {
			w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		}
	}

	mu.Lock()
	base = zerolog.New(w).With().Timestamp().Str("service", "vidconv").Logger()
	mu.Unlock()
}

// Base returns the configured base logger instance.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}
