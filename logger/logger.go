// Package logger is the host's structured logger, a thin wrapper around
// zerolog so packages share one configuration and tag their output by module.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level defines log levels.
type Level int8

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
	PanicLevel
	NoLevel
	Disabled
	TraceLevel Level = -1
)

// Logger wraps a zerolog.Logger.
type Logger struct {
	logger *zerolog.Logger
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns the process-wide console logger at info level.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = NewConsole(InfoLevel, "", false)
	})
	return defaultLogger
}

// New creates a JSON logger writing to w.
func New(w io.Writer, level Level) *Logger {
	l := zerolog.New(w).Level(zerolog.Level(level)).With().Timestamp().Logger()
	return &Logger{logger: &l}
}

// NewConsole creates a human readable logger on stderr. A non-empty tag is
// attached to every entry as "mod".
func NewConsole(level Level, tag string, noColor bool) *Logger {
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}
	ctx := zerolog.New(out).Level(zerolog.Level(level)).With().Timestamp()
	if tag != "" {
		ctx = ctx.Str("mod", tag)
	}
	l := ctx.Logger()
	return &Logger{logger: &l}
}

// Nop returns a logger that drops everything. Handy in tests.
func Nop() *Logger {
	l := zerolog.Nop()
	return &Logger{logger: &l}
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "disabled", "off", "none":
		return Disabled
	default:
		return InfoLevel
	}
}

// With creates a child logger context.
func (l *Logger) With() zerolog.Context { return l.logger.With() }

// Extend returns a logger built from a child context.
func (l *Logger) Extend(ctx zerolog.Context) *Logger {
	logger := ctx.Logger()
	return &Logger{logger: &logger}
}

// Module returns a child logger tagged with a module name.
func (l *Logger) Module(name string) *Logger {
	return l.Extend(l.With().Str("mod", name))
}

// GetLevel returns the current logging level.
func (l *Logger) GetLevel() Level { return Level(l.logger.GetLevel()) }

func (l *Logger) Trace() *zerolog.Event { return l.logger.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }

// Log starts a message with no level.
func (l *Logger) Log() *zerolog.Event { return l.logger.Log() }
