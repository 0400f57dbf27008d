// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level to emit: trace, debug, info, warn,
	// error, fatal, panic or disabled.
	Level string

	// Format selects the output encoding: "json" or "console".
	Format string

	// Caller adds the file:line of the call site to each entry.
	Caller bool

	// Timestamp adds an RFC3339 timestamp to each entry.
	Timestamp bool

	// Output is the destination writer. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the production defaults: info-level JSON to
// stderr with timestamps.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Caller:    false,
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var (
	logMu sync.RWMutex
	log   zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.ErrorFieldName = "error"

	log = newLogger(DefaultConfig())
}

// Init configures the global logger. Call once at startup, before any
// goroutines log.
func Init(cfg Config) {
	logMu.Lock()
	defer logMu.Unlock()
	log = newLogger(cfg)
}

func newLogger(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).Level(parseLevel(cfg.Level))

	ctx := logger.With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// parseLevel maps a level string to a zerolog level, defaulting to info
// for unknown values.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns a copy of the global logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Logger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}

// SetLogger replaces the global logger. Intended for tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(logger zerolog.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	log = logger
}

// With returns a context builder on the global logger for deriving
// child loggers with fixed fields.
func With() zerolog.Context {
	return Logger().With()
}

// WithComponent derives a child logger tagged with a component field.
//
//	engineLogger := logging.WithComponent("recommend")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

// GetLevel returns the global logger's level.
func GetLevel() zerolog.Level {
	return Logger().GetLevel()
}

// SetLevelString adjusts the global logger's level at runtime.
func SetLevelString(level string) {
	logMu.Lock()
	defer logMu.Unlock()
	log = log.Level(parseLevel(level))
}

// IsLevelEnabled reports whether entries at the given level would be
// emitted.
func IsLevelEnabled(level zerolog.Level) bool {
	return level >= GetLevel()
}

// Trace starts a trace-level entry on the global logger.
func Trace() *zerolog.Event { l := Logger(); return l.Trace() }

// Debug starts a debug-level entry on the global logger.
func Debug() *zerolog.Event { l := Logger(); return l.Debug() }

// Info starts an info-level entry on the global logger.
func Info() *zerolog.Event { l := Logger(); return l.Info() }

// Warn starts a warn-level entry on the global logger.
func Warn() *zerolog.Event { l := Logger(); return l.Warn() }

// Error starts an error-level entry on the global logger.
func Error() *zerolog.Event { l := Logger(); return l.Error() }

// Err starts an error-level entry with the error attached, or an
// info-level entry when err is nil.
func Err(err error) *zerolog.Event { l := Logger(); return l.Err(err) }

// Fatal starts a fatal-level entry; the logger calls os.Exit(1) after
// the message is written.
func Fatal() *zerolog.Event { l := Logger(); return l.Fatal() }

// Panic starts a panic-level entry; the logger panics after the message
// is written.
func Panic() *zerolog.Event { l := Logger(); return l.Panic() }

// NewTestLogger returns a logger writing JSON to w, for asserting on
// log output in tests.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.TraceLevel).With().Timestamp().Logger()
}
