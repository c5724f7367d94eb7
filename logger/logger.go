// Package logger provides a structured logging interface backed by
// zerolog. Components receive a Logger and derive scoped loggers with
// With; output goes to stderr by default, optionally also to a file.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Field represents a key-value pair for structured log output.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for constructing a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is an interface for structured logging. Implementations write
// entries at Debug, Info, Warn, and Error levels and support attaching
// structured fields. Derive component-scoped loggers with With.
type Logger interface {
	// Debug logs a message at debug level with optional structured fields.
	Debug(msg string, fields ...Field)

	// Info logs a message at info level with optional structured fields.
	Info(msg string, fields ...Field)

	// Warn logs a message at warn level with optional structured fields.
	Warn(msg string, fields ...Field)

	// Error logs a message at error level with optional structured fields.
	Error(msg string, fields ...Field)

	// With returns a new Logger that includes the given fields in all
	// subsequent entries. The original Logger is unchanged.
	With(fields ...Field) Logger

	// Close releases resources held by the logger (e.g. a file sink).
	// Safe to call multiple times.
	Close() error
}

type zerologLogger struct {
	logger zerolog.Logger
	sink   *os.File
}

// New builds a Logger that writes human-readable output to stderr,
// tagged with the service name and filtered by level.
//
// Parameters:
//   - serviceName: Name of the service, added as a field to every entry
//   - level: Minimum level to log (e.g. zerolog.InfoLevel)
//
// Returns:
//   - A Logger writing to stderr
func New(serviceName string, level zerolog.Level) Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return &zerologLogger{
		logger: zerolog.New(out).With().Str("service", serviceName).Timestamp().Logger().Level(level),
	}
}

// NewWithFile builds a Logger that writes to stderr and appends JSON
// entries to the file at path, creating it if needed.
//
// Parameters:
//   - serviceName: Name of the service, added as a field to every entry
//   - path: Log file path, opened in append mode
//   - level: Minimum level to log
//
// Returns:
//   - A Logger writing to stderr and the file, or an error if the file
//     cannot be opened
func NewWithFile(serviceName, path string, level zerolog.Level) (Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	multi := io.MultiWriter(zerolog.ConsoleWriter{Out: os.Stderr}, f)
	return &zerologLogger{
		logger: zerolog.New(multi).With().Str("service", serviceName).Timestamp().Logger().Level(level),
		sink:   f,
	}, nil
}

// NewFromZerolog wraps an existing zerolog.Logger. Used by tests to
// capture output.
func NewFromZerolog(l zerolog.Logger) Logger {
	return &zerologLogger{logger: l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zerologLogger{logger: zerolog.Nop()}
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to
// a zerolog level. Unknown strings default to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return lvl
}

// Debug implements Logger.
func (z *zerologLogger) Debug(msg string, fields ...Field) {
	z.logger.Debug().Fields(toMap(fields)).Msg(msg)
}

// Info implements Logger.
func (z *zerologLogger) Info(msg string, fields ...Field) {
	z.logger.Info().Fields(toMap(fields)).Msg(msg)
}

// Warn implements Logger.
func (z *zerologLogger) Warn(msg string, fields ...Field) {
	z.logger.Warn().Fields(toMap(fields)).Msg(msg)
}

// Error implements Logger.
func (z *zerologLogger) Error(msg string, fields ...Field) {
	z.logger.Error().Fields(toMap(fields)).Msg(msg)
}

// With implements Logger. The derived logger shares the file sink but
// does not own it; only the logger returned by NewWithFile closes it.
func (z *zerologLogger) With(fields ...Field) Logger {
	return &zerologLogger{
		logger: z.logger.With().Fields(toMap(fields)).Logger(),
	}
}

// Close implements Logger.
func (z *zerologLogger) Close() error {
	if z.sink != nil {
		err := z.sink.Close()
		z.sink = nil
		return err
	}

	return nil
}

func toMap(fields []Field) map[string]any {
	if len(fields) == 0 {
		return nil
	}

	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}

	return m
}
