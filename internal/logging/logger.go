// Package logging wraps zerolog with caro's redaction pass: every
// message and string field value is sanitized before it reaches the
// underlying sink, so a raw API key or password embedded in a natural
// language request never lands in a log line. Structure and level
// handling follow the teacher pack's reporting.Logger shape.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger is caro's structured logger. The zero value is not usable;
// construct with New.
type Logger struct {
	zl zerolog.Logger
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var out io.Writer = cfg.Output
	if cfg.Format == FormatText {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(out).With().Timestamp().Logger()
	switch cfg.Level {
	case LevelDebug:
		zl = zl.Level(zerolog.DebugLevel)
	case LevelWarn:
		zl = zl.Level(zerolog.WarnLevel)
	case LevelError:
		zl = zl.Level(zerolog.ErrorLevel)
	default:
		zl = zl.Level(zerolog.InfoLevel)
	}

	return &Logger{zl: zl}
}

func (l *Logger) Debug(msg string, fields ...any) { l.emit(l.zl.Debug(), msg, fields...) }
func (l *Logger) Info(msg string, fields ...any)  { l.emit(l.zl.Info(), msg, fields...) }
func (l *Logger) Warn(msg string, fields ...any)  { l.emit(l.zl.Warn(), msg, fields...) }
func (l *Logger) Error(msg string, fields ...any) { l.emit(l.zl.Error(), msg, fields...) }

// WithField returns a child logger carrying one extra structured field.
func (l *Logger) WithField(key string, value any) *Logger {
	if s, ok := value.(string); ok {
		value = Redact(s)
	}
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

func (l *Logger) emit(event *zerolog.Event, msg string, fields ...any) {
	msg = Redact(msg)
	if len(fields)%2 != 0 {
		event.Str("logging_error", "odd number of fields").Msg(msg)
		return
	}
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			event.Str("logging_error", "non-string field key")
			continue
		}
		value := fields[i+1]
		if s, ok := value.(string); ok {
			value = Redact(s)
		}
		event.Interface(key, value)
	}
	event.Msg(msg)
}
