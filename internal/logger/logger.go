// Package logger provides the logging interface injected into every component.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the structured logging contract used across the pipeline.
// Args are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, err error, args ...any)
	With(args ...any) Logger
}

// Options selects the backend and verbosity.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // json, text, console
	Output io.Writer // defaults to os.Stderr
}

// New builds a Logger. The json and text formats use log/slog; console uses
// zerolog's human-friendly writer.
func New(opts Options) (Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(opts.Format) {
	case "", "json":
		return &slogLogger{l: slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slogLevel(opts.Level)}))}, nil
	case "text":
		return &slogLogger{l: slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slogLevel(opts.Level)}))}, nil
	case "console":
		zl := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}).
			Level(zerologLevel(opts.Level)).
			With().Timestamp().Logger()
		return &zeroLogger{l: zl}, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &slogLogger{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func zerologLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }

func (s *slogLogger) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	s.l.Error(msg, args...)
}

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

type zeroLogger struct {
	l zerolog.Logger
}

func (z *zeroLogger) Debug(msg string, args ...any) { z.l.Debug().Fields(args).Msg(msg) }
func (z *zeroLogger) Info(msg string, args ...any)  { z.l.Info().Fields(args).Msg(msg) }
func (z *zeroLogger) Warn(msg string, args ...any)  { z.l.Warn().Fields(args).Msg(msg) }

func (z *zeroLogger) Error(msg string, err error, args ...any) {
	z.l.Error().Err(err).Fields(args).Msg(msg)
}

func (z *zeroLogger) With(args ...any) Logger {
	return &zeroLogger{l: z.l.With().Fields(args).Logger()}
}
