// Package logger routes simulator diagnostics through log/slog to the console
// and to an optional rotating file.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	current *slog.Logger
	file    *lumberjack.Logger
)

var levels = map[string]slog.Level{
	"DEBUG":   slog.LevelDebug,
	"INFO":    slog.LevelInfo,
	"WARN":    slog.LevelWarn,
	"WARNING": slog.LevelWarn,
	"ERROR":   slog.LevelError,
}

// Initialize installs a logger built from cfg. Any previously opened log
// file is closed.
func Initialize(cfg Config) error {
	level := parseLogLevel(cfg.Level)

	var outputs []slog.Handler
	if cfg.ConsoleEnabled {
		outputs = append(outputs, formatHandler(os.Stderr, cfg.ConsoleFormat, level))
	}

	var rotated *lumberjack.Logger
	if cfg.FileEnabled {
		if cfg.FilePath == "" {
			return errors.New("file logging enabled without a file path")
		}
		rotated = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.FileMaxSizeMB,
			MaxBackups: cfg.FileMaxBackups,
			MaxAge:     cfg.FileMaxAgeDays,
			Compress:   cfg.FileCompress,
		}
		outputs = append(outputs, formatHandler(rotated, cfg.FileFormat, level))
	}

	var h slog.Handler
	switch len(outputs) {
	case 0:
		h = formatHandler(os.Stderr, "text", level)
	case 1:
		h = outputs[0]
	default:
		h = fanout(outputs)
	}

	mu.Lock()
	prev := file
	current, file = slog.New(h), rotated
	mu.Unlock()
	if prev != nil {
		return prev.Close()
	}
	return nil
}

// Close flushes and closes the rotating log file, if one is open.
func Close() error {
	mu.Lock()
	f := file
	file = nil
	mu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

// Use replaces the package logger. Passing nil silences logging.
func Use(l *slog.Logger) {
	mu.Lock()
	current = l
	mu.Unlock()
}

// Logger returns the package logger, or a discard logger when none is set.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return current
}

// With returns a child logger carrying args on every record, such as the
// batch id of a recompute or the remote address of a feed client.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

func formatHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLogLevel maps a configured level name to slog. Unknown names log at
// INFO.
func parseLogLevel(level string) slog.Level {
	if l, ok := levels[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return l
	}
	return slog.LevelInfo
}

func emit(level slog.Level, msg string, args ...any) {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		l.Log(context.Background(), level, msg, args...)
	}
}

// Debug logs per-target detail.
func Debug(msg string, args ...any) { emit(slog.LevelDebug, msg, args...) }

// Info logs batch lifecycle events.
func Info(msg string, args ...any) { emit(slog.LevelInfo, msg, args...) }

// Warning logs recoverable problems such as unknown ids.
func Warning(msg string, args ...any) { emit(slog.LevelWarn, msg, args...) }

func Error(msg string, args ...any) { emit(slog.LevelError, msg, args...) }

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
