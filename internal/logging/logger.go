// Package logging holds the process-wide slog logger. Every logger built
// here redacts credentials before anything is written.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	// stdout belongs to command output.
	l, _ := build(os.Stderr, slog.LevelWarn, "text")
	current.Store(l)
}

func build(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "json":
		h = slog.NewJSONHandler(w, opts)
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (expected json or text)", format)
	}
	return slog.New(NewRedactingHandler(h)), nil
}

// Configure installs a logger writing format ("json" or "text") to w.
func Configure(w io.Writer, level slog.Level, format string) error {
	l, err := build(w, level, format)
	if err != nil {
		return err
	}
	current.Store(l)
	return nil
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// SetLogger installs l as is and returns the logger it replaced.
func SetLogger(l *slog.Logger) *slog.Logger {
	return current.Swap(l)
}

func Logger() *slog.Logger { return current.Load() }

func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

func DebugContext(ctx context.Context, msg string, args ...any) {
	Logger().DebugContext(ctx, msg, args...)
}

// Attribute helpers keep key names consistent across packages.

func Kind(kind string) slog.Attr       { return slog.String("kind", kind) }
func Endpoint(path string) slog.Attr   { return slog.String("endpoint", path) }
func Component(name string) slog.Attr { return slog.String("component", name) }

// Err renders err as a string attribute; a nil error gives an empty value.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
