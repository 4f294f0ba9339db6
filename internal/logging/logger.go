// Package logging provides structured logging configuration using log/slog.
//
// This package integrates with chi's RequestID middleware to propagate
// request IDs through structured log entries, enabling request tracing
// across the entire request lifecycle.
//
// When a log file is configured every record is also written to it as a
// JSON line. That file is the application log browsed by the Log table.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// ChannelKey is the attribute naming the subsystem that emitted a record.
const ChannelKey = "channel"

// DefaultChannel is assumed for records without a channel attribute.
const DefaultChannel = "app"

// Options configures Setup.
type Options struct {
	// Level is one of "debug", "info", "warn", "error" (default: "info").
	Level string
	// Format is "text" or "json" (default: "text").
	Format string
	// File, when set, receives every record as a JSON line.
	File string
}

// Setup configures the global slog logger.
//
// Text format on a terminal is colorized with tint. Use "json" format in
// production for machine parsing.
//
// The returned closer releases the log file; it is a no-op when no file is
// configured.
func Setup(opts Options) (io.Closer, error) {
	level := parseLevel(opts.Level)
	console := newConsoleHandler(os.Stdout, level, opts.Format)

	if opts.File == "" {
		slog.SetDefault(slog.New(console))
		return nopCloser{}, nil
	}

	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.SetDefault(slog.New(console))
		return nopCloser{}, fmt.Errorf("open log file %s: %w", opts.File, err)
	}

	file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(Fanout(console, file)))
	return f, nil
}

func newConsoleHandler(out *os.File, level slog.Level, format string) slog.Handler {
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		return tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		})
	}
	return slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
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

// FromContext returns a logger enriched with request context.
//
// When called with a request context that contains a chi RequestID,
// the returned logger automatically includes request_id in all log entries.
//
// Usage:
//
//	func handleTable(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("processing query", "table", name)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	// Chi's RequestID middleware stores the ID in context
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
// Usage:
//
//	queryLogger := logging.WithFields(ctx,
//	    "table", name,
//	    "search", query.Search,
//	)
//	queryLogger.Debug("query resolved")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

// Channel returns a context logger tagged with a channel ("security",
// "search", ...). Channels are the grouping offered by the log browser.
func Channel(ctx context.Context, name string) *slog.Logger {
	return FromContext(ctx).With(ChannelKey, name)
}
