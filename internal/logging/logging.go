// Package logging builds the process logger from the configuration and
// carries it through contexts.
//
// Three formats exist: "text" and "json" use the log/slog handlers, "pretty"
// uses charmbracelet/log for a human-oriented terminal view. Subsystems tag
// their records with [Component].
package logging

import (
	"context"
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/hupe1980/carbonwatch/internal/config"
)

// ComponentKey is the attribute that names the subsystem of a record.
const ComponentKey = "component"

type handlerFunc func(w io.Writer, level slog.Level, noColor bool) slog.Handler

var handlers = map[string]handlerFunc{
	config.LogFormatText: func(w io.Writer, level slog.Level, _ bool) slog.Handler {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	},
	config.LogFormatJSON: func(w io.Writer, level slog.Level, _ bool) slog.Handler {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	},
	config.LogFormatPretty: newPrettyHandler,
}

// SetupWithWriter builds the logger for cfg writing to w and installs it as
// the slog default. Unknown formats fall back to text.
func SetupWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	newHandler, ok := handlers[cfg.LogFormat]
	if !ok {
		newHandler = handlers[config.LogFormatText]
	}

	logger := slog.New(newHandler(w, ParseLevel(cfg.EffectiveLogLevel()), cfg.NoColor))
	slog.SetDefault(logger)

	return logger
}

func newPrettyHandler(w io.Writer, level slog.Level, noColor bool) slog.Handler {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		// charmbracelet/log levels share slog's numeric values.
		Level: charmlog.Level(level),
	})

	if noColor {
		l.SetColorProfile(termenv.Ascii)
	}

	return l
}

// Component returns logger tagged with the subsystem name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}

	return logger.With(slog.String(ComponentKey, name))
}

// ParseLevel converts a configured level name to slog.Level. Unknown names
// map to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type ctxKey struct{}

// NewContext returns a child context carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from ctx, falling back to slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}
