package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/scandeer/printbridge/internal/infrastructure/config"
)

// Logger is the application logger. It embeds *slog.Logger, so the
// narrow Logger interfaces declared by consumers (printer, bridge,
// escpos) are all satisfied by the same value.
type Logger struct {
	*slog.Logger
}

// New builds a logger from the logging section of config.yaml. Format
// selects JSON (default) or text output; unknown levels fall back to
// info.
func New(cfg config.LoggingConfig, version string) *Logger {
	var out io.Writer = os.Stdout
	if strings.ToLower(cfg.Output) == "stderr" {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "printbridge"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// Default returns a stdout JSON logger at info level, for use before
// the configuration file has been read.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}

// With returns a child logger carrying extra default attributes.
//
//	mqttLog := log.With("component", "mqtt")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

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
