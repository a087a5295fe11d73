// Package logger configures JSON structured logging.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup returns a slog.Logger that writes JSON structured logs to w.
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

// SetupDefault installs a JSON structured logger as the global logger.
// Pass nil to log to os.Stdout, which is what production uses.
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w))
}
