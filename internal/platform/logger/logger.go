// Package logger builds the root structured logger.
package logger

import (
	"log/slog"
	"os"
)

// New returns a text-format slog logger on stdout. Level defaults to info;
// set ROLLCALL_LOG_LEVEL=debug for verbose output.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("ROLLCALL_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
