package logger

import (
	"log/slog"
	"os"
)

// New returns the application logger. Text handler on stdout; structured
// key/value pairs carry request IDs and error details.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
