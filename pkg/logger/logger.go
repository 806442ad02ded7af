package logger

import (
	"log/slog"
	"os"
)

// New returns the JSON slog.Logger shared by the account-service binaries.
// Every record carries the originating service name (api, migrate).
func New(service string, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", service)
}
