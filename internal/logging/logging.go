// Package logging builds the process-wide structured logger. Everything the
// service logs is JSON on stderr; installations that keep local history next
// to the database can tee the stream into a file via LOG_FILE.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"windowlog/internal/config"
)

// New builds the logger described by cfg and installs it as the slog default
// so package-level slog calls share it. The cleanup closes the log file when
// one is in use; main defers it.
func New(cfg *config.Config) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	cleanup := func() {}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		cleanup = func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(cfg.LogLevel)}))
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

// level maps the LOG_LEVEL setting onto a slog level. Anything unrecognized
// falls back to info rather than failing startup.
func level(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
