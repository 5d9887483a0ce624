package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/jpalmerr/weatherpanel/config"
)

// defaultTerminalLogFile receives logs while the terminal display owns the
// screen and no --log-file was given.
const defaultTerminalLogFile = "weatherpanel.log"

// parseLevel maps a validated config level to a slog level.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// newLogger builds the process logger: colored tint output for "text",
// JSON otherwise.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := parseLevel(cfg.Level)

	if cfg.Format == "text" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    w != os.Stderr && w != os.Stdout,
		}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})).With("version", version)
}

// logOutput picks where logs go. The terminal display draws on the tty, so
// logs are redirected to a file unless one was chosen explicitly.
func logOutput(path string, terminal bool) (io.Writer, func(), error) {
	if path == "" && terminal {
		path = defaultTerminalLogFile
	}
	if path == "" || path == "-" {
		return os.Stderr, func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
