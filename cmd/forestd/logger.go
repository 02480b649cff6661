// logger.go - Structured logging setup for the daemon.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the daemon's root zerolog logger. Console output always,
// plus an append-only log file when configured. The returned closer is nil
// when no file is open.
func NewLogger(level string, logFile string) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to parse log level %q: %w", level, err)
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	var w io.Writer = console
	var closer io.Closer
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = zerolog.MultiLevelWriter(console, file)
		closer = file
	}

	log := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return log, closer, nil
}
