// Package logging builds the runtime's slog logger: a size-rotated log
// file plus an optional console copy.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level       string
	File        string
	MaxSizeMB   int
	BackupCount int
	Console     bool
}

// ParseLevel accepts DEBUG, INFO, WARNING (or WARN) and ERROR in any case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger owns the handler and the rotating file behind it.
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
}

// New builds a logger from cfg. With neither a file nor console output it
// discards everything.
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return newLogger(cfg, level, os.Stderr), nil
}

func newLogger(cfg Config, level slog.Level, console io.Writer) *Logger {
	var writers []io.Writer
	l := &Logger{}

	if cfg.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.BackupCount,
		}
		writers = append(writers, l.file)
	}
	if cfg.Console && console != nil {
		writers = append(writers, console)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	l.Logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return l
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
