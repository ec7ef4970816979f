// Package logging builds the structured logger shared by the server and CLI.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	File   string // rotated log file; empty logs to Output only
	Prefix string

	// Output receives every line; defaults to stderr.
	Output io.Writer
}

// New creates a logger writing to Output and, when File is set, to a
// rotating file as well. The returned closer releases the file.
func New(cfg Config) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		l, err := log.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, nil, err
		}
		level = l
	}

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, err
		}
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		writer = io.MultiWriter(writer, fileWriter)
		closer = fileWriter
	}

	logger := log.NewWithOptions(writer, log.Options{
		ReportCaller:    level == log.DebugLevel,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          cfg.Prefix,
	})
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
