package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger built by New.
type Options struct {
	// Verbose enables debug output with timestamps.
	Verbose bool

	// File, when set, receives a copy of every log line. The file is rotated
	// by size.
	File string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Rotation defaults for the log file
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to w and, if opts.File is set, to a rotating
// log file. The returned io.Closer releases the file and must be closed by
// the caller.
func New(w io.Writer, opts Options) (*log.Logger, io.Closer, error) {
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		fileWriter := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: orDefault(opts.MaxBackups, DefaultMaxBackups),
			MaxAge:     orDefault(opts.MaxAgeDays, DefaultMaxAgeDays),
		}
		w = io.MultiWriter(w, fileWriter)
		closer = fileWriter
	}

	options := log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: false,
	}
	if opts.Verbose {
		options.Level = log.DebugLevel
		options.ReportTimestamp = true
		options.TimeFormat = "15:04:05"
	}

	return log.NewWithOptions(w, options), closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
