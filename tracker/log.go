package tracker

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// nopCloser ...
type nopCloser struct{}

// Close ...
func (nopCloser) Close() error { return nil }

// NewLogger builds the logger described by the config. Output always goes to
// stderr and, when a log file is configured, to a rotated file as well.
// An unknown log level falls back to info and is reported as an error.
func NewLogger(conf Config) (*slog.Logger, io.Closer, error) {
	level, err := ParseLogLevel(conf.Tracker.LogLevel)

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if conf.Tracker.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   conf.Tracker.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, file)
		closer = file
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, err
}
