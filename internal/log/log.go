// Package log provides the operational logger for process lifecycle events.
//
// This is distinct from internal/accesslog, which emits the stable,
// grep-able per-request line format. This package is for startup/shutdown
// and backend-selection diagnostics whose shape is not a contract.
package log

import (
	"log/slog"
	"os"
)

var logger *slog.Logger

// Options configures the logger.
type Options struct {
	// JSONFormat uses JSON output instead of text.
	JSONFormat bool
	// Verbose enables debug-level output. Default is info-and-above.
	Verbose bool
	// Output is the destination writer (defaults to os.Stderr).
	Output *os.File
}

// Init initializes the global operational logger.
func Init(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSONFormat {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func Debug(msg string, args ...any) { logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }

func init() {
	logger = slog.Default()
}
