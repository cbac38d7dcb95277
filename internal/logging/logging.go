// Package logging provides structured logging infrastructure for rulekit.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"

	"github.com/ai-rules/rulekit/internal/config"
)

// NewFromConfig creates a new slog.Logger based on configuration.
// stderr receives every record at the configured level; when a log file is
// configured the same records are fanned out to it as well.
func NewFromConfig(cfg *config.Config, root string, stderr io.Writer, verbose bool) (*slog.Logger, io.Closer, error) {
	level := parseLevel(cfg.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}
	handler := newHandler(cfg.Logging.Format, stderr, level)

	logPath := cfg.LogFile(root)
	if logPath == "" {
		return slog.New(handler), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, nil, err
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	// The file always gets JSON so it can be grepped and parsed later.
	fileHandler := newHandler(config.LogFormatJSON, file, level)

	return slog.New(slogmulti.Fanout(handler, fileHandler)), file, nil
}

// NewForTest creates a silent logger for tests.
func NewForTest() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// parseLevel converts config log level to slog.Level.
func parseLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelInfo:
		return slog.LevelInfo
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

// newHandler creates a slog.Handler based on format.
func newHandler(format config.LogFormat, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch format {
	case config.LogFormatJSON:
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// WithPipeline returns a logger with pipeline context.
func WithPipeline(logger *slog.Logger, pipeline string) *slog.Logger {
	return logger.With("pipeline", pipeline)
}
