package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the handlers of a logger.
type Options struct {
	Debug   bool
	NoColor bool
	// LogFile, when set, receives a plain copy of every record through a
	// rotating writer.
	LogFile string
	// Console defaults to os.Stderr.
	Console io.Writer
}

func (o Options) level() slog.Level {
	if o.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// New builds a logger for opts. The returned closer flushes the log file,
// if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	handler := &MultiHandler{
		consoleHandler: tint.NewHandler(console, &tint.Options{
			Level:      opts.level(),
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		}),
	}

	var closer io.Closer = nopCloser{}
	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log folder: %w", err)
		}
		lumber := &lumberjack.Logger{
			Filename: opts.LogFile,
			Compress: true,
		}
		handler.fileHandler = tint.NewHandler(lumber, &tint.Options{
			Level:      opts.level(),
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
		closer = lumber
	}
	return slog.New(handler), closer, nil
}

// Setup installs a logger for opts as the slog default and redirects the
// standard log package into it.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	logger, closer, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	// some deps still use the standard logger
	lw := &slogWriter{}
	log.SetFlags(0)
	log.Default().SetOutput(lw)
	log.SetOutput(lw)
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// MultiHandler sends each record to the console and, optionally, a file.
type MultiHandler struct {
	consoleHandler slog.Handler
	fileHandler    slog.Handler
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.consoleHandler.Enabled(ctx, level) {
		return true
	}
	return h.fileHandler != nil && h.fileHandler.Enabled(ctx, level)
}

func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.consoleHandler.Enabled(ctx, r.Level) {
		if err := h.consoleHandler.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	if h.fileHandler != nil && h.fileHandler.Enabled(ctx, r.Level) {
		if err := h.fileHandler.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := &MultiHandler{consoleHandler: h.consoleHandler.WithAttrs(attrs)}
	if h.fileHandler != nil {
		n.fileHandler = h.fileHandler.WithAttrs(attrs)
	}
	return n
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	n := &MultiHandler{consoleHandler: h.consoleHandler.WithGroup(name)}
	if h.fileHandler != nil {
		n.fileHandler = h.fileHandler.WithGroup(name)
	}
	return n
}
