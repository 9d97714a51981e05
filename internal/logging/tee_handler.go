package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler sends every record to the console and to the run log file.
// Each side applies its own level check.
type teeHandler struct {
	console slog.Handler
	runLog  slog.Handler
}

func newTeeHandler(console, runLog slog.Handler) slog.Handler {
	switch {
	case console == nil && runLog == nil:
		return NoopHandler{}
	case runLog == nil:
		return console
	case console == nil:
		return runLog
	}
	return &teeHandler{console: console, runLog: runLog}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.runLog.Enabled(ctx, level)
}

// Handle writes to both sides even when one fails. The record is cloned for
// the console because handlers may retain it.
func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var consoleErr, fileErr error
	if h.console.Enabled(ctx, record.Level) {
		consoleErr = h.console.Handle(ctx, record.Clone())
	}
	if h.runLog.Enabled(ctx, record.Level) {
		fileErr = h.runLog.Handle(ctx, record)
	}
	return errors.Join(consoleErr, fileErr)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{console: h.console.WithAttrs(attrs), runLog: h.runLog.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{console: h.console.WithGroup(name), runLog: h.runLog.WithGroup(name)}
}
