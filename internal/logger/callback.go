package logger

import (
	"context"
	"log/slog"
)

// callbackHandler adapts slog.Record into the plain (level, message) shape
// exposed across the facade's ABI boundary (no slog types leak there).
type callbackHandler struct {
	level slog.Leveler
	fn    func(level string, msg string)
}

func (h *callbackHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *callbackHandler) Handle(_ context.Context, r slog.Record) error {
	h.fn(r.Level.String(), r.Message)
	return nil
}

func (h *callbackHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *callbackHandler) WithGroup(_ string) slog.Handler      { return h }
