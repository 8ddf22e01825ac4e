package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// NewTracingLogHandler wraps base so that records logged with a context
// carrying an active span get trace_id and span_id attributes.
//
// NOTE: Requires the use of the *Context slog methods to get the tracing info
func NewTracingLogHandler(base slog.Handler) slog.Handler {
	return &tracingLogHandler{base: base}
}

type tracingLogHandler struct {
	base slog.Handler
}

func (h *tracingLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *tracingLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.base.Handle(ctx, r)
}

func (h *tracingLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &tracingLogHandler{base: h.base.WithAttrs(attrs)}
}

func (h *tracingLogHandler) WithGroup(name string) slog.Handler {
	return &tracingLogHandler{base: h.base.WithGroup(name)}
}
