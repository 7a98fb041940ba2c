package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"go.opentelemetry.io/otel/trace"
)

// LoggerOptions selects the root log handler.
type LoggerOptions struct {
	Level string
	// Console switches to the colored developer handler.
	Console bool
	Output  io.Writer
}

// NewLogger builds the process logger. Every handler is wrapped so trace and
// request fields from the context land on each record.
func NewLogger(opts LoggerOptions) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(opts.Level)

	var handler slog.Handler
	if opts.Console {
		handler = tint.NewHandler(out, &tint.Options{Level: level, TimeFormat: "15:04:05"})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}
	return slog.New(WrapSlogHandler(handler))
}

// ParseLevel maps a config string onto a slog level, defaulting to info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type traceAwareHandler struct {
	next slog.Handler
}

// WrapSlogHandler adds trace and request context fields to structured logs.
func WrapSlogHandler(next slog.Handler) slog.Handler {
	if next == nil {
		next = slog.NewTextHandler(io.Discard, nil)
	}
	return &traceAwareHandler{next: next}
}

func (h *traceAwareHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *traceAwareHandler) Handle(ctx context.Context, record slog.Record) error {
	if requestID, ok := RequestIDFromContext(ctx); ok {
		record.AddAttrs(slog.String("request_id", requestID))
	}
	if route, ok := RouteFromContext(ctx); ok {
		record.AddAttrs(slog.String("route", route))
	}
	if jobID, ok := JobIDFromContext(ctx); ok {
		record.AddAttrs(slog.String("job_id", jobID))
	}

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	return h.next.Handle(ctx, record)
}

func (h *traceAwareHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceAwareHandler{next: h.next.WithAttrs(attrs)}
}

func (h *traceAwareHandler) WithGroup(name string) slog.Handler {
	return &traceAwareHandler{next: h.next.WithGroup(name)}
}
