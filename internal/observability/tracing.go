package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	dbTracerName     = "lacquer/db"
	workerTracerName = "lacquer/worker"
)

type contextKey string

const (
	userIDContextKey contextKey = "observability.user_id"
	jobIDContextKey  contextKey = "observability.job_id"
	requestIDKey     contextKey = "observability.request_id"
	routeKey         contextKey = "observability.route"
)

// Span is the application-level tracing span contract.
type Span interface {
	End()
	RecordError(error)
}

type otelSpan struct {
	inner trace.Span
}

// StartDBSpan starts a database tracing span for one query operation.
func StartDBSpan(ctx context.Context, queryName, area, operation string) (context.Context, Span) {
	queryName = strings.TrimSpace(queryName)
	if queryName == "" {
		queryName = "unknown"
	}
	attrs := []attribute.KeyValue{
		attribute.String("db.system.name", "sqlite"),
		attribute.String("db.query_name", queryName),
		attribute.String("db.operation", strings.TrimSpace(operation)),
		attribute.String("lacquer.db.area", area),
	}
	if userID, ok := UserIDFromContext(ctx); ok {
		attrs = append(attrs, attribute.Int64("enduser.id", userID))
	}
	if jobID, ok := JobIDFromContext(ctx); ok {
		attrs = append(attrs, attribute.String("lacquer.job.id", jobID))
	}

	ctx, span := otel.Tracer(dbTracerName).Start(ctx, "db."+queryName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, otelSpan{inner: span}
}

// StartJobSpan starts a consumer span for one ingestion job delivery and
// tags the context with the job id for log correlation.
func StartJobSpan(ctx context.Context, jobID, source string) (context.Context, Span) {
	jobID = strings.TrimSpace(jobID)
	if jobID != "" {
		ctx = context.WithValue(ctx, jobIDContextKey, jobID)
	}
	ctx, span := otel.Tracer(workerTracerName).Start(ctx, "ingestion.job",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("lacquer.job_id", jobID),
			attribute.String("lacquer.source", strings.TrimSpace(source)),
		),
	)
	return ctx, otelSpan{inner: span}
}

// WithRequestIdentity enriches context and current span with the caller's user id.
func WithRequestIdentity(ctx context.Context, userID int64) context.Context {
	if userID <= 0 {
		return ctx
	}
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("enduser.id", userID))
	return ctx
}

// WithRequestMetadata enriches context and current span with request metadata.
func WithRequestMetadata(ctx context.Context, requestID, route string) context.Context {
	requestID = strings.TrimSpace(requestID)
	route = strings.TrimSpace(route)
	attrs := make([]attribute.KeyValue, 0, 2)
	if requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey, requestID)
		attrs = append(attrs, attribute.String("request.id", requestID))
	}
	if route != "" {
		ctx = context.WithValue(ctx, routeKey, route)
		attrs = append(attrs, attribute.String("http.route", route))
	}
	if len(attrs) > 0 {
		trace.SpanFromContext(ctx).SetAttributes(attrs...)
	}
	return ctx
}

// UserIDFromContext extracts request user id.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	value, ok := ctx.Value(userIDContextKey).(int64)
	return value, ok && value > 0
}

// JobIDFromContext extracts the ingestion job id set by StartJobSpan.
func JobIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(jobIDContextKey).(string)
	return value, ok && value != ""
}

// RequestIDFromContext extracts request id.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(requestIDKey).(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// RouteFromContext extracts normalized route path.
func RouteFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(routeKey).(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func (s otelSpan) End() {
	if s.inner == nil {
		return
	}
	s.inner.End()
}

func (s otelSpan) RecordError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.RecordError(err)
	s.inner.SetStatus(codes.Error, err.Error())
}
