package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "lacquer"

var (
	instrumentsOnce sync.Once
	captureOutcomes metric.Int64Counter
	jobOutcomes     metric.Int64Counter
	queueDeliveries metric.Int64Counter
)

func instruments() {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(meterName)
		captureOutcomes, _ = meter.Int64Counter("lacquer.capture.resolutions",
			metric.WithDescription("Capture resolution outcomes by resolver step."))
		jobOutcomes, _ = meter.Int64Counter("lacquer.ingestion.jobs",
			metric.WithDescription("Ingestion jobs reaching a terminal status."))
		queueDeliveries, _ = meter.Int64Counter("lacquer.queue.deliveries",
			metric.WithDescription("Queue deliveries by disposition."))
	})
}

// RecordCaptureOutcome counts one finalize or answer outcome.
func RecordCaptureOutcome(ctx context.Context, status, step string) {
	instruments()
	if captureOutcomes == nil {
		return
	}
	captureOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("step", step),
	))
}

// RecordJobOutcome counts one ingestion job reaching a terminal status.
func RecordJobOutcome(ctx context.Context, source, status string) {
	instruments()
	if jobOutcomes == nil {
		return
	}
	jobOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	))
}

// RecordQueueDelivery counts one consumed queue message.
func RecordQueueDelivery(ctx context.Context, queue, disposition string) {
	instruments()
	if queueDeliveries == nil {
		return
	}
	queueDeliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("queue", queue),
		attribute.String("disposition", disposition),
	))
}
