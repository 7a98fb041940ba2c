package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/observability"
)

// MessageHandler processes one queue message body.
type MessageHandler interface {
	Handle(ctx context.Context, body []byte) error
}

// ConsumerOptions tunes a Consumer.
type ConsumerOptions struct {
	Queue         string
	PollInterval  time.Duration
	Visibility    time.Duration
	MaxDeliveries int
	StatsInterval time.Duration
	ErrorBackoff  time.Duration
	Logger        *slog.Logger
}

// Message dispositions reported in metrics and logs.
const (
	DispositionAcked        = "acked"
	DispositionRejected     = "rejected"
	DispositionRetried      = "retried"
	DispositionDeadLettered = "dead_lettered"
)

// Consumer pulls messages from an at-least-once queue and hands them to a
// handler. Successful and unprocessable messages are deleted; anything else
// is released for redelivery until MaxDeliveries is exceeded.
type Consumer struct {
	queue   ports.Queue
	handler MessageHandler
	opts    ConsumerOptions
	log     *slog.Logger

	acked        atomic.Int64
	rejected     atomic.Int64
	retried      atomic.Int64
	deadLettered atomic.Int64
}

// NewConsumer constructs a consumer with defaults for unset options.
func NewConsumer(queue ports.Queue, handler MessageHandler, opts ConsumerOptions) *Consumer {
	if opts.Queue == "" {
		opts.Queue = DefaultQueueName
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Visibility <= 0 {
		opts.Visibility = 5 * time.Minute
	}
	if opts.MaxDeliveries <= 0 {
		opts.MaxDeliveries = 5
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = time.Minute
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{queue: queue, handler: handler, opts: opts, log: logger.With("queue", opts.Queue)}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.InfoContext(ctx, "ingestion worker started",
		"poll_interval", c.opts.PollInterval,
		"visibility", c.opts.Visibility,
		"max_deliveries", c.opts.MaxDeliveries,
	)
	statsTicker := time.NewTicker(c.opts.StatsInterval)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logStats(context.Background())
			return nil
		case <-statsTicker.C:
			c.logStats(ctx)
		default:
		}

		processed, err := c.ProcessNext(ctx)
		switch {
		case ctx.Err() != nil:
			continue
		case err != nil:
			c.log.ErrorContext(ctx, "queue receive failed", "error", err)
			c.wait(ctx, c.opts.ErrorBackoff)
		case !processed:
			c.wait(ctx, c.opts.PollInterval)
		}
	}
}

// ProcessNext handles at most one message. processed is false when the
// queue had nothing visible.
func (c *Consumer) ProcessNext(ctx context.Context) (bool, error) {
	msg, ok, err := c.queue.Receive(ctx, c.opts.Queue, c.opts.Visibility)
	if err != nil || !ok {
		return false, err
	}
	log := c.log.With("message_id", msg.ID, "delivery", msg.DequeueCount)

	if msg.DequeueCount > c.opts.MaxDeliveries {
		reason := fmt.Sprintf("exceeded %d deliveries", c.opts.MaxDeliveries)
		if err := c.queue.DeadLetter(ctx, msg, reason); err != nil {
			log.WarnContext(ctx, "dead-letter failed", "error", err)
			return true, nil
		}
		c.count(ctx, DispositionDeadLettered)
		log.WarnContext(ctx, "message dead-lettered", "reason", reason)
		return true, nil
	}

	handleErr := c.handler.Handle(ctx, msg.Body)
	switch {
	case handleErr == nil:
		c.ack(ctx, log, msg, DispositionAcked)
	case errors.Is(handleErr, ErrInvalidPayload):
		log.WarnContext(ctx, "discarding unprocessable message", "error", handleErr)
		c.ack(ctx, log, msg, DispositionRejected)
	case ctx.Err() != nil:
		// Shutdown: the lease expires and the message is redelivered.
	default:
		delay := retryDelay(msg.DequeueCount)
		log.WarnContext(ctx, "message handling failed; will retry", "error", handleErr, "retry_in", delay)
		if err := c.queue.Release(ctx, msg, delay); err != nil {
			log.WarnContext(ctx, "release failed", "error", err)
		}
		c.count(ctx, DispositionRetried)
	}
	return true, nil
}

func (c *Consumer) ack(ctx context.Context, log *slog.Logger, msg ports.QueueMessage, disposition string) {
	if err := c.queue.Delete(ctx, msg); err != nil {
		log.WarnContext(ctx, "ack failed", "error", err)
		return
	}
	c.count(ctx, disposition)
}

func (c *Consumer) count(ctx context.Context, disposition string) {
	switch disposition {
	case DispositionAcked:
		c.acked.Add(1)
	case DispositionRejected:
		c.rejected.Add(1)
	case DispositionRetried:
		c.retried.Add(1)
	case DispositionDeadLettered:
		c.deadLettered.Add(1)
	}
	observability.RecordQueueDelivery(ctx, c.opts.Queue, disposition)
}

// ConsumerStats counts dispositions since the consumer was created.
type ConsumerStats struct {
	Acked        int64 `json:"acked"`
	Rejected     int64 `json:"rejected"`
	Retried      int64 `json:"retried"`
	DeadLettered int64 `json:"deadLettered"`
}

// Stats returns the current disposition counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Acked:        c.acked.Load(),
		Rejected:     c.rejected.Load(),
		Retried:      c.retried.Load(),
		DeadLettered: c.deadLettered.Load(),
	}
}

func (c *Consumer) logStats(ctx context.Context) {
	stats := c.Stats()
	c.log.InfoContext(ctx, "ingest_worker_stats",
		"acked", stats.Acked,
		"rejected", stats.Rejected,
		"retried", stats.Retried,
		"dead_lettered", stats.DeadLettered,
	)
}

func (c *Consumer) wait(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// retryDelay backs off exponentially from one second, capped at one minute.
func retryDelay(delivery int) time.Duration {
	delay := time.Second
	for i := 1; i < delivery && delay < time.Minute; i++ {
		delay *= 2
	}
	return min(delay, time.Minute)
}
