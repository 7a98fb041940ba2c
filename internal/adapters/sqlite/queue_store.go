package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fr0stylo/lacquer/internal/app/ports"
	"github.com/fr0stylo/lacquer/internal/db/queries"
)

func (s *Store) Enqueue(ctx context.Context, queue string, body []byte) (int64, error) {
	now := formatTime(s.now())
	var id int64
	err := retryOnBusy(ctx, func() error {
		var err error
		id, err = s.db.EnqueueMessage(ctx, queries.EnqueueMessageParams{
			Queue:      queue,
			Body:       body,
			EnqueuedAt: now,
			VisibleAt:  now,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("enqueue to %s: %w", queue, err)
	}
	return id, nil
}

// Receive leases the oldest visible message for visibility. A message whose
// lease expires becomes visible again with its dequeue count kept.
func (s *Store) Receive(ctx context.Context, queue string, visibility time.Duration) (ports.QueueMessage, bool, error) {
	now := s.now()
	token := uuid.NewString()
	var row queries.QueueMessage
	err := retryOnBusy(ctx, func() error {
		var err error
		row, err = s.db.ClaimNextMessage(ctx, queries.ClaimNextMessageParams{
			LeaseToken: nullString(token),
			LeaseUntil: formatTime(now.Add(visibility)),
			Queue:      queue,
			Now:        formatTime(now),
		})
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return ports.QueueMessage{}, false, nil
	}
	if err != nil {
		return ports.QueueMessage{}, false, fmt.Errorf("receive from %s: %w", queue, err)
	}
	return ports.QueueMessage{
		ID:           row.ID,
		Queue:        row.Queue,
		Body:         row.Body,
		LeaseToken:   row.LeaseToken.String,
		DequeueCount: int(row.DequeueCount),
		EnqueuedAt:   parseTime(row.EnqueuedAt),
	}, true, nil
}

func (s *Store) Delete(ctx context.Context, msg ports.QueueMessage) error {
	var rows int64
	err := retryOnBusy(ctx, func() error {
		var err error
		rows, err = s.db.DeleteLeasedMessage(ctx, queries.DeleteLeasedMessageParams{
			ID:         msg.ID,
			LeaseToken: nullString(msg.LeaseToken),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("delete message %d: %w", msg.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete message %d: %w", msg.ID, ports.ErrLeaseLost)
	}
	return nil
}

// Release makes a leased message visible again after delay.
func (s *Store) Release(ctx context.Context, msg ports.QueueMessage, delay time.Duration) error {
	visibleAt := formatTime(s.now().Add(max(delay, 0)))
	var rows int64
	err := retryOnBusy(ctx, func() error {
		var err error
		rows, err = s.db.ReleaseLeasedMessage(ctx, queries.ReleaseLeasedMessageParams{
			VisibleAt:  visibleAt,
			ID:         msg.ID,
			LeaseToken: nullString(msg.LeaseToken),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("release message %d: %w", msg.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("release message %d: %w", msg.ID, ports.ErrLeaseLost)
	}
	return nil
}

// DeadLetter moves a leased message into dead_letter_messages.
func (s *Store) DeadLetter(ctx context.Context, msg ports.QueueMessage, reason string) error {
	now := formatTime(s.now())
	return retryOnBusy(ctx, func() error {
		return s.db.WithTx(ctx, func(q *queries.Queries) error {
			rows, err := q.DeleteLeasedMessage(ctx, queries.DeleteLeasedMessageParams{
				ID:         msg.ID,
				LeaseToken: nullString(msg.LeaseToken),
			})
			if err != nil {
				return fmt.Errorf("remove message %d: %w", msg.ID, err)
			}
			if rows == 0 {
				return fmt.Errorf("dead-letter message %d: %w", msg.ID, ports.ErrLeaseLost)
			}
			return q.InsertDeadLetter(ctx, queries.InsertDeadLetterParams{
				Queue:        msg.Queue,
				MessageID:    msg.ID,
				Body:         msg.Body,
				DequeueCount: int64(msg.DequeueCount),
				Reason:       reason,
				CreatedAt:    now,
			})
		})
	})
}

func (s *Store) Purge(ctx context.Context, queue string) (int64, error) {
	var rows int64
	err := retryOnBusy(ctx, func() error {
		var err error
		rows, err = s.db.PurgeQueue(ctx, queue)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("purge %s: %w", queue, err)
	}
	return rows, nil
}

func (s *Store) Stats(ctx context.Context, queue string) (ports.QueueStats, error) {
	row, err := s.db.QueueStats(ctx, queries.QueueStatsParams{Now: formatTime(s.now()), Queue: queue})
	if err != nil {
		return ports.QueueStats{}, fmt.Errorf("stats for %s: %w", queue, err)
	}
	dead, err := s.db.CountDeadLetters(ctx, queue)
	if err != nil {
		return ports.QueueStats{}, fmt.Errorf("count dead letters for %s: %w", queue, err)
	}
	return ports.QueueStats{
		Queue:       queue,
		Total:       row.Total,
		Visible:     row.Visible,
		Leased:      row.Leased,
		DeadLetters: dead,
	}, nil
}

var _ ports.Queue = (*Store)(nil)
