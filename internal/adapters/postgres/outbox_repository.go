package postgres

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
)

type OutboxRepository struct {
	q Executor
}

func NewOutboxRepository(q Executor) *OutboxRepository {
	return &OutboxRepository{q: q}
}

// InsertEvent adds an event. A second event of the same type for the same
// aggregate is silently dropped.
func (r *OutboxRepository) InsertEvent(ctx context.Context, e *domain.OutboxEvent) error {
	query := `INSERT INTO outbox_events (
				event_id, event_type, aggregate_id, payload, status, attempts, next_attempt_at, created_at)
			VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8)
			ON CONFLICT (aggregate_id, event_type) DO NOTHING`

	_, err := r.q.Exec(ctx, query,
		e.ID,
		e.Type,
		e.AggregateID,
		[]byte(e.Payload),
		e.Status,
		e.Attempts,
		e.NextAttemptAt,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

func (r *OutboxRepository) ClaimPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	query := `
		SELECT event_id, event_type, aggregate_id, payload, status, attempts,
			next_attempt_at, last_error, created_at, dispatched_at
		FROM outbox_events
		WHERE status = 'PENDING'
			AND next_attempt_at <= NOW()
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox events: %w", err)
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var (
			e       domain.OutboxEvent
			payload []byte
		)
		err := rows.Scan(
			&e.ID,
			&e.Type,
			&e.AggregateID,
			&payload,
			&e.Status,
			&e.Attempts,
			&e.NextAttemptAt,
			&e.LastError,
			&e.CreatedAt,
			&e.DispatchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		e.Payload = payload
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *OutboxRepository) UpdateEvent(ctx context.Context, e *domain.OutboxEvent) error {
	query := `UPDATE outbox_events
			SET status = $2,
				attempts = $3,
				next_attempt_at = $4,
				last_error = $5,
				dispatched_at = $6
			WHERE event_id = $1`

	cmdTag, err := r.q.Exec(ctx, query,
		e.ID,
		e.Status,
		e.Attempts,
		e.NextAttemptAt,
		e.LastError,
		e.DispatchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update outbox event: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("outbox event %s not found", e.ID)
	}
	return nil
}
