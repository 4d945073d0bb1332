package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// OutboxMessage is one domain event waiting to be published.
// Payload is the JSON encoding of the event.
type OutboxMessage struct {
	ID          uuid.UUID
	AggregateID uuid.UUID
	EventType   string
	Payload     []byte
	OccurredAt  time.Time
}

// OutboxRepo reads events written by CarRepo and records their delivery.
type OutboxRepo interface {
	// FetchPending returns up to limit unpublished messages, oldest first.
	FetchPending(ctx context.Context, limit int) ([]OutboxMessage, error)

	// MarkPublished stamps published_at on the given messages.
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

type pgOutboxRepo struct {
	db db
}

func NewOutboxRepo(db db) OutboxRepo {
	return &pgOutboxRepo{db: db}
}

func (r *pgOutboxRepo) FetchPending(ctx context.Context, limit int) ([]OutboxMessage, error) {
	const q = `
		SELECT id, aggregate_id, event_type, payload, occurred_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY occurred_at, id
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.OutboxRepo.FetchPending: %w", err)
	}
	defer rows.Close()

	msgs := []OutboxMessage{}
	for rows.Next() {
		var (
			m         OutboxMessage
			id, aggID pgtype.UUID
		)
		if err := rows.Scan(&id, &aggID, &m.EventType, &m.Payload, &m.OccurredAt); err != nil {
			return nil, fmt.Errorf("repo.OutboxRepo.FetchPending: scan: %w", err)
		}
		m.ID = uuid.UUID(id.Bytes)
		m.AggregateID = uuid.UUID(aggID.Bytes)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.OutboxRepo.FetchPending: rows: %w", err)
	}
	return msgs, nil
}

func (r *pgOutboxRepo) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	const q = `UPDATE outbox SET published_at = now() WHERE id = ANY(@ids)`

	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"ids": ids}); err != nil {
		return fmt.Errorf("repo.OutboxRepo.MarkPublished: %w", err)
	}
	return nil
}
