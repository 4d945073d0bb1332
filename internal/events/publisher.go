// Package events delivers domain events recorded in the outbox table to
// downstream consumers. Delivery is at least once: a message is marked
// published only after its publisher returned successfully.
package events

import (
	"context"
	"log/slog"

	"github.com/pkordes/car-reservation/internal/repo"
)

// Publisher hands one outbox message to a downstream transport.
type Publisher interface {
	Publish(ctx context.Context, msg repo.OutboxMessage) error
	Close() error
}

// LogPublisher writes each event to the structured log. It is used when no
// broker is configured so events remain observable in development.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, msg repo.OutboxMessage) error {
	p.log.InfoContext(ctx, "domain event",
		"event_id", msg.ID.String(),
		"event_type", msg.EventType,
		"car_id", msg.AggregateID.String(),
		"occurred_at", msg.OccurredAt,
		"payload", string(msg.Payload),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
