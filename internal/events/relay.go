package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/car-reservation/internal/repo"
)

const defaultBatchSize = 100

// Recorder receives relay delivery outcomes.
type Recorder interface {
	EventPublished(eventType string)
	PublishFailed()
}

type nopRecorder struct{}

func (nopRecorder) EventPublished(string) {}
func (nopRecorder) PublishFailed()        {}

// RelayOptions tunes a Relay. Zero values fall back to defaults.
type RelayOptions struct {
	Interval  time.Duration
	BatchSize int
	Recorder  Recorder
}

// Relay moves outbox messages to a Publisher. Messages are published in
// occurrence order; a failed publish stops the batch so later events for the
// same car are not delivered ahead of it.
type Relay struct {
	outbox    repo.OutboxRepo
	publisher Publisher
	log       *slog.Logger
	interval  time.Duration
	batchSize int
	rec       Recorder
}

func NewRelay(outbox repo.OutboxRepo, publisher Publisher, log *slog.Logger, opts RelayOptions) *Relay {
	r := &Relay{
		outbox:    outbox,
		publisher: publisher,
		log:       log,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		rec:       opts.Recorder,
	}
	if r.interval <= 0 {
		r.interval = 2 * time.Second
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.rec == nil {
		r.rec = nopRecorder{}
	}
	return r
}

// Run drains the outbox every interval until ctx is cancelled. Delivery
// errors are logged and retried on the next tick; Run only returns ctx.Err().
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
			r.log.ErrorContext(ctx, "outbox relay", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Drain publishes pending messages batch by batch until the outbox is empty
// or a publish fails. It returns how many messages were delivered.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, full, err := r.publishBatch(ctx)
		total += n
		if err != nil || !full {
			return total, err
		}
	}
}

func (r *Relay) publishBatch(ctx context.Context) (int, bool, error) {
	msgs, err := r.outbox.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, false, fmt.Errorf("events.Relay.Drain: %w", err)
	}

	published := make([]uuid.UUID, 0, len(msgs))
	var pubErr error
	for _, m := range msgs {
		if err := r.publisher.Publish(ctx, m); err != nil {
			r.rec.PublishFailed()
			pubErr = fmt.Errorf("events.Relay.Drain: publish %s %s: %w", m.EventType, m.ID, err)
			break
		}
		published = append(published, m.ID)
		r.rec.EventPublished(m.EventType)
	}

	if err := r.outbox.MarkPublished(ctx, published); err != nil {
		return 0, false, fmt.Errorf("events.Relay.Drain: %w", err)
	}
	if len(published) > 0 {
		r.log.DebugContext(ctx, "outbox messages published", "count", len(published))
	}
	if pubErr != nil {
		return len(published), false, pubErr
	}
	return len(published), len(msgs) == r.batchSize, nil
}
