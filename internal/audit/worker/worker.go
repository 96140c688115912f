// Package worker relays audit events from the transactional outbox to Kafka.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"origo/internal/audit"
	"origo/internal/audit/store/postgres"
)

// Outbox is the slice of the postgres store the relay needs.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]postgres.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Sink delivers one payload to its category topic.
type Sink interface {
	Publish(ctx context.Context, category audit.EventCategory, key string, payload []byte) error
}

// Relay polls the outbox and publishes pending events. It runs as a single
// background goroutine; redelivery after a crash is tolerated because events
// carry their own IDs and consumers deduplicate on them.
type Relay struct {
	outbox    Outbox
	sink      Sink
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

type RelayOption func(*Relay)

func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		r.interval = d
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		r.batchSize = n
	}
}

func WithLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

func NewRelay(outbox Outbox, sink Sink, opts ...RelayOption) *Relay {
	r := &Relay{
		outbox:    outbox,
		sink:      sink,
		interval:  time.Second,
		batchSize: 100,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.relayOnce(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox relay pass failed", "error", err)
			}
		}
	}
}

// relayOnce drains one batch and returns how many entries were published.
// A publish failure stops the batch so ordering within an aggregate holds;
// already-published entries are still marked to avoid duplicates.
func (r *Relay) relayOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	published := make([]uuid.UUID, 0, len(entries))
	var publishErr error

	for _, entry := range entries {
		category := categoryOf(entry.Payload)
		if err := r.sink.Publish(ctx, category, entry.AggregateID, entry.Payload); err != nil {
			publishErr = err
			break
		}
		published = append(published, entry.ID)
	}

	if len(published) > 0 {
		if err := r.outbox.MarkPublished(ctx, published); err != nil {
			return len(published), err
		}
	}
	return len(published), publishErr
}

// categoryOf peeks at the payload's Category field. Unparseable payloads
// route to operations so they are never silently lost.
func categoryOf(payload []byte) audit.EventCategory {
	var meta struct {
		Category string `json:"Category"`
	}
	if err := json.Unmarshal(payload, &meta); err != nil {
		return audit.CategoryOperations
	}
	if meta.Category == "" {
		return audit.CategoryOperations
	}
	return audit.EventCategory(meta.Category)
}
