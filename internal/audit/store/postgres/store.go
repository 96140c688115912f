package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"origo/internal/audit"
	id "origo/pkg/domain"
	txcontext "origo/pkg/platform/tx"
)

// Store implements audit.Store on PostgreSQL with a transactional outbox.
// Every event is written twice in one statement batch: a queryable row in
// audit_events and an outbox row that the relay worker publishes to Kafka.
// When the caller carries a transaction in its context, both writes join it,
// so the audit row commits or rolls back with the domain mutation.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event for proper deserialization by downstream consumers.
type outboxPayload struct {
	ID            string `json:"ID"`
	Category      string `json:"Category"`
	Timestamp     string `json:"Timestamp"`
	TenantID      string `json:"TenantID,omitempty"`
	ApplicationID string `json:"ApplicationID,omitempty"`
	EntityType    string `json:"EntityType,omitempty"`
	EntityID      string `json:"EntityID,omitempty"`
	Action        string `json:"Action"`
	ActorID       string `json:"ActorID,omitempty"`
	ActorRole     string `json:"ActorRole,omitempty"`
	ActorDevice   string `json:"ActorDevice,omitempty"`
	RequestID     string `json:"RequestID,omitempty"`
	OldValue      string `json:"OldValue,omitempty"`
	NewValue      string `json:"NewValue,omitempty"`
	Reason        string `json:"Reason,omitempty"`
}

// Append writes an audit event to audit_events and enqueues it on the outbox.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	// Always derive category from action - eventCategories map is the source of truth
	category := audit.AuditAction(event.Action).Category()

	payload := outboxPayload{
		ID:          event.ID.String(),
		Category:    string(category),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
		Action:      event.Action,
		ActorID:     event.ActorID,
		ActorRole:   event.ActorRole,
		ActorDevice: event.ActorDevice,
		RequestID:   event.RequestID,
		OldValue:    event.OldValue,
		NewValue:    event.NewValue,
		Reason:      event.Reason,
	}
	if !event.TenantID.IsNil() {
		payload.TenantID = event.TenantID.String()
	}
	if !event.ApplicationID.IsNil() {
		payload.ApplicationID = event.ApplicationID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	// Determine aggregate type and ID for outbox partitioning
	aggregateType := "audit"
	aggregateID := event.ID.String()
	if !event.ApplicationID.IsNil() {
		aggregateType = "application"
		aggregateID = event.ApplicationID.String()
	}

	execer := s.execer(ctx)

	eventQuery := `
		INSERT INTO audit_events (
			id, category, timestamp, tenant_id, application_id,
			entity_type, entity_id, action, actor_id, actor_role,
			actor_device, request_id, old_value, new_value, reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = execer.ExecContext(ctx, eventQuery,
		event.ID,
		string(category),
		event.Timestamp,
		nullableUUID(uuid.UUID(event.TenantID)),
		nullableUUID(uuid.UUID(event.ApplicationID)),
		event.EntityType,
		event.EntityID,
		event.Action,
		event.ActorID,
		event.ActorRole,
		event.ActorDevice,
		event.RequestID,
		event.OldValue,
		event.NewValue,
		event.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	outboxQuery := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = execer.ExecContext(ctx, outboxQuery,
		uuid.New(), // outbox entry ID
		aggregateType,
		aggregateID,
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByApplication returns events for one application, newest first.
func (s *Store) ListByApplication(ctx context.Context, applicationID id.ApplicationID) ([]audit.Event, error) {
	query := `
		SELECT id, category, timestamp, tenant_id, application_id,
			   entity_type, entity_id, action, actor_id, actor_role,
			   actor_device, request_id, old_value, new_value, reason
		FROM audit_events
		WHERE application_id = $1
		ORDER BY timestamp DESC
	`

	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(applicationID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListByEntity returns events for one record within an application, oldest
// first so callers can replay the record's history in order.
func (s *Store) ListByEntity(ctx context.Context, entityType, entityID string) ([]audit.Event, error) {
	query := `
		SELECT id, category, timestamp, tenant_id, application_id,
			   entity_type, entity_id, action, actor_id, actor_role,
			   actor_device, request_id, old_value, new_value, reason
		FROM audit_events
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY timestamp ASC
	`

	rows, err := s.db.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT id, category, timestamp, tenant_id, application_id,
			   entity_type, entity_id, action, actor_id, actor_role,
			   actor_device, request_id, old_value, new_value, reason
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			event         audit.Event
			category      string
			tenantID      *uuid.UUID
			applicationID *uuid.UUID
		)

		err := rows.Scan(
			&event.ID,
			&category,
			&event.Timestamp,
			&tenantID,
			&applicationID,
			&event.EntityType,
			&event.EntityID,
			&event.Action,
			&event.ActorID,
			&event.ActorRole,
			&event.ActorDevice,
			&event.RequestID,
			&event.OldValue,
			&event.NewValue,
			&event.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Category = audit.EventCategory(category)
		if tenantID != nil {
			event.TenantID = id.TenantID(*tenantID)
		}
		if applicationID != nil {
			event.ApplicationID = id.ApplicationID(*applicationID)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}

func nullableUUID(u uuid.UUID) *uuid.UUID {
	if u == uuid.Nil {
		return nil
	}
	return &u
}

// OutboxEntry is one unpublished row awaiting relay to Kafka.
type OutboxEntry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// FetchUnpublished returns up to limit unpublished outbox rows in insertion
// order. The relay runs as a single worker per deployment; republishing a
// row after a crash is safe because event IDs make delivery idempotent.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps outbox rows as delivered.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE outbox SET published_at = $1 WHERE id = ANY($2)`
	idStrings := make([]string, len(ids))
	for i, entryID := range ids {
		idStrings[i] = entryID.String()
	}
	_, err := s.db.ExecContext(ctx, query, time.Now(), pq.Array(idStrings))
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
