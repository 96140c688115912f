package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"origo/internal/application/models"
	id "origo/pkg/domain"
	"origo/pkg/platform/sentinel"
)

// Postgres persists applications and their timeline ledger.
//
// The timeline table assigns seq from a BIGSERIAL, so an append is a single
// atomic insert: concurrent writers get distinct, strictly increasing
// sequence numbers and no writer can displace another's entry.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const applicationColumns = `
	id, tenant_id, applicant_id, status, assigned_reviewer,
	requested_amount, approved_amount, term_months, interest_rate,
	payment_frequency, disbursement_reference,
	approved_at, disbursed_at, created_at, updated_at
`

func (s *Postgres) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.Exec(ctx, query,
		app.ID.String(),
		app.TenantID.String(),
		app.ApplicantID.String(),
		string(app.Status),
		nullableActor(app.AssignedReviewer),
		app.Terms.RequestedAmount,
		app.Terms.ApprovedAmount,
		app.Terms.TermMonths,
		app.Terms.InterestRate,
		string(app.Terms.PaymentFrequency),
		app.Terms.DisbursementReference,
		app.ApprovedAt,
		app.DisbursedAt,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(s.db.QueryRow(ctx, query, applicationID.String()))
}

func (s *Postgres) FindByTenantAndID(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE tenant_id = $1 AND id = $2`
	return scanApplication(s.db.QueryRow(ctx, query, tenantID.String(), applicationID.String()))
}

func (s *Postgres) Update(ctx context.Context, app *models.Application) error {
	query := `
		UPDATE applications SET
			status = $2, assigned_reviewer = $3,
			requested_amount = $4, approved_amount = $5, term_months = $6,
			interest_rate = $7, payment_frequency = $8,
			disbursement_reference = $9,
			approved_at = $10, disbursed_at = $11, updated_at = $12
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query,
		app.ID.String(),
		string(app.Status),
		nullableActor(app.AssignedReviewer),
		app.Terms.RequestedAmount,
		app.Terms.ApprovedAmount,
		app.Terms.TermMonths,
		app.Terms.InterestRate,
		string(app.Terms.PaymentFrequency),
		app.Terms.DisbursementReference,
		app.ApprovedAt,
		app.DisbursedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListByTenant(ctx context.Context, tenantID id.TenantID, limit int) ([]models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(ctx, query, tenantID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}

// AppendTimeline inserts one ledger row. The database assigns seq; the value
// is written back to the entry.
func (s *Postgres) AppendTimeline(ctx context.Context, entry *models.TimelineEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO application_timeline (application_id, action, actor_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`
	err := s.db.QueryRow(ctx, query,
		entry.ApplicationID.String(),
		entry.Action,
		entry.ActorID,
		entry.Payload,
		entry.CreatedAt,
	).Scan(&entry.Seq)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("append timeline entry: %w", err)
	}
	return nil
}

func (s *Postgres) ListTimeline(ctx context.Context, applicationID id.ApplicationID) ([]models.TimelineEntry, error) {
	query := `
		SELECT application_id, seq, action, actor_id, payload, created_at
		FROM application_timeline
		WHERE application_id = $1
		ORDER BY seq ASC
	`

	rows, err := s.db.Query(ctx, query, applicationID.String())
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	var entries []models.TimelineEntry
	for rows.Next() {
		var e models.TimelineEntry
		if err := rows.Scan(&e.ApplicationID, &e.Seq, &e.Action, &e.ActorID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline: %w", err)
	}
	return entries, nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var (
		app      models.Application
		reviewer *uuid.UUID
	)
	err := row.Scan(
		&app.ID,
		&app.TenantID,
		&app.ApplicantID,
		&app.Status,
		&reviewer,
		&app.Terms.RequestedAmount,
		&app.Terms.ApprovedAmount,
		&app.Terms.TermMonths,
		&app.Terms.InterestRate,
		&app.Terms.PaymentFrequency,
		&app.Terms.DisbursementReference,
		&app.ApprovedAt,
		&app.DisbursedAt,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	if reviewer != nil {
		app.AssignedReviewer = id.ActorID(*reviewer)
	}
	return &app, nil
}

func nullableActor(actorID id.ActorID) *string {
	if actorID.IsNil() {
		return nil
	}
	s := actorID.String()
	return &s
}
