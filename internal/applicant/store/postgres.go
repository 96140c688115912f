package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"origo/internal/applicant/models"
	id "origo/pkg/domain"
	"origo/pkg/platform/sentinel"
)

// Postgres persists applicants. Profile composites (address, employment) are
// flattened into columns so individual fields stay queryable for reporting.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const applicantColumns = `
	id, tenant_id, first_name, last_name, date_of_birth, phone, email,
	address_line1, address_line2, address_city, address_region,
	address_postal_code, address_country,
	employer_name, employer_position, monthly_income, employment_start_date,
	created_at, updated_at
`

func (s *Postgres) Create(ctx context.Context, applicant *models.Applicant) error {
	query := `
		INSERT INTO applicants (` + applicantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := s.db.Exec(ctx, query,
		applicant.ID.String(),
		applicant.TenantID.String(),
		applicant.FirstName,
		applicant.LastName,
		applicant.DateOfBirth,
		applicant.Phone,
		applicant.Email,
		applicant.Address.Line1,
		applicant.Address.Line2,
		applicant.Address.City,
		applicant.Address.Region,
		applicant.Address.PostalCode,
		applicant.Address.Country,
		applicant.Employment.EmployerName,
		applicant.Employment.Position,
		applicant.Employment.MonthlyIncome,
		applicant.Employment.StartDate,
		applicant.CreatedAt,
		applicant.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert applicant: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, applicantID id.ApplicantID) (*models.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE id = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, applicantID.String()))
}

func (s *Postgres) FindByTenantAndID(ctx context.Context, tenantID id.TenantID, applicantID id.ApplicantID) (*models.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE tenant_id = $1 AND id = $2`
	return s.scanOne(s.db.QueryRow(ctx, query, tenantID.String(), applicantID.String()))
}

func (s *Postgres) Update(ctx context.Context, applicant *models.Applicant) error {
	query := `
		UPDATE applicants SET
			first_name = $2, last_name = $3, date_of_birth = $4, phone = $5,
			email = $6,
			address_line1 = $7, address_line2 = $8, address_city = $9,
			address_region = $10, address_postal_code = $11, address_country = $12,
			employer_name = $13, employer_position = $14, monthly_income = $15,
			employment_start_date = $16, updated_at = $17
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query,
		applicant.ID.String(),
		applicant.FirstName,
		applicant.LastName,
		applicant.DateOfBirth,
		applicant.Phone,
		applicant.Email,
		applicant.Address.Line1,
		applicant.Address.Line2,
		applicant.Address.City,
		applicant.Address.Region,
		applicant.Address.PostalCode,
		applicant.Address.Country,
		applicant.Employment.EmployerName,
		applicant.Employment.Position,
		applicant.Employment.MonthlyIncome,
		applicant.Employment.StartDate,
		applicant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) scanOne(row pgx.Row) (*models.Applicant, error) {
	var a models.Applicant
	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.FirstName,
		&a.LastName,
		&a.DateOfBirth,
		&a.Phone,
		&a.Email,
		&a.Address.Line1,
		&a.Address.Line2,
		&a.Address.City,
		&a.Address.Region,
		&a.Address.PostalCode,
		&a.Address.Country,
		&a.Employment.EmployerName,
		&a.Employment.Position,
		&a.Employment.MonthlyIncome,
		&a.Employment.StartDate,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan applicant: %w", err)
	}
	return &a, nil
}
