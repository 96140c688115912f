package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"origo/internal/verification/models"
	id "origo/pkg/domain"
	"origo/pkg/platform/sentinel"
)

// Postgres persists verification records. The data-verification ledger is
// insert-only at the SQL level too: there is no UPDATE statement for it
// anywhere in this package.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const documentColumns = `
	id, tenant_id, application_id, type, file_name, status,
	rejection_reason, review_comment, metadata,
	reviewed_by, reviewed_at, uploaded_at, updated_at
`

func (s *Postgres) CreateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.Exec(ctx, query,
		doc.ID.String(),
		doc.TenantID.String(),
		doc.ApplicationID.String(),
		doc.Type,
		doc.FileName,
		string(doc.Status),
		doc.RejectionReason,
		doc.ReviewComment,
		doc.Metadata,
		doc.ReviewedBy,
		doc.ReviewedAt,
		doc.UploadedAt,
		doc.UpdatedAt,
	)
	return translateInsertErr(err, "insert document")
}

func (s *Postgres) FindDocument(ctx context.Context, tenantID id.TenantID, documentID id.DocumentID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE tenant_id = $1 AND id = $2`
	return scanDocument(s.db.QueryRow(ctx, query, tenantID.String(), documentID.String()))
}

func (s *Postgres) UpdateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		UPDATE documents SET
			status = $2, rejection_reason = $3, review_comment = $4,
			reviewed_by = $5, reviewed_at = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query,
		doc.ID.String(),
		string(doc.Status),
		doc.RejectionReason,
		doc.ReviewComment,
		doc.ReviewedBy,
		doc.ReviewedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListDocuments(ctx context.Context, applicationID id.ApplicationID) ([]models.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE application_id = $1
		ORDER BY uploaded_at ASC, id ASC
	`
	rows, err := s.db.Query(ctx, query, applicationID.String())
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

const referenceColumns = `
	id, tenant_id, application_id, name, relationship, phone,
	verified, result, notes, verified_by, verified_at, created_at, updated_at
`

func (s *Postgres) CreateReference(ctx context.Context, ref *models.Reference) error {
	query := `
		INSERT INTO personal_references (` + referenceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.Exec(ctx, query,
		ref.ID.String(),
		ref.TenantID.String(),
		ref.ApplicationID.String(),
		ref.Name,
		ref.Relationship,
		ref.Phone,
		ref.Verified,
		string(ref.Result),
		ref.Notes,
		ref.VerifiedBy,
		ref.VerifiedAt,
		ref.CreatedAt,
		ref.UpdatedAt,
	)
	return translateInsertErr(err, "insert reference")
}

func (s *Postgres) FindReference(ctx context.Context, tenantID id.TenantID, referenceID id.ReferenceID) (*models.Reference, error) {
	query := `SELECT ` + referenceColumns + ` FROM personal_references WHERE tenant_id = $1 AND id = $2`
	return scanReference(s.db.QueryRow(ctx, query, tenantID.String(), referenceID.String()))
}

func (s *Postgres) UpdateReference(ctx context.Context, ref *models.Reference) error {
	query := `
		UPDATE personal_references SET
			verified = $2, result = $3, notes = $4,
			verified_by = $5, verified_at = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query,
		ref.ID.String(),
		ref.Verified,
		string(ref.Result),
		ref.Notes,
		ref.VerifiedBy,
		ref.VerifiedAt,
		ref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListReferences(ctx context.Context, applicationID id.ApplicationID) ([]models.Reference, error) {
	query := `
		SELECT ` + referenceColumns + `
		FROM personal_references
		WHERE application_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.Query(ctx, query, applicationID.String())
	if err != nil {
		return nil, fmt.Errorf("query references: %w", err)
	}
	defer rows.Close()

	var out []models.Reference
	for rows.Next() {
		ref, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate references: %w", err)
	}
	return out, nil
}

const bankAccountColumns = `
	id, tenant_id, applicant_id, application_id, bank_name, account_number,
	holder_name, verified, method, verified_by, verified_at, created_at, updated_at
`

func (s *Postgres) CreateBankAccount(ctx context.Context, acct *models.BankAccount) error {
	query := `
		INSERT INTO bank_accounts (` + bankAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.Exec(ctx, query,
		acct.ID.String(),
		acct.TenantID.String(),
		acct.ApplicantID.String(),
		acct.ApplicationID.String(),
		acct.BankName,
		acct.AccountNumber,
		acct.HolderName,
		acct.Verified,
		string(acct.Method),
		acct.VerifiedBy,
		acct.VerifiedAt,
		acct.CreatedAt,
		acct.UpdatedAt,
	)
	return translateInsertErr(err, "insert bank account")
}

func (s *Postgres) FindBankAccount(ctx context.Context, tenantID id.TenantID, accountID id.BankAccountID) (*models.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE tenant_id = $1 AND id = $2`
	return scanBankAccount(s.db.QueryRow(ctx, query, tenantID.String(), accountID.String()))
}

func (s *Postgres) UpdateBankAccount(ctx context.Context, acct *models.BankAccount) error {
	query := `
		UPDATE bank_accounts SET
			verified = $2, method = $3, verified_by = $4,
			verified_at = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query,
		acct.ID.String(),
		acct.Verified,
		string(acct.Method),
		acct.VerifiedBy,
		acct.VerifiedAt,
		acct.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update bank account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListBankAccounts(ctx context.Context, applicationID id.ApplicationID) ([]models.BankAccount, error) {
	query := `
		SELECT ` + bankAccountColumns + `
		FROM bank_accounts
		WHERE application_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.Query(ctx, query, applicationID.String())
	if err != nil {
		return nil, fmt.Errorf("query bank accounts: %w", err)
	}
	defer rows.Close()

	var out []models.BankAccount
	for rows.Next() {
		acct, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bank accounts: %w", err)
	}
	return out, nil
}

const verificationColumns = `
	id, tenant_id, applicant_id, application_id, field, value, status,
	method, notes, rejection_reason, verified_by, created_at
`

// AppendVerification inserts one immutable ledger row.
func (s *Postgres) AppendVerification(ctx context.Context, entry *models.DataVerification) error {
	query := `
		INSERT INTO data_verifications (` + verificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.Exec(ctx, query,
		entry.ID.String(),
		entry.TenantID.String(),
		entry.ApplicantID.String(),
		entry.ApplicationID.String(),
		entry.Field,
		entry.Value,
		string(entry.Status),
		entry.Method,
		entry.Notes,
		entry.RejectionReason,
		entry.VerifiedBy,
		entry.CreatedAt,
	)
	return translateInsertErr(err, "insert data verification")
}

func (s *Postgres) ListVerificationsByApplicant(ctx context.Context, applicantID id.ApplicantID) ([]models.DataVerification, error) {
	return s.listVerifications(ctx, `applicant_id`, applicantID.String())
}

func (s *Postgres) ListVerificationsByApplication(ctx context.Context, applicationID id.ApplicationID) ([]models.DataVerification, error) {
	return s.listVerifications(ctx, `application_id`, applicationID.String())
}

func (s *Postgres) listVerifications(ctx context.Context, column, value string) ([]models.DataVerification, error) {
	query := `
		SELECT ` + verificationColumns + `
		FROM data_verifications
		WHERE ` + column + ` = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.Query(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("query data verifications: %w", err)
	}
	defer rows.Close()

	var out []models.DataVerification
	for rows.Next() {
		var e models.DataVerification
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.ApplicantID, &e.ApplicationID,
			&e.Field, &e.Value, &e.Status, &e.Method, &e.Notes,
			&e.RejectionReason, &e.VerifiedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan data verification: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate data verifications: %w", err)
	}
	return out, nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.ApplicationID,
		&doc.Type,
		&doc.FileName,
		&doc.Status,
		&doc.RejectionReason,
		&doc.ReviewComment,
		&doc.Metadata,
		&doc.ReviewedBy,
		&doc.ReviewedAt,
		&doc.UploadedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &doc, nil
}

func scanReference(row pgx.Row) (*models.Reference, error) {
	var ref models.Reference
	err := row.Scan(
		&ref.ID,
		&ref.TenantID,
		&ref.ApplicationID,
		&ref.Name,
		&ref.Relationship,
		&ref.Phone,
		&ref.Verified,
		&ref.Result,
		&ref.Notes,
		&ref.VerifiedBy,
		&ref.VerifiedAt,
		&ref.CreatedAt,
		&ref.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan reference: %w", err)
	}
	return &ref, nil
}

func scanBankAccount(row pgx.Row) (*models.BankAccount, error) {
	var acct models.BankAccount
	err := row.Scan(
		&acct.ID,
		&acct.TenantID,
		&acct.ApplicantID,
		&acct.ApplicationID,
		&acct.BankName,
		&acct.AccountNumber,
		&acct.HolderName,
		&acct.Verified,
		&acct.Method,
		&acct.VerifiedBy,
		&acct.VerifiedAt,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan bank account: %w", err)
	}
	return &acct, nil
}

func translateInsertErr(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return sentinel.ErrConflict
		case "23503":
			return sentinel.ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
