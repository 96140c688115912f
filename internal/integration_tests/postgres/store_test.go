//go:build integration

package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applicantmodels "origo/internal/applicant/models"
	applicantstore "origo/internal/applicant/store"
	appmodels "origo/internal/application/models"
	applicationsvc "origo/internal/application/service"
	appstore "origo/internal/application/store"
	"origo/internal/audit"
	auditpg "origo/internal/audit/store/postgres"
	"origo/internal/permission"
	pgdb "origo/internal/platform/postgres"
	vermodels "origo/internal/verification/models"
	verificationsvc "origo/internal/verification/service"
	verstore "origo/internal/verification/store"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/testutil/containers"
)

func openDatabase(t *testing.T) (*pgxpool.Pool, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	pg := containers.NewPostgresContainer(t)

	pool, err := pgdb.Open(ctx, pg.DSN)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db, err := pgdb.OpenSQL(ctx, pg.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, pgdb.Migrate(db))
	return pool, db
}

func submitRequest() applicationsvc.SubmitRequest {
	return applicationsvc.SubmitRequest{
		FirstName:   "Naledi",
		LastName:    "Khumalo",
		DateOfBirth: time.Date(1993, 11, 2, 0, 0, 0, 0, time.UTC),
		Phone:       "+27125550142",
		Email:       "naledi.khumalo@example.com",
		Address: applicantmodels.Address{
			Line1:   "73 Baobab Road",
			City:    "Pretoria",
			Region:  "Gauteng",
			Country: "ZA",
		},
		Employment: applicantmodels.Employment{
			EmployerName:  "Sable Mining Services",
			Position:      "Site Administrator",
			MonthlyIncome: decimal.NewFromInt(19800),
		},
		Amount:       decimal.NewFromInt(36000),
		TermMonths:   30,
		InterestRate: decimal.NewFromFloat(16.5),
		Frequency:    "monthly",
	}
}

// TestPostgresBackedWorkflow drives the services against a real database so
// the SQL stores, migrations, and the audit outbox are exercised together.
func TestPostgresBackedWorkflow(t *testing.T) {
	pool, db := openDatabase(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	auditStore := auditpg.New(db)
	publisher := audit.NewPublisher(auditStore)
	gate := permission.NewRoleGate()

	apps := appstore.NewPostgres(pool)
	applicants := applicantstore.NewPostgres(pool)
	verifications := verstore.NewPostgres(pool)

	appSvc := applicationsvc.New(apps, applicants, gate,
		applicationsvc.WithLogger(logger),
		applicationsvc.WithAuditPublisher(publisher),
		applicationsvc.WithVerificationReader(verifications),
	)
	verSvc := verificationsvc.New(verifications, applicants, apps, appSvc, gate,
		verificationsvc.WithLogger(logger),
		verificationsvc.WithAuditPublisher(publisher),
		verificationsvc.WithAuditReader(auditStore),
	)

	tenantID := id.NewTenantID()
	agent := permission.Actor{ID: id.NewActorID(), Role: permission.RoleAgent, Tenant: tenantID}
	supervisor := permission.Actor{ID: id.NewActorID(), Role: permission.RoleSupervisor, Tenant: tenantID}

	app, err := appSvc.Submit(ctx, agent, tenantID, submitRequest())
	require.NoError(t, err)

	t.Run("application round trip", func(t *testing.T) {
		loaded, err := appSvc.Get(ctx, tenantID, app.ID)
		require.NoError(t, err)
		assert.Equal(t, app.ID, loaded.ID)
		assert.Equal(t, appmodels.StatusSubmitted, loaded.Status)
		assert.True(t, loaded.Terms.RequestedAmount.Equal(decimal.NewFromInt(36000)),
			"requested amount must survive the numeric column, got %s", loaded.Terms.RequestedAmount)
		assert.True(t, loaded.Terms.InterestRate.Equal(decimal.NewFromFloat(16.5)))
	})

	t.Run("tenant isolation", func(t *testing.T) {
		_, err := appSvc.Get(ctx, id.NewTenantID(), app.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("status transitions persist", func(t *testing.T) {
		_, err := appSvc.Transition(ctx, agent, tenantID, app.ID, appmodels.StatusInReview, "", "")
		require.NoError(t, err)
		loaded, err := appSvc.Get(ctx, tenantID, app.ID)
		require.NoError(t, err)
		assert.Equal(t, appmodels.StatusInReview, loaded.Status)
	})

	t.Run("timeline sequence is store assigned", func(t *testing.T) {
		_, err := appSvc.AppendEvent(ctx, agent, tenantID, app.ID, "applicant_called", map[string]string{"outcome": "reached"})
		require.NoError(t, err)
		_, err = appSvc.AppendEvent(ctx, agent, tenantID, app.ID, "note_added", map[string]string{"note": "docs promised by friday"})
		require.NoError(t, err)

		entries, err := appSvc.Timeline(ctx, tenantID, app.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(entries), 4)
		assert.Equal(t, "application_submitted", entries[0].Action)
		for i := 1; i < len(entries); i++ {
			assert.Greater(t, entries[i].Seq, entries[i-1].Seq)
		}
	})

	t.Run("document review persists", func(t *testing.T) {
		doc, err := verSvc.AddDocument(ctx, agent, tenantID, app.ID, "payslip", "payslip.pdf", nil)
		require.NoError(t, err)
		assert.Equal(t, vermodels.DocumentPending, doc.Status)

		approved, err := verSvc.ApproveDocument(ctx, agent, tenantID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, vermodels.DocumentApproved, approved.Status)

		docs, err := verSvc.ListDocuments(ctx, tenantID, app.ID)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, vermodels.DocumentApproved, docs[0].Status)
	})

	t.Run("bank account duplicates conflict", func(t *testing.T) {
		_, err := verSvc.AddBankAccount(ctx, agent, tenantID, app.ID, "Standard Bank", "40112299871", "N Khumalo")
		require.NoError(t, err)

		_, err = verSvc.AddBankAccount(ctx, agent, tenantID, app.ID, "Standard Bank", "40112299871", "N Khumalo")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("ledger keeps chronological order", func(t *testing.T) {
		_, err := verSvc.VerifyData(ctx, agent, tenantID, app.ID, "email", vermodels.ActionVerify, "email_otp", "", "")
		require.NoError(t, err)
		_, err = verSvc.VerifyData(ctx, agent, tenantID, app.ID, "phone", vermodels.ActionVerify, "callback", "", "")
		require.NoError(t, err)

		entries, err := verSvc.ListVerifications(ctx, tenantID, app.ApplicantID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "email", entries[0].Field)
		assert.Equal(t, "phone", entries[1].Field)

		flags, err := verSvc.LegacyFlags(ctx, tenantID, app.ApplicantID)
		require.NoError(t, err)
		assert.NotNil(t, flags.EmailVerifiedAt)
		assert.NotNil(t, flags.PhoneVerifiedAt)
	})

	t.Run("approval stamps and disbursement", func(t *testing.T) {
		_, err := appSvc.Transition(ctx, supervisor, tenantID, app.ID, appmodels.StatusApproved, "all checks green", "")
		require.NoError(t, err)
		disbursed, err := appSvc.Transition(ctx, supervisor, tenantID, app.ID, appmodels.StatusDisbursed, "", "TRX-20260823-0007")
		require.NoError(t, err)
		assert.NotNil(t, disbursed.ApprovedAt)
		assert.NotNil(t, disbursed.DisbursedAt)
		assert.Equal(t, "TRX-20260823-0007", disbursed.Terms.DisbursementReference)
	})

	t.Run("audit events and outbox", func(t *testing.T) {
		events, err := auditStore.ListByApplication(ctx, app.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(events), 8, "every workflow step must leave an audit event")

		pending, err := auditStore.FetchUnpublished(ctx, 100)
		require.NoError(t, err)
		require.NotEmpty(t, pending, "audit inserts must enqueue outbox rows")

		ids := make([]uuid.UUID, 0, len(pending))
		for _, entry := range pending {
			ids = append(ids, entry.ID)
		}
		require.NoError(t, auditStore.MarkPublished(ctx, ids))

		drained, err := auditStore.FetchUnpublished(ctx, 100)
		require.NoError(t, err)
		assert.Empty(t, drained)
	})
}
