package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ApplicationStore,ApplicantStore,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"origo/internal/application/models"
	"origo/internal/application/service/mocks"
	"origo/internal/audit"
	"origo/internal/permission"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/sentinel"
	"origo/pkg/requestcontext"
)

// =============================================================================
// Service Failure-Path Test Suite
// =============================================================================
// Justification for unit tests: the in-memory stores used by ServiceSuite
// cannot be made to fail, so error propagation from the persistence layer and
// the best-effort audit contract are only reachable with mocked stores. These
// tests pin the error codes and wrap messages callers depend on.

type ServiceFailureSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	apps           *mocks.MockApplicationStore
	applicants     *mocks.MockApplicantStore
	auditPublisher *mocks.MockAuditPublisher
	service        *Service

	ctx      context.Context
	now      time.Time
	tenantID id.TenantID
	agent    permission.Actor
	viewer   permission.Actor
}

func TestServiceFailureSuite(t *testing.T) {
	suite.Run(t, new(ServiceFailureSuite))
}

func (s *ServiceFailureSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.apps = mocks.NewMockApplicationStore(s.ctrl)
	s.applicants = mocks.NewMockApplicantStore(s.ctrl)
	s.auditPublisher = mocks.NewMockAuditPublisher(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.apps, s.applicants, permission.NewRoleGate(),
		WithLogger(logger),
		WithAuditPublisher(s.auditPublisher),
	)

	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.tenantID = id.NewTenantID()
	s.agent = permission.Actor{ID: id.NewActorID(), Role: permission.RoleAgent, Tenant: s.tenantID}
	s.viewer = permission.Actor{ID: id.NewActorID(), Role: permission.RoleViewer, Tenant: s.tenantID}
}

func (s *ServiceFailureSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceFailureSuite) validSubmit() SubmitRequest {
	return SubmitRequest{
		FirstName:    "Ana",
		LastName:     "Souza",
		DateOfBirth:  time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.NewFromInt(5000),
		TermMonths:   12,
		InterestRate: decimal.RequireFromString("2.5"),
		Frequency:    "monthly",
	}
}

func (s *ServiceFailureSuite) submittedApplication() *models.Application {
	return &models.Application{
		ID:          id.NewApplicationID(),
		TenantID:    s.tenantID,
		ApplicantID: id.NewApplicantID(),
		Status:      models.StatusSubmitted,
		Terms: models.Terms{
			RequestedAmount:  decimal.NewFromInt(5000),
			ApprovedAmount:   decimal.NewFromInt(5000),
			TermMonths:       12,
			InterestRate:     decimal.RequireFromString("2.5"),
			PaymentFrequency: models.FrequencyMonthly,
		},
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
}

// =============================================================================
// Submit Failure Tests
// =============================================================================

func (s *ServiceFailureSuite) TestSubmit_StoreFailures() {
	s.Run("applicant create failure surfaces as internal", func() {
		s.applicants.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := s.service.Submit(s.ctx, s.agent, s.tenantID, s.validSubmit())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Contains(err.Error(), "failed to create applicant")
	})

	s.Run("duplicate application maps to conflict", func() {
		s.applicants.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.apps.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		_, err := s.service.Submit(s.ctx, s.agent, s.tenantID, s.validSubmit())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("application already exists", dErrors.Message(err))
	})

	s.Run("timeline append failure surfaces and suppresses the audit event", func() {
		s.applicants.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.apps.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.apps.EXPECT().AppendTimeline(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
		// no Emit expectation: a stray publish would fail the controller

		_, err := s.service.Submit(s.ctx, s.agent, s.tenantID, s.validSubmit())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Contains(err.Error(), "failed to record timeline entry")
	})

	s.Run("audit publisher failure does not fail submission", func() {
		s.applicants.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.apps.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.apps.EXPECT().AppendTimeline(gomock.Any(), gomock.Any()).Return(nil)
		s.auditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))

		app, err := s.service.Submit(s.ctx, s.agent, s.tenantID, s.validSubmit())
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, app.Status)
	})

	s.Run("permission denial emits a security event and touches no store", func() {
		s.auditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, event audit.Event) error {
				s.Equal(string(audit.EventPermissionDenied), event.Action)
				s.Equal(string(permission.CapabilityApplicationWrite), event.Reason)
				s.Equal(s.viewer.ID.String(), event.ActorID)
				return nil
			})

		_, err := s.service.Submit(s.ctx, s.viewer, s.tenantID, s.validSubmit())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// =============================================================================
// Read Failure Tests
// =============================================================================

func (s *ServiceFailureSuite) TestReads_StoreFailures() {
	s.Run("find failure other than not found is internal", func() {
		applicationID := id.NewApplicationID()
		s.apps.EXPECT().FindByTenantAndID(gomock.Any(), s.tenantID, applicationID).Return(nil, errors.New("query timeout"))

		_, err := s.service.Get(s.ctx, s.tenantID, applicationID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Contains(err.Error(), "failed to load application")
	})

	s.Run("sentinel not found maps to not_found", func() {
		applicationID := id.NewApplicationID()
		s.apps.EXPECT().FindByTenantAndID(gomock.Any(), s.tenantID, applicationID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Get(s.ctx, s.tenantID, applicationID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("application not found", dErrors.Message(err))
	})

	s.Run("timeline list failure is internal", func() {
		app := s.submittedApplication()
		s.apps.EXPECT().FindByTenantAndID(gomock.Any(), s.tenantID, app.ID).Return(app, nil)
		s.apps.EXPECT().ListTimeline(gomock.Any(), app.ID).Return(nil, errors.New("query timeout"))

		_, err := s.service.Timeline(s.ctx, s.tenantID, app.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Contains(err.Error(), "failed to load timeline")
	})

	s.Run("list by tenant failure is internal", func() {
		s.apps.EXPECT().ListByTenant(gomock.Any(), s.tenantID, 10).Return(nil, errors.New("query timeout"))

		_, err := s.service.ListByTenant(s.ctx, s.tenantID, 10)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Contains(err.Error(), "failed to list applications")
	})
}

// =============================================================================
// Transition Failure Tests
// =============================================================================

func (s *ServiceFailureSuite) TestTransition_UpdateFailure() {
	app := s.submittedApplication()
	s.apps.EXPECT().FindByTenantAndID(gomock.Any(), s.tenantID, app.ID).Return(app, nil)
	s.apps.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("deadlock detected"))
	// neither the timeline entry nor the audit event may be written

	_, err := s.service.Transition(s.ctx, s.agent, s.tenantID, app.ID, models.StatusInReview, "", "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Contains(err.Error(), "failed to update application")
}
