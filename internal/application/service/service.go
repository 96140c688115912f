package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	applicantmodels "origo/internal/applicant/models"
	"origo/internal/application/lock"
	"origo/internal/application/metrics"
	"origo/internal/application/models"
	"origo/internal/audit"
	"origo/internal/permission"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/sentinel"
	"origo/pkg/requestcontext"
)

type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	FindByTenantAndID(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	ListByTenant(ctx context.Context, tenantID id.TenantID, limit int) ([]models.Application, error)
	AppendTimeline(ctx context.Context, entry *models.TimelineEntry) error
	ListTimeline(ctx context.Context, applicationID id.ApplicationID) ([]models.TimelineEntry, error)
}

type ApplicantStore interface {
	Create(ctx context.Context, applicant *applicantmodels.Applicant) error
	FindByTenantAndID(ctx context.Context, tenantID id.TenantID, applicantID id.ApplicantID) (*applicantmodels.Applicant, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the guarded application lifecycle: submission, status
// transitions, counter-offers, reviewer assignment, and the timeline ledger.
// Status-writing operations are serialized per application through the
// locker; reads and timeline appends never block behind it.
type Service struct {
	apps       ApplicationStore
	applicants ApplicantStore
	gate       permission.Gate
	locker     lock.Locker

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	verification   VerificationReader

	// counterOfferTransitions moves an application into counter_offered as
	// part of issuing an offer. Off by default: issuing an offer records the
	// terms, and moving the status stays a separate explicit call.
	counterOfferTransitions bool
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithVerificationReader wires the verification stores consumed by
// ReviewBundle. Without it the bundle omits those sections.
func WithVerificationReader(r VerificationReader) Option {
	return func(s *Service) {
		s.verification = r
	}
}

// WithCounterOfferTransition toggles whether issuing a counter-offer also
// transitions the application into counter_offered.
func WithCounterOfferTransition(enabled bool) Option {
	return func(s *Service) {
		s.counterOfferTransitions = enabled
	}
}

// New constructs a Service.
func New(apps ApplicationStore, applicants ApplicantStore, gate permission.Gate, opts ...Option) *Service {
	s := &Service{apps: apps, applicants: applicants, gate: gate}
	for _, opt := range opts {
		opt(s)
	}
	if s.locker == nil {
		s.locker = lock.NewSharded(0)
	}
	return s
}

// SubmitRequest carries a new credit request and its applicant profile.
type SubmitRequest struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Phone       string
	Email       string
	Address     applicantmodels.Address
	Employment  applicantmodels.Employment

	Amount       decimal.Decimal
	TermMonths   int
	InterestRate decimal.Decimal
	Frequency    string
}

// Submit creates the applicant profile and the application in submitted
// status, with the opening timeline entry.
func (s *Service) Submit(ctx context.Context, actor permission.Actor, tenantID id.TenantID, req SubmitRequest) (*models.Application, error) {
	if err := s.requireCapability(ctx, actor, permission.CapabilityApplicationWrite, tenantID, id.ApplicationID{}); err != nil {
		return nil, err
	}

	frequency, err := models.ParseFrequency(req.Frequency)
	if err != nil {
		return nil, err
	}
	offer, err := models.NewOffer(req.Amount, req.TermMonths, req.InterestRate, frequency)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)

	applicant, err := applicantmodels.NewApplicant(id.NewApplicantID(), tenantID, req.FirstName, req.LastName, req.DateOfBirth, now)
	if err != nil {
		return nil, asValidation(err)
	}
	applicant.Phone = req.Phone
	applicant.Email = req.Email
	applicant.Address = req.Address
	applicant.Employment = req.Employment

	app, err := models.NewApplication(id.NewApplicationID(), tenantID, applicant.ID, offer, now)
	if err != nil {
		return nil, asValidation(err)
	}

	if err := s.applicants.Create(ctx, applicant); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create applicant")
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "application already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}

	if err := s.appendTimeline(ctx, app.ID, models.ActionApplicationSubmitted, actor, map[string]string{
		"amount":      offer.Amount.StringFixed(2),
		"term_months": strconv.Itoa(offer.TermMonths),
		"frequency":   string(offer.Frequency),
	}); err != nil {
		return nil, err
	}

	s.logAudit(ctx, actor, audit.Event{
		TenantID:      tenantID,
		ApplicationID: app.ID,
		EntityType:    audit.EntityApplication,
		EntityID:      app.ID.String(),
		Action:        string(audit.EventApplicationSubmitted),
		NewValue:      string(models.StatusSubmitted),
	})
	return app, nil
}

// Get returns one application scoped to its tenant.
func (s *Service) Get(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) (*models.Application, error) {
	return s.load(ctx, tenantID, applicationID)
}

// Timeline returns the application's history in append order.
func (s *Service) Timeline(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) ([]models.TimelineEntry, error) {
	if _, err := s.load(ctx, tenantID, applicationID); err != nil {
		return nil, err
	}
	entries, err := s.apps.ListTimeline(ctx, applicationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load timeline")
	}
	return entries, nil
}

// ListByTenant returns a tenant's applications, newest first.
func (s *Service) ListByTenant(ctx context.Context, tenantID id.TenantID, limit int) ([]models.Application, error) {
	apps, err := s.apps.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

func (s *Service) load(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) (*models.Application, error) {
	app, err := s.apps.FindByTenantAndID(ctx, tenantID, applicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

// requireCapability checks the permission gate. Denials are recorded as
// security audit events before the Forbidden error is returned.
func (s *Service) requireCapability(ctx context.Context, actor permission.Actor, capability permission.Capability, tenantID id.TenantID, applicationID id.ApplicationID) error {
	if s.gate.Has(actor, capability) {
		return nil
	}

	s.incrementDenied("forbidden")
	entityID := ""
	if !applicationID.IsNil() {
		entityID = applicationID.String()
	}
	s.logAudit(ctx, actor, audit.Event{
		TenantID:      tenantID,
		ApplicationID: applicationID,
		EntityType:    audit.EntityApplication,
		EntityID:      entityID,
		Action:        string(audit.EventPermissionDenied),
		Reason:        string(capability),
	})
	return dErrors.Newf(dErrors.CodeForbidden, "missing capability %s", capability)
}

// appendTimeline writes one ledger entry. Failures surface to the caller:
// the timeline is domain state, unlike the best-effort audit trail.
func (s *Service) appendTimeline(ctx context.Context, applicationID id.ApplicationID, action string, actor permission.Actor, payload map[string]string) error {
	entry := &models.TimelineEntry{
		ApplicationID: applicationID,
		Action:        action,
		ActorID:       actor.ID.String(),
		Payload:       payload,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := s.apps.AppendTimeline(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record timeline entry")
	}
	if s.metrics != nil {
		s.metrics.TimelineAppends.Inc()
	}
	return nil
}

// logAudit writes the structured audit log line and hands the event to the
// best-effort publisher. Publisher failures never fail the operation.
func (s *Service) logAudit(ctx context.Context, actor permission.Actor, event audit.Event) {
	event.ActorID = actor.ID.String()
	event.ActorRole = string(actor.Role)
	event.RequestID = requestcontext.RequestID(ctx)
	event.ActorDevice = requestcontext.DeviceName(ctx)
	event.Timestamp = requestcontext.Now(ctx)

	if s.logger != nil {
		s.logger.InfoContext(ctx, event.Action,
			"event", event.Action,
			"log_type", "audit",
			"application_id", event.ApplicationID,
			"actor_id", event.ActorID,
			"request_id", event.RequestID,
		)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, event)
}

func (s *Service) incrementDenied(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementDenied(reason)
	}
}

// asValidation converts model invariant violations to validation errors for
// API responses; other errors pass through untouched.
func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
	}
	return err
}
