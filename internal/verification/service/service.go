// Package service implements the verification workflows: document review,
// reference and bank-account checks, and the data-verification ledger.
//
// Verification records are independent entities with atomic row updates, so
// operations here run without the per-application lock. The one place a
// workflow touches the application itself, the reject cascades, goes
// through Lifecycle.TransitionIf, which takes the lock and re-checks the
// cascade condition inside it.
package service

import (
	"context"
	"errors"
	"log/slog"

	applicantmodels "origo/internal/applicant/models"
	appmodels "origo/internal/application/models"
	"origo/internal/audit"
	"origo/internal/permission"
	"origo/internal/verification/metrics"
	"origo/internal/verification/models"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/sentinel"
	"origo/pkg/requestcontext"
)

// Store persists the verification records.
type Store interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	FindDocument(ctx context.Context, tenantID id.TenantID, documentID id.DocumentID) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	ListDocuments(ctx context.Context, applicationID id.ApplicationID) ([]models.Document, error)

	CreateReference(ctx context.Context, ref *models.Reference) error
	FindReference(ctx context.Context, tenantID id.TenantID, referenceID id.ReferenceID) (*models.Reference, error)
	UpdateReference(ctx context.Context, ref *models.Reference) error
	ListReferences(ctx context.Context, applicationID id.ApplicationID) ([]models.Reference, error)

	CreateBankAccount(ctx context.Context, acct *models.BankAccount) error
	FindBankAccount(ctx context.Context, tenantID id.TenantID, accountID id.BankAccountID) (*models.BankAccount, error)
	UpdateBankAccount(ctx context.Context, acct *models.BankAccount) error
	ListBankAccounts(ctx context.Context, applicationID id.ApplicationID) ([]models.BankAccount, error)

	AppendVerification(ctx context.Context, entry *models.DataVerification) error
	ListVerificationsByApplicant(ctx context.Context, applicantID id.ApplicantID) ([]models.DataVerification, error)
	ListVerificationsByApplication(ctx context.Context, applicationID id.ApplicationID) ([]models.DataVerification, error)
}

// ApplicantReader resolves applicant profiles for field verification.
type ApplicantReader interface {
	FindByTenantAndID(ctx context.Context, tenantID id.TenantID, applicantID id.ApplicantID) (*applicantmodels.Applicant, error)
}

// TimelineAppender writes verification facts onto the application timeline.
// Satisfied by the application store; appends are atomic ledger inserts.
type TimelineAppender interface {
	AppendTimeline(ctx context.Context, entry *appmodels.TimelineEntry) error
}

// Lifecycle is the slice of the application service the verification
// workflows call back into.
type Lifecycle interface {
	Get(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) (*appmodels.Application, error)
	TransitionIf(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, target appmodels.Status, reason string, onlyFrom ...appmodels.Status) (bool, error)
}

// AuditPublisher is the best-effort audit sink.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AuditReader reads back the audit record for one entity; document history
// is reconstructed from it rather than from a dedicated history table.
type AuditReader interface {
	ListByEntity(ctx context.Context, entityType, entityID string) ([]audit.Event, error)
}

type Service struct {
	store      Store
	applicants ApplicantReader
	timeline   TimelineAppender
	lifecycle  Lifecycle
	gate       permission.Gate

	logger         *slog.Logger
	auditPublisher AuditPublisher
	auditReader    AuditReader
	metrics        *metrics.Metrics
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

// WithAuditReader wires the queryable audit store that backs DocumentHistory.
func WithAuditReader(reader AuditReader) Option {
	return func(s *Service) {
		s.auditReader = reader
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store Store, applicants ApplicantReader, timeline TimelineAppender, lifecycle Lifecycle, gate permission.Gate, opts ...Option) *Service {
	s := &Service{
		store:      store,
		applicants: applicants,
		timeline:   timeline,
		lifecycle:  lifecycle,
		gate:       gate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// requireCapability checks the permission gate, recording denials as
// security audit events.
func (s *Service) requireCapability(ctx context.Context, actor permission.Actor, capability permission.Capability, tenantID id.TenantID, entityType, entityID string) error {
	if s.gate.Has(actor, capability) {
		return nil
	}
	s.logAudit(ctx, actor, audit.Event{
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     string(audit.EventPermissionDenied),
		Reason:     string(capability),
	})
	return dErrors.Newf(dErrors.CodeForbidden, "missing capability %s", capability)
}

// appendTimeline writes one application timeline entry. Failures surface to
// the caller: the timeline is domain state, unlike the audit trail.
func (s *Service) appendTimeline(ctx context.Context, applicationID id.ApplicationID, action string, actor permission.Actor, payload map[string]string) error {
	entry := &appmodels.TimelineEntry{
		ApplicationID: applicationID,
		Action:        action,
		ActorID:       actor.ID.String(),
		Payload:       payload,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := s.timeline.AppendTimeline(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record timeline entry")
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
			"entity_type", event.EntityType,
			"entity_id", event.EntityID,
			"actor_id", event.ActorID,
			"request_id", event.RequestID,
		)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, event)
}

func translateNotFound(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+what)
}
