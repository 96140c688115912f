package service

import (
	"context"
	"strconv"
	"time"

	appmodels "origo/internal/application/models"
	"origo/internal/audit"
	"origo/internal/permission"
	"origo/internal/verification/models"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/requestcontext"
)

// VerifyData records a field verification in the ledger.
//
// The ledger is append-only: every call creates a new entry snapshotting the
// field's current value, and the latest entry per field is the authoritative
// state. A rejection also cascades the application to corrections_pending so
// the applicant is asked to fix the data.
func (s *Service) VerifyData(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, field string, action models.VerifyAction, method, notes, rejectionReason string) (*models.DataVerification, error) {
	start := time.Now()

	if err := s.requireCapability(ctx, actor, permission.CapabilityDataVerify, tenantID, audit.EntityVerification, ""); err != nil {
		return nil, err
	}

	app, err := s.lifecycle.Get(ctx, tenantID, applicationID)
	if err != nil {
		return nil, err
	}
	applicant, err := s.applicants.FindByTenantAndID(ctx, tenantID, app.ApplicantID)
	if err != nil {
		return nil, translateNotFound(err, "applicant")
	}

	value, err := applicant.FieldValue(field)
	if err != nil {
		return nil, err
	}

	// Latest prior status for the field, for the audit old/new pair. Best
	// effort: a history read failure does not block the verification.
	previous := ""
	if existing, listErr := s.store.ListVerificationsByApplicant(ctx, applicant.ID); listErr == nil {
		for _, e := range existing {
			if e.Field == field {
				previous = string(e.Status)
			}
		}
	}

	entry, err := models.NewDataVerification(id.NewVerificationID(), tenantID, applicant.ID, applicationID,
		field, value, action, method, notes, rejectionReason, actor.ID.String(), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendVerification(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append verification entry")
	}

	if action == models.ActionReject {
		cascaded, err := s.lifecycle.TransitionIf(ctx, actor, tenantID, applicationID,
			appmodels.StatusCorrectionsPending, "field "+field+" rejected")
		if err != nil {
			return nil, err
		}
		if cascaded && s.metrics != nil {
			s.metrics.IncrementCascade()
		}
	}

	if err := s.appendTimeline(ctx, applicationID, appmodels.ActionDataVerified, actor, map[string]string{
		"field":    field,
		"method":   method,
		"verified": strconv.FormatBool(entry.Status == models.StatusVerified),
	}); err != nil {
		return nil, err
	}

	s.logAudit(ctx, actor, audit.Event{
		TenantID:      tenantID,
		ApplicationID: applicationID,
		EntityType:    audit.EntityVerification,
		EntityID:      entry.ID.String(),
		Action:        string(auditActionFor(action)),
		OldValue:      previous,
		NewValue:      string(entry.Status),
		Reason:        rejectionReason,
	})
	if s.metrics != nil {
		s.metrics.IncrementLedgerEntry(string(entry.Status))
		s.metrics.ObserveReview(start)
	}
	return entry, nil
}

// ListVerifications returns an applicant's ledger in chronological order.
func (s *Service) ListVerifications(ctx context.Context, tenantID id.TenantID, applicantID id.ApplicantID) ([]models.DataVerification, error) {
	if _, err := s.applicants.FindByTenantAndID(ctx, tenantID, applicantID); err != nil {
		return nil, translateNotFound(err, "applicant")
	}
	entries, err := s.store.ListVerificationsByApplicant(ctx, applicantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	return entries, nil
}

// LegacyFlags computes the single-field verification view older consumers
// expect. It is derived from the ledger on every read; nothing stores it.
func (s *Service) LegacyFlags(ctx context.Context, tenantID id.TenantID, applicantID id.ApplicantID) (models.LegacyFlags, error) {
	entries, err := s.ListVerifications(ctx, tenantID, applicantID)
	if err != nil {
		return models.LegacyFlags{}, err
	}
	return models.ComputeLegacyFlags(entries), nil
}

func auditActionFor(action models.VerifyAction) audit.AuditAction {
	switch action {
	case models.ActionReject:
		return audit.EventDataRejected
	case models.ActionUnverify:
		return audit.EventDataUnverified
	default:
		return audit.EventDataVerified
	}
}
