package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	appmodels "origo/internal/application/models"
	"origo/internal/audit"
	"origo/internal/permission"
	"origo/internal/verification/models"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
	"origo/pkg/platform/sentinel"
	"origo/pkg/requestcontext"
)

// AddReference registers a personal reference for an application.
func (s *Service) AddReference(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, name, relationship, phone string) (*models.Reference, error) {
	if err := s.requireCapability(ctx, actor, permission.CapabilityReferenceVerify, tenantID, audit.EntityReference, ""); err != nil {
		return nil, err
	}
	if _, err := s.lifecycle.Get(ctx, tenantID, applicationID); err != nil {
		return nil, err
	}

	ref, err := models.NewReference(id.NewReferenceID(), tenantID, applicationID, name, relationship, phone, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
	}
	if err := s.store.CreateReference(ctx, ref); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "reference already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create reference")
	}
	return ref, nil
}

// VerifyReference records the outcome of a reference call. There is no
// precondition: agents re-dial until someone answers, and each outcome
// overwrites the previous one.
func (s *Service) VerifyReference(ctx context.Context, actor permission.Actor, tenantID id.TenantID, referenceID id.ReferenceID, result models.ReferenceResult, notes string) (*models.Reference, error) {
	start := time.Now()

	if err := s.requireCapability(ctx, actor, permission.CapabilityReferenceVerify, tenantID, audit.EntityReference, referenceID.String()); err != nil {
		return nil, err
	}
	if _, err := models.ParseReferenceResult(string(result)); err != nil {
		return nil, err
	}

	ref, err := s.store.FindReference(ctx, tenantID, referenceID)
	if err != nil {
		return nil, translateNotFound(err, "reference")
	}
	previous := ref.Result
	ref.ApplyResult(result, notes, actor.ID.String(), requestcontext.Now(ctx))

	if err := s.store.UpdateReference(ctx, ref); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update reference")
	}
	if err := s.appendTimeline(ctx, ref.ApplicationID, appmodels.ActionReferenceVerified, actor, map[string]string{
		"name":     ref.Name,
		"result":   string(result),
		"verified": strconv.FormatBool(ref.Verified),
	}); err != nil {
		return nil, err
	}

	s.logAudit(ctx, actor, audit.Event{
		TenantID:      tenantID,
		ApplicationID: ref.ApplicationID,
		EntityType:    audit.EntityReference,
		EntityID:      ref.ID.String(),
		Action:        string(audit.EventReferenceVerified),
		OldValue:      string(previous),
		NewValue:      string(result),
		Reason:        notes,
	})
	if s.metrics != nil {
		s.metrics.IncrementReferenceCheck(string(result))
		s.metrics.ObserveReview(start)
	}
	return ref, nil
}

// ListReferences returns an application's references in creation order.
func (s *Service) ListReferences(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) ([]models.Reference, error) {
	if _, err := s.lifecycle.Get(ctx, tenantID, applicationID); err != nil {
		return nil, err
	}
	refs, err := s.store.ListReferences(ctx, applicationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list references")
	}
	return refs, nil
}
