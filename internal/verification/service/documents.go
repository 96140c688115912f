package service

import (
	"context"
	"errors"
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

// documentHistoryActions are the audit actions DocumentHistory replays.
var documentHistoryActions = map[string]bool{
	string(audit.EventDocumentApproved):   true,
	string(audit.EventDocumentRejected):   true,
	string(audit.EventDocumentUnapproved): true,
}

// AddDocument registers an uploaded file for review. The upload pipeline
// stores the bytes elsewhere; this record tracks the review state.
func (s *Service) AddDocument(ctx context.Context, actor permission.Actor, tenantID id.TenantID, applicationID id.ApplicationID, docType, fileName string, metadata map[string]string) (*models.Document, error) {
	if err := s.requireCapability(ctx, actor, permission.CapabilityDocumentReview, tenantID, audit.EntityDocument, ""); err != nil {
		return nil, err
	}
	if _, err := s.lifecycle.Get(ctx, tenantID, applicationID); err != nil {
		return nil, err
	}

	doc, err := models.NewDocument(id.NewDocumentID(), tenantID, applicationID, docType, fileName, metadata, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "document already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create document")
	}
	return doc, nil
}

// ApproveDocument moves a pending document to approved.
func (s *Service) ApproveDocument(ctx context.Context, actor permission.Actor, tenantID id.TenantID, documentID id.DocumentID) (*models.Document, error) {
	start := time.Now()

	if err := s.requireCapability(ctx, actor, permission.CapabilityDocumentReview, tenantID, audit.EntityDocument, documentID.String()); err != nil {
		return nil, err
	}
	doc, err := s.store.FindDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, translateNotFound(err, "document")
	}
	if err := doc.CanApprove(); err != nil {
		return nil, err
	}
	previous := doc.Status
	doc.ApplyApproval(actor.ID.String(), requestcontext.Now(ctx))

	if err := s.store.UpdateDocument(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document")
	}
	if err := s.appendTimeline(ctx, doc.ApplicationID, appmodels.ActionDocumentApproved, actor, map[string]string{
		"document_type": doc.Type,
	}); err != nil {
		return nil, err
	}

	s.logAudit(ctx, actor, audit.Event{
		TenantID:      tenantID,
		ApplicationID: doc.ApplicationID,
		EntityType:    audit.EntityDocument,
		EntityID:      doc.ID.String(),
		Action:        string(audit.EventDocumentApproved),
		OldValue:      string(previous),
		NewValue:      string(models.DocumentApproved),
	})
	if s.metrics != nil {
		s.metrics.IncrementDocumentReview("approved")
		s.metrics.ObserveReview(start)
	}
	return doc, nil
}

// RejectDocument moves a pending document to rejected and, when the parent
// application is in review, cascades it to docs_pending.
func (s *Service) RejectDocument(ctx context.Context, actor permission.Actor, tenantID id.TenantID, documentID id.DocumentID, reason, comment string) (*models.Document, error) {
	start := time.Now()

	if err := s.requireCapability(ctx, actor, permission.CapabilityDocumentReview, tenantID, audit.EntityDocument, documentID.String()); err != nil {
		return nil, err
	}
	doc, err := s.store.FindDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, translateNotFound(err, "document")
	}
	if err := doc.CanReject(reason); err != nil {
		return nil, err
	}
	previous := doc.Status
	doc.ApplyRejection(reason, comment, actor.ID.String(), requestcontext.Now(ctx))

	if err := s.store.UpdateDocument(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document")
	}

	payload := map[string]string{
		"document_type": doc.Type,
		"reason":        reason,
	}
	if comment != "" {
		payload["comment"] = comment
	}
	if err := s.appendTimeline(ctx, doc.ApplicationID, appmodels.ActionDocumentRejected, actor, payload); err != nil {
		return nil, err
	}

	s.logAudit(ctx, actor, audit.Event{
		TenantID:      tenantID,
		ApplicationID: doc.ApplicationID,
		EntityType:    audit.EntityDocument,
		EntityID:      doc.ID.String(),
		Action:        string(audit.EventDocumentRejected),
		OldValue:      string(previous),
		NewValue:      string(models.DocumentRejected),
		Reason:        reason,
	})

	// An application under review now waits for a replacement upload.
	cascaded, err := s.lifecycle.TransitionIf(ctx, actor, tenantID, doc.ApplicationID,
		appmodels.StatusDocsPending, "document "+doc.Type+" rejected", appmodels.StatusInReview)
	if err != nil {
		return nil, err
	}
	if cascaded && s.metrics != nil {
		s.metrics.IncrementCascade()
	}

	if s.metrics != nil {
		s.metrics.IncrementDocumentReview("rejected")
		s.metrics.ObserveReview(start)
	}
	return doc, nil
}

// UnapproveDocument sends a reviewed document back to pending. Documents
// validated by the automated identity pipeline stay approved: the model
// returns Forbidden and no capability overrides it.
func (s *Service) UnapproveDocument(ctx context.Context, actor permission.Actor, tenantID id.TenantID, documentID id.DocumentID) (*models.Document, error) {
	start := time.Now()

	if err := s.requireCapability(ctx, actor, permission.CapabilityDocumentReview, tenantID, audit.EntityDocument, documentID.String()); err != nil {
		return nil, err
	}
	doc, err := s.store.FindDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, translateNotFound(err, "document")
	}
	if err := doc.CanUnapprove(); err != nil {
		return nil, err
	}
	previous := doc.Status
	doc.ApplyUnapproval(requestcontext.Now(ctx))

	if err := s.store.UpdateDocument(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document")
	}
	if err := s.appendTimeline(ctx, doc.ApplicationID, appmodels.ActionDocumentUnapproved, actor, map[string]string{
		"document_type":   doc.Type,
		"previous_status": string(previous),
	}); err != nil {
		return nil, err
	}

	s.logAudit(ctx, actor, audit.Event{
		TenantID:      tenantID,
		ApplicationID: doc.ApplicationID,
		EntityType:    audit.EntityDocument,
		EntityID:      doc.ID.String(),
		Action:        string(audit.EventDocumentUnapproved),
		OldValue:      string(previous),
		NewValue:      string(models.DocumentPending),
	})
	if s.metrics != nil {
		s.metrics.IncrementDocumentReview("unapproved")
		s.metrics.ObserveReview(start)
	}
	return doc, nil
}

// ListDocuments returns an application's documents in upload order.
func (s *Service) ListDocuments(ctx context.Context, tenantID id.TenantID, applicationID id.ApplicationID) ([]models.Document, error) {
	if _, err := s.lifecycle.Get(ctx, tenantID, applicationID); err != nil {
		return nil, err
	}
	docs, err := s.store.ListDocuments(ctx, applicationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// DocumentHistory replays a document's review decisions from the audit
// record. The timeline and the audit record are independent accounts of the
// same facts; history deliberately reads the audit side.
func (s *Service) DocumentHistory(ctx context.Context, tenantID id.TenantID, documentID id.DocumentID) ([]audit.Event, error) {
	if _, err := s.store.FindDocument(ctx, tenantID, documentID); err != nil {
		return nil, translateNotFound(err, "document")
	}
	if s.auditReader == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "audit store is not configured")
	}

	events, err := s.auditReader.ListByEntity(ctx, audit.EntityDocument, documentID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document history")
	}

	history := make([]audit.Event, 0, len(events))
	for _, event := range events {
		if documentHistoryActions[event.Action] {
			history = append(history, event)
		}
	}
	return history, nil
}
