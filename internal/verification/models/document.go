// Package models defines the verification-side entities: documents under
// review, personal references, bank accounts, and the data-verification
// ledger that snapshots applicant profile fields.
package models

import (
	"time"

	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

// DocumentStatus is the review state of an uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// Automated identity-pipeline markers. A document whose metadata carries any
// of these with a "true" value was validated by the KYC pipeline, and manual
// review can never unapprove it.
const (
	MetaFaceMatchPassed = "face_match_passed"
	MetaOCRValidated    = "ocr_validated"
	MetaLivenessPassed  = "liveness_passed"
)

var automatedCheckKeys = []string{MetaFaceMatchPassed, MetaOCRValidated, MetaLivenessPassed}

// Document is one uploaded file attached to an application, tracked through
// manual review. Metadata is a free-form bag filled by the upload pipeline;
// the reserved automated-check keys above are the only ones this package
// interprets.
type Document struct {
	ID              id.DocumentID     `json:"id"`
	TenantID        id.TenantID       `json:"tenant_id"`
	ApplicationID   id.ApplicationID  `json:"application_id"`
	Type            string            `json:"type"`
	FileName        string            `json:"file_name"`
	Status          DocumentStatus    `json:"status"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	ReviewComment   string            `json:"review_comment,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	ReviewedBy      string            `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	UploadedAt      time.Time         `json:"uploaded_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// AutomatedChecksPassed reports whether the KYC pipeline validated this
// document. Any single passing marker is enough.
func (d *Document) AutomatedChecksPassed() bool {
	for _, key := range automatedCheckKeys {
		if d.Metadata[key] == "true" {
			return true
		}
	}
	return false
}

// CanApprove guards the pending -> approved edge.
func (d *Document) CanApprove() error {
	if d.Status != DocumentPending {
		return dErrors.Newf(dErrors.CodeInvalidTransition, "only pending documents can be approved, document is %s", d.Status)
	}
	return nil
}

// ApplyApproval marks the document approved. Call CanApprove first.
func (d *Document) ApplyApproval(reviewer string, now time.Time) {
	d.Status = DocumentApproved
	d.RejectionReason = ""
	d.ReviewComment = ""
	d.ReviewedBy = reviewer
	d.ReviewedAt = &now
	d.UpdatedAt = now
}

// CanReject guards the pending -> rejected edge. A rejection always names
// its reason.
func (d *Document) CanReject(reason string) error {
	if d.Status != DocumentPending {
		return dErrors.Newf(dErrors.CodeInvalidTransition, "only pending documents can be rejected, document is %s", d.Status)
	}
	if reason == "" {
		return dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	return nil
}

// ApplyRejection marks the document rejected. Call CanReject first.
func (d *Document) ApplyRejection(reason, comment, reviewer string, now time.Time) {
	d.Status = DocumentRejected
	d.RejectionReason = reason
	d.ReviewComment = comment
	d.ReviewedBy = reviewer
	d.ReviewedAt = &now
	d.UpdatedAt = now
}

// CanUnapprove guards the return edge to pending. Reviewed documents in
// either outcome can be sent back, but an automated KYC pass is final:
// no capability lets a human override it.
func (d *Document) CanUnapprove() error {
	if d.Status == DocumentPending {
		return dErrors.New(dErrors.CodeInvalidTransition, "document is already pending review")
	}
	if d.AutomatedChecksPassed() {
		return dErrors.New(dErrors.CodeForbidden, "document was validated by the automated identity pipeline and cannot be unapproved")
	}
	return nil
}

// ApplyUnapproval resets the document to pending and clears the review
// outcome. Call CanUnapprove first.
func (d *Document) ApplyUnapproval(now time.Time) {
	d.Status = DocumentPending
	d.RejectionReason = ""
	d.ReviewComment = ""
	d.ReviewedBy = ""
	d.ReviewedAt = nil
	d.UpdatedAt = now
}

// NewDocument registers an uploaded file in pending status.
func NewDocument(documentID id.DocumentID, tenantID id.TenantID, applicationID id.ApplicationID, docType, fileName string, metadata map[string]string, now time.Time) (*Document, error) {
	if docType == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document type cannot be empty")
	}
	if fileName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document file name cannot be empty")
	}
	return &Document{
		ID:            documentID,
		TenantID:      tenantID,
		ApplicationID: applicationID,
		Type:          docType,
		FileName:      fileName,
		Status:        DocumentPending,
		Metadata:      metadata,
		UploadedAt:    now,
		UpdatedAt:     now,
	}, nil
}
