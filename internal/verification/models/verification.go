package models

import (
	"time"

	applicantmodels "origo/internal/applicant/models"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

// VerifyAction is what the agent asked the ledger to record.
type VerifyAction string

const (
	ActionVerify   VerifyAction = "verify"
	ActionReject   VerifyAction = "reject"
	ActionUnverify VerifyAction = "unverify"
)

// ParseVerifyAction validates an action against the closed set.
func ParseVerifyAction(raw string) (VerifyAction, error) {
	switch VerifyAction(raw) {
	case ActionVerify, ActionReject, ActionUnverify:
		return VerifyAction(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unsupported verification action %q", raw)
}

// VerificationStatus is the outcome stored on a ledger entry.
type VerificationStatus string

const (
	StatusVerified VerificationStatus = "verified"
	StatusRejected VerificationStatus = "rejected"
	// StatusPending is what an unverify writes: the field is back to
	// awaiting review, indistinguishable from never having been checked.
	StatusPending VerificationStatus = "pending"
)

// DataVerification is one immutable row in the field-verification ledger.
// Entries are only ever created, never updated: the history of who verified
// what, and against which value, is the audit trail itself. The latest entry
// per field is the authoritative verification state.
type DataVerification struct {
	ID            id.VerificationID `json:"id"`
	TenantID      id.TenantID       `json:"tenant_id"`
	ApplicantID   id.ApplicantID    `json:"applicant_id"`
	ApplicationID id.ApplicationID  `json:"application_id"`
	Field         string            `json:"field"`
	// Value snapshots what the verifier saw at verification time. Later
	// profile edits do not touch it.
	Value           string             `json:"value"`
	Status          VerificationStatus `json:"status"`
	Method          string             `json:"method,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	VerifiedBy      string             `json:"verified_by"`
	CreatedAt       time.Time          `json:"created_at"`
}

// NewDataVerification builds a ledger entry from an action. Rejections must
// carry a reason.
func NewDataVerification(verificationID id.VerificationID, tenantID id.TenantID, applicantID id.ApplicantID, applicationID id.ApplicationID, field, value string, action VerifyAction, method, notes, rejectionReason, verifiedBy string, now time.Time) (*DataVerification, error) {
	entry := &DataVerification{
		ID:            verificationID,
		TenantID:      tenantID,
		ApplicantID:   applicantID,
		ApplicationID: applicationID,
		Field:         field,
		Value:         value,
		Method:        method,
		Notes:         notes,
		VerifiedBy:    verifiedBy,
		CreatedAt:     now,
	}
	switch action {
	case ActionVerify:
		entry.Status = StatusVerified
	case ActionReject:
		if rejectionReason == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
		}
		entry.Status = StatusRejected
		entry.RejectionReason = rejectionReason
	case ActionUnverify:
		entry.Status = StatusPending
	default:
		return nil, dErrors.Newf(dErrors.CodeValidation, "unsupported verification action %q", action)
	}
	return entry, nil
}

// LegacyFlags is the single-field verification view older consumers read.
// It is computed from the ledger on demand, never stored: the ledger stays
// the only writable copy of verification state.
type LegacyFlags struct {
	PhoneVerifiedAt    *time.Time `json:"phone_verified_at,omitempty"`
	EmailVerifiedAt    *time.Time `json:"email_verified_at,omitempty"`
	AddressVerified    bool       `json:"address_verified"`
	EmploymentVerified bool       `json:"employment_verified"`
}

// ComputeLegacyFlags folds the ledger into the legacy view. Entries must be
// in chronological order; the latest entry per field wins.
func ComputeLegacyFlags(entries []DataVerification) LegacyFlags {
	latest := latestByField(entries)

	var flags LegacyFlags
	if e, ok := latest[applicantmodels.FieldPhone]; ok && e.Status == StatusVerified {
		at := e.CreatedAt
		flags.PhoneVerifiedAt = &at
	}
	if e, ok := latest[applicantmodels.FieldEmail]; ok && e.Status == StatusVerified {
		at := e.CreatedAt
		flags.EmailVerifiedAt = &at
	}
	if e, ok := latest[applicantmodels.FieldAddress]; ok {
		flags.AddressVerified = e.Status == StatusVerified
	}
	if e, ok := latest[applicantmodels.FieldEmployment]; ok {
		flags.EmploymentVerified = e.Status == StatusVerified
	}
	return flags
}

func latestByField(entries []DataVerification) map[string]DataVerification {
	latest := make(map[string]DataVerification, len(entries))
	for _, e := range entries {
		latest[e.Field] = e
	}
	return latest
}

// Summary is the reviewer's one-screen view of verification progress,
// computed on read from the underlying records.
type Summary struct {
	DocumentsTotal    int `json:"documents_total"`
	DocumentsPending  int `json:"documents_pending"`
	DocumentsApproved int `json:"documents_approved"`
	DocumentsRejected int `json:"documents_rejected"`

	ReferencesTotal    int `json:"references_total"`
	ReferencesVerified int `json:"references_verified"`

	AccountsTotal    int `json:"accounts_total"`
	AccountsVerified int `json:"accounts_verified"`

	VerifiedFields []string    `json:"verified_fields,omitempty"`
	RejectedFields []string    `json:"rejected_fields,omitempty"`
	Legacy         LegacyFlags `json:"legacy"`
}

// Summarize folds the verification records for one application into a
// Summary. Ledger entries must be in chronological order.
func Summarize(docs []Document, refs []Reference, accounts []BankAccount, ledger []DataVerification) Summary {
	s := Summary{
		DocumentsTotal:  len(docs),
		ReferencesTotal: len(refs),
		AccountsTotal:   len(accounts),
		Legacy:          ComputeLegacyFlags(ledger),
	}
	for _, d := range docs {
		switch d.Status {
		case DocumentPending:
			s.DocumentsPending++
		case DocumentApproved:
			s.DocumentsApproved++
		case DocumentRejected:
			s.DocumentsRejected++
		}
	}
	for _, r := range refs {
		if r.Verified {
			s.ReferencesVerified++
		}
	}
	for _, a := range accounts {
		if a.Verified {
			s.AccountsVerified++
		}
	}

	latest := latestByField(ledger)
	for _, field := range applicantmodels.VerifiableFields {
		e, ok := latest[field]
		if !ok {
			continue
		}
		switch e.Status {
		case StatusVerified:
			s.VerifiedFields = append(s.VerifiedFields, field)
		case StatusRejected:
			s.RejectedFields = append(s.RejectedFields, field)
		}
	}
	return s
}
