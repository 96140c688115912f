package models

import (
	"time"

	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

// ReferenceResult is the outcome of a reference call.
type ReferenceResult string

const (
	ReferenceVerified    ReferenceResult = "verified"
	ReferenceNotVerified ReferenceResult = "not_verified"
	ReferenceNoAnswer    ReferenceResult = "no_answer"
)

// ParseReferenceResult validates a call outcome against the closed set.
func ParseReferenceResult(raw string) (ReferenceResult, error) {
	switch ReferenceResult(raw) {
	case ReferenceVerified, ReferenceNotVerified, ReferenceNoAnswer:
		return ReferenceResult(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unsupported reference result %q", raw)
}

// Reference is a personal contact vouching for the applicant. Verification
// has no precondition: agents re-dial until they reach someone, and each
// call's outcome overwrites the previous one.
type Reference struct {
	ID            id.ReferenceID   `json:"id"`
	TenantID      id.TenantID      `json:"tenant_id"`
	ApplicationID id.ApplicationID `json:"application_id"`
	Name          string           `json:"name"`
	Relationship  string           `json:"relationship"`
	Phone         string           `json:"phone"`
	Verified      bool             `json:"verified"`
	Result        ReferenceResult  `json:"result,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	VerifiedBy    string           `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time       `json:"verified_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ApplyResult records a call outcome. The verified flag tracks the result:
// only a "verified" outcome counts, not-verified and no-answer both leave
// the reference unconfirmed.
func (r *Reference) ApplyResult(result ReferenceResult, notes, verifier string, now time.Time) {
	r.Result = result
	r.Verified = result == ReferenceVerified
	r.Notes = notes
	r.VerifiedBy = verifier
	r.VerifiedAt = &now
	r.UpdatedAt = now
}

// NewReference registers a reference contact for an application.
func NewReference(referenceID id.ReferenceID, tenantID id.TenantID, applicationID id.ApplicationID, name, relationship, phone string, now time.Time) (*Reference, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reference name cannot be empty")
	}
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reference phone cannot be empty")
	}
	return &Reference{
		ID:            referenceID,
		TenantID:      tenantID,
		ApplicationID: applicationID,
		Name:          name,
		Relationship:  relationship,
		Phone:         phone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
