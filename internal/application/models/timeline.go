package models

import (
	"time"

	id "origo/pkg/domain"
)

// Timeline action tags. The timeline is the reviewer-facing history of an
// application; tags stay coarse and human-readable.
const (
	ActionStatusChanged        = "status_changed"
	ActionApplicationSubmitted = "application_submitted"
	ActionApplicationApproved  = "application_approved"
	ActionApplicationRejected  = "application_rejected"
	ActionApplicationCancelled = "application_cancelled"
	ActionLoanDisbursed        = "loan_disbursed"
	ActionLoanActivated        = "loan_activated"
	ActionLoanCompleted        = "loan_completed"
	ActionLoanDefaulted        = "loan_defaulted"
	ActionCounterOfferCreated  = "counter_offer_created"
	ActionReviewerAssigned     = "reviewer_assigned"
	ActionDocumentApproved     = "document_approved"
	ActionDocumentRejected     = "document_rejected"
	ActionDocumentUnapproved   = "document_unapproved"
	ActionReferenceVerified    = "reference_verified"
	ActionAccountVerified      = "account_verified"
	ActionAccountUnverified    = "account_unverified"
	ActionDataVerified         = "data_verified"
)

// statusActions maps decision statuses onto their derived timeline tags.
// Pipeline statuses fall back to the generic status_changed tag.
var statusActions = map[Status]string{
	StatusApproved:  ActionApplicationApproved,
	StatusRejected:  ActionApplicationRejected,
	StatusCancelled: ActionApplicationCancelled,
	StatusDisbursed: ActionLoanDisbursed,
	StatusActive:    ActionLoanActivated,
	StatusCompleted: ActionLoanCompleted,
	StatusDefault:   ActionLoanDefaulted,
}

// TimelineAction returns the timeline tag for entering a status.
func TimelineAction(target Status) string {
	if action, ok := statusActions[target]; ok {
		return action
	}
	return ActionStatusChanged
}

// TimelineEntry is one row of an application's append-only history.
//
// Seq is assigned by the store at insert time and is strictly increasing per
// application, so two concurrent appends can never displace each other.
// Entries are never updated or deleted.
type TimelineEntry struct {
	ApplicationID id.ApplicationID  `json:"application_id"`
	Seq           int64             `json:"seq"`
	Action        string            `json:"action"`
	ActorID       string            `json:"actor_id"`
	Payload       map[string]string `json:"payload,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
