package models

import (
	dErrors "origo/pkg/domain-errors"
)

// Status is the lifecycle state of a loan application. It is mutated only
// through the guarded transition operation, never written directly.
type Status string

const (
	StatusSubmitted          Status = "submitted"
	StatusInReview           Status = "in_review"
	StatusDocsPending        Status = "docs_pending"
	StatusCorrectionsPending Status = "corrections_pending"
	StatusCounterOffered     Status = "counter_offered"
	StatusApproved           Status = "approved"
	StatusRejected           Status = "rejected"
	StatusCancelled          Status = "cancelled"
	StatusDisbursed          Status = "disbursed"
	StatusActive             Status = "active"
	StatusCompleted          Status = "completed"
	StatusDefault            Status = "default"
)

// ParseStatus validates a status string against the closed set.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusSubmitted, StatusInReview, StatusDocsPending, StatusCorrectionsPending,
		StatusCounterOffered, StatusApproved, StatusRejected, StatusCancelled,
		StatusDisbursed, StatusActive, StatusCompleted, StatusDefault:
		return Status(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown application status %q", raw)
}

// restrictedStatuses are decision and post-decision states. Entering any of
// them requires the approve capability on top of ordinary write access.
var restrictedStatuses = map[Status]bool{
	StatusApproved:  true,
	StatusRejected:  true,
	StatusCancelled: true,
	StatusDisbursed: true,
	StatusActive:    true,
	StatusCompleted: true,
	StatusDefault:   true,
}

// IsRestricted reports whether entering this status requires approval power.
func (s Status) IsRestricted() bool {
	return restrictedStatuses[s]
}

// IsTerminal reports whether the application has left the origination
// pipeline for good.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted, StatusDefault:
		return true
	}
	return false
}

// CanTransitionTo validates the predecessor table for a requested target.
// hasDisbursementRef tells the guard whether the caller supplied a
// disbursement reference; it only matters when entering StatusDisbursed.
//
// Statuses outside the table (review-pipeline states) carry no predecessor
// constraint: staff may move an application between them freely.
func (s Status) CanTransitionTo(target Status, hasDisbursementRef bool) error {
	switch target {
	case StatusDisbursed:
		if s != StatusApproved {
			return dErrors.New(dErrors.CodeInvalidTransition, "only approved applications can be disbursed")
		}
		if !hasDisbursementRef {
			return dErrors.New(dErrors.CodeInvalidTransition, "disbursement requires a disbursement reference")
		}
	case StatusActive:
		if s != StatusDisbursed {
			return dErrors.New(dErrors.CodeInvalidTransition, "only disbursed applications can become active")
		}
	case StatusCompleted:
		if s != StatusActive {
			return dErrors.New(dErrors.CodeInvalidTransition, "only active applications can be completed")
		}
	case StatusDefault:
		if s != StatusActive {
			return dErrors.New(dErrors.CodeInvalidTransition, "only active applications can go into default")
		}
	}
	return nil
}
