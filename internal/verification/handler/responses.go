package handler

import (
	"time"

	"origo/internal/audit"
	"origo/internal/verification/models"
	id "origo/pkg/domain"
)

// DocumentsResponse is the HTTP response for GET
// /applications/{applicationID}/documents.
type DocumentsResponse struct {
	Documents []models.Document `json:"documents"`
}

// ReferencesResponse is the HTTP response for GET
// /applications/{applicationID}/references.
type ReferencesResponse struct {
	References []models.Reference `json:"references"`
}

// BankAccountsResponse is the HTTP response for GET
// /applications/{applicationID}/bank-accounts.
type BankAccountsResponse struct {
	BankAccounts []models.BankAccount `json:"bank_accounts"`
}

// VerificationsResponse is the HTTP response for GET
// /applicants/{applicantID}/verifications.
type VerificationsResponse struct {
	ApplicantID   id.ApplicantID            `json:"applicant_id"`
	Verifications []models.DataVerification `json:"verifications"`
}

// DocumentEventResponse is one review action in a document's history.
type DocumentEventResponse struct {
	At        time.Time `json:"at"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role,omitempty"`
	OldState  string    `json:"old_state,omitempty"`
	NewState  string    `json:"new_state,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// DocumentHistoryResponse is the HTTP response for GET
// /documents/{documentID}/history.
type DocumentHistoryResponse struct {
	DocumentID id.DocumentID           `json:"document_id"`
	Events     []DocumentEventResponse `json:"events"`
}

// FromDocumentEvents converts audit events into the history response.
func FromDocumentEvents(documentID id.DocumentID, events []audit.Event) DocumentHistoryResponse {
	resp := DocumentHistoryResponse{
		DocumentID: documentID,
		Events:     make([]DocumentEventResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, DocumentEventResponse{
			At:        e.Timestamp,
			Action:    e.Action,
			ActorID:   e.ActorID,
			ActorRole: e.ActorRole,
			OldState:  e.OldValue,
			NewState:  e.NewValue,
			Reason:    e.Reason,
		})
	}
	return resp
}
