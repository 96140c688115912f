package handler

import (
	"strings"

	"origo/internal/verification/models"
	dErrors "origo/pkg/domain-errors"
)

// AddDocumentRequest is the HTTP request body for POST
// /applications/{applicationID}/documents.
type AddDocumentRequest struct {
	Type     string            `json:"type"`
	FileName string            `json:"file_name"`
	Metadata map[string]string `json:"metadata"`
}

// Validate validates the request. The document type enum lives in the domain
// model; the service surfaces its parse errors.
func (r *AddDocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "type is required")
	}
	r.FileName = strings.TrimSpace(r.FileName)
	if r.FileName == "" {
		return dErrors.New(dErrors.CodeValidation, "file_name is required")
	}
	return nil
}

// RejectDocumentRequest is the HTTP request body for POST
// /documents/{documentID}/reject.
type RejectDocumentRequest struct {
	Reason  string `json:"reason"`
	Comment string `json:"comment"`
}

// Validate validates the request.
func (r *RejectDocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	r.Comment = strings.TrimSpace(r.Comment)
	return nil
}

// AddReferenceRequest is the HTTP request body for POST
// /applications/{applicationID}/references.
type AddReferenceRequest struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// Validate validates the request.
func (r *AddReferenceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	r.Relationship = strings.TrimSpace(r.Relationship)
	r.Phone = strings.TrimSpace(r.Phone)
	return nil
}

// VerifyReferenceRequest is the HTTP request body for POST
// /references/{referenceID}/verify.
type VerifyReferenceRequest struct {
	Result string `json:"result"`
	Notes  string `json:"notes"`

	parsedResult models.ReferenceResult
}

// Validate validates and parses the request.
func (r *VerifyReferenceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	result, err := models.ParseReferenceResult(strings.TrimSpace(r.Result))
	if err != nil {
		return err
	}
	r.parsedResult = result
	r.Notes = strings.TrimSpace(r.Notes)
	return nil
}

// ParsedResult returns the validated call outcome.
func (r *VerifyReferenceRequest) ParsedResult() models.ReferenceResult {
	return r.parsedResult
}

// AddBankAccountRequest is the HTTP request body for POST
// /applications/{applicationID}/bank-accounts.
type AddBankAccountRequest struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
}

// Validate validates the request.
func (r *AddBankAccountRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.BankName = strings.TrimSpace(r.BankName)
	if r.BankName == "" {
		return dErrors.New(dErrors.CodeValidation, "bank_name is required")
	}
	r.AccountNumber = strings.TrimSpace(r.AccountNumber)
	if r.AccountNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "account_number is required")
	}
	r.HolderName = strings.TrimSpace(r.HolderName)
	return nil
}

// VerifyDataRequest is the HTTP request body for POST
// /applications/{applicationID}/verifications.
type VerifyDataRequest struct {
	Field           string `json:"field"`
	Action          string `json:"action"`
	Method          string `json:"method"`
	Notes           string `json:"notes"`
	RejectionReason string `json:"rejection_reason"`

	parsedAction models.VerifyAction
}

// Validate validates and parses the request. Field names are checked by the
// service against the applicant profile.
func (r *VerifyDataRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request body is required")
	}
	r.Field = strings.TrimSpace(r.Field)
	if r.Field == "" {
		return dErrors.New(dErrors.CodeValidation, "field is required")
	}
	action, err := models.ParseVerifyAction(strings.TrimSpace(r.Action))
	if err != nil {
		return err
	}
	r.parsedAction = action
	r.Method = strings.TrimSpace(r.Method)
	r.Notes = strings.TrimSpace(r.Notes)
	r.RejectionReason = strings.TrimSpace(r.RejectionReason)
	return nil
}

// ParsedAction returns the validated ledger action.
func (r *VerifyDataRequest) ParsedAction() models.VerifyAction {
	return r.parsedAction
}
